package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"proteomorphic/src/internal/system"
)

// StaticEmbedder maps each residue letter to a fixed vector. Unknown residues
// embed as the zero vector.
type StaticEmbedder struct {
	embeddings map[byte][]float32
	dim        int
	unknown    []float32
}

type staticTable struct {
	Dim        int                  `msgpack:"dim"`
	Embeddings map[string][]float64 `msgpack:"embeddings"`
}

// LoadStaticEmbedderFromBytes decodes a msgpack table of the form
// {dim: int, embeddings: {"A": [...], ...}}.
func LoadStaticEmbedderFromBytes(data []byte) (*StaticEmbedder, error) {
	var loaded staticTable
	if err := msgpack.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("msgpack unmarshal failed: %w", err)
	}
	if loaded.Dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dim %d", loaded.Dim)
	}

	// Convert float64 to float32 to save memory in-RAM
	embeddings32 := make(map[byte][]float32, len(loaded.Embeddings))
	for k, v := range loaded.Embeddings {
		if len(k) != 1 {
			return nil, fmt.Errorf("residue key %q must be a single letter", k)
		}
		if len(v) != loaded.Dim {
			return nil, fmt.Errorf("residue %q has %d values, want %d", k, len(v), loaded.Dim)
		}
		v32 := make([]float32, len(v))
		for i, f := range v {
			v32[i] = float32(f)
		}
		embeddings32[k[0]] = v32
	}

	slog.Info("loaded static residue embedder", "residues", len(embeddings32), "dim", loaded.Dim)
	system.LogMemoryUsage("static_embedder_load")

	return &StaticEmbedder{
		embeddings: embeddings32,
		dim:        loaded.Dim,
		unknown:    make([]float32, loaded.Dim),
	}, nil
}

// LoadStaticEmbedderMsgPack loads the msgpack file
func LoadStaticEmbedderMsgPack(path string) (*StaticEmbedder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return LoadStaticEmbedderFromBytes(data)
}

func (e *StaticEmbedder) Dim() int { return e.dim }

func (e *StaticEmbedder) Embed(ctx context.Context, sequence string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := make([][]float32, len(sequence))
	for i := 0; i < len(sequence); i++ {
		vec, ok := e.embeddings[sequence[i]]
		if !ok {
			vec = e.unknown
		}
		rows[i] = vec
	}
	return rows, nil
}
