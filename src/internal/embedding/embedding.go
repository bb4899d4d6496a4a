// Package embedding provides the optional protein-embedding collaborator used
// to derive a disorder score. Every backend implements Embedder; Service picks
// one from configuration and loads it once per process.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is returned when no embedding model is loaded.
var ErrUnavailable = errors.New("embedding model unavailable")

// Embedder returns a rows x dims tensor for a residue sequence. Per-residue
// backends return one row per residue; pooled backends return a single row.
type Embedder interface {
	Embed(ctx context.Context, sequence string) ([][]float32, error)
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, sequence string) ([][]float32, error)

func (f EmbedderFunc) Embed(ctx context.Context, sequence string) ([][]float32, error) {
	return f(ctx, sequence)
}

// Truncate limits a sequence to maxTokens residues.
func Truncate(sequence string, maxTokens int) string {
	if maxTokens > 0 && len(sequence) > maxTokens {
		return sequence[:maxTokens]
	}
	return sequence
}

// Variance is the unbiased (n-1) variance over every element of the tensor.
func Variance(tensor [][]float32) (float64, error) {
	var n int
	var mean float64
	for _, row := range tensor {
		for _, v := range row {
			n++
			mean += (float64(v) - mean) / float64(n)
		}
	}
	if n < 2 {
		return 0, fmt.Errorf("variance needs at least 2 values, got %d", n)
	}

	var ss float64
	for _, row := range tensor {
		for _, v := range row {
			d := float64(v) - mean
			ss += d * d
		}
	}
	return ss / float64(n-1), nil
}
