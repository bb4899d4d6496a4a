package embedding

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
	openai "github.com/sashabaranov/go-openai"
)

const (
	mistralBaseURL = "https://api.mistral.ai/v1"
	mistralModel   = "mistral-embed"
)

// pooled wraps a text embedding function that returns one vector per input.
type pooled struct {
	fn chromem.EmbeddingFunc
}

// FromEmbeddingFunc adapts a chromem embedding function to Embedder. The
// result is a single pooled row.
func FromEmbeddingFunc(fn chromem.EmbeddingFunc) Embedder {
	return pooled{fn: fn}
}

func (p pooled) Embed(ctx context.Context, sequence string) ([][]float32, error) {
	vec, err := p.fn(ctx, sequence)
	if err != nil {
		return nil, err
	}
	return [][]float32{vec}, nil
}

// chromemFunc builds the embedding function for the providers chromem-go
// ships clients for. model overrides the provider default where the client
// accepts one. url applies to ollama and mistral; cohere and jina always use
// their public endpoints and localai its default address.
func chromemFunc(provider, apiKey, url, model string) (chromem.EmbeddingFunc, error) {
	switch provider {
	case "ollama":
		if model == "" {
			model = "nomic-embed-text"
		}
		return chromem.NewEmbeddingFuncOllama(model, url), nil
	case "localai":
		if model == "" {
			model = "bert-cpp-minilm-v6"
		}
		return chromem.NewEmbeddingFuncLocalAI(model), nil
	case "mistral":
		if url == "" && model == "" {
			return chromem.NewEmbeddingFuncMistral(apiKey), nil
		}
		if url == "" {
			url = mistralBaseURL
		}
		if model == "" {
			model = mistralModel
		}
		normalized := true
		return chromem.NewEmbeddingFuncOpenAICompat(url, apiKey, model, &normalized), nil
	case "cohere":
		m := chromem.EmbeddingModelCohereEnglishV3
		if model != "" {
			m = chromem.EmbeddingModelCohere(model)
		}
		return chromem.NewEmbeddingFuncCohere(apiKey, m), nil
	case "jina":
		m := chromem.EmbeddingModelJina2BaseEN
		if model != "" {
			m = chromem.EmbeddingModelJina(model)
		}
		return chromem.NewEmbeddingFuncJina(apiKey, m), nil
	}
	return nil, fmt.Errorf("unsupported embedding provider %q", provider)
}

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.EmbeddingModel(model),
	}
}

func (o *OpenAIEmbedder) Embed(ctx context.Context, sequence string) ([][]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{sequence},
		Model: o.model,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned for model %s", o.model)
	}
	return [][]float32{resp.Data[0].Embedding}, nil
}
