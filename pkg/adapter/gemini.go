package adapter

import (
	"context"
	"strings"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// GeminiClient implements Embedder on the Gemini embedding API via Vertex AI.
type GeminiClient struct {
	client         *genai.Client
	embeddingModel string
}

var _ Embedder = (*GeminiClient)(nil)

type GeminiOption func(*GeminiClient)

func WithEmbeddingModel(embeddingModel string) GeminiOption {
	return func(g *GeminiClient) {
		g.embeddingModel = embeddingModel
	}
}

func NewGemini(ctx context.Context, projectID, location string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create genai client",
			goerr.V("project", projectID), goerr.V("location", location))
	}

	g := &GeminiClient{
		client:         client,
		embeddingModel: "gemini-embedding-001",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

func (g *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (g *GeminiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, 0, len(texts))
	for _, text := range texts {
		contents = append(contents, genai.Text(strings.TrimSpace(text))...)
	}

	resp, err := g.client.Models.EmbedContent(ctx, g.embeddingModel, contents, &genai.EmbedContentConfig{})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content", goerr.V("count", len(texts)))
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, goerr.Wrap(model.ErrEmbeddingFailure, "embedding count mismatch",
			goerr.V("want", len(texts)))
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range resp.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, goerr.Wrap(model.ErrEmbeddingFailure, "empty embedding in response",
				goerr.V("index", i))
		}
		vectors[i] = embedding.Values
	}

	return vectors, nil
}
