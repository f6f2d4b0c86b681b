package cli

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestNewEmbedderLazyGemini(t *testing.T) {
	cfg := &config{}

	// Building the embedder must not require Gemini configuration
	embedder, err := cfg.newEmbedder()
	gt.NoError(t, err)

	// The missing project surfaces on first use only
	_, err = embedder.Embed(context.Background(), "some text")
	gt.Error(t, err)
}

func TestNewEmbedderMock(t *testing.T) {
	cfg := &config{mockEmbedder: true, cacheSize: 16}
	embedder, err := cfg.newEmbedder()
	gt.NoError(t, err)

	vec, err := embedder.Embed(context.Background(), "some text")
	gt.NoError(t, err)
	gt.A(t, vec).Longer(0)
}
