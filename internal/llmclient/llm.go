package llmclient

import (
	"context"
	"encoding/json"
	"errors"
)

var ErrInvalidJSON = errors.New("invalid json from LLM")

// GenerateOptions mirrors the text-generation service boundary: structured
// output is always requested, temperature and output cap vary per stage.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Client is the text-generation service boundary. Responses are treated as
// untrusted: callers must run them through the recovery parser.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (json.RawMessage, error)
	Close() error
}

// ImageModel is the image-generation service boundary. The first image
// payload in the response is returned with its MIME type.
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string) (data []byte, mimeType string, err error)
}
