package embed

import (
	"context"
	"fmt"
)

// Disabled is a null Embedder: Available() always reports false so callers
// degrade to keyword-only search without ever invoking Embed.
type Disabled struct {
	Reason string
}

func (d Disabled) Available() bool { return false }

func (d Disabled) Embed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("embedder disabled: %s", d.Reason)
}
