package extract

import (
	"context"
	"fmt"

	"github.com/hivemindlabs/hivemindd/internal/engine"
)

// Disabled is a null Extractor: Available() always reports false, so the
// /extract handler answers that extraction is not configured rather than
// invoking it.
type Disabled struct {
	Reason string
}

func (d Disabled) Available() bool { return false }

func (d Disabled) Extract(context.Context, []engine.ExtractionMessage, []engine.Memory) (engine.ExtractionResult, error) {
	return engine.ExtractionResult{}, fmt.Errorf("extractor disabled: %s", d.Reason)
}
