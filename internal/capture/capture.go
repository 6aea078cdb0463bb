package capture

import (
	"context"
)

type CaptureOptions struct {
	Headers       map[string]string
	MaskSelectors []string
}

// Capturer renders a page and returns it as a PNG screenshot.
type Capturer interface {
	Capture(ctx context.Context, url string, options CaptureOptions) ([]byte, error)
}
