package report

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ref-image/internal/retry"

	"golang.org/x/xerrors"
)

type Callback struct {
	URL    string
	Client *http.Client
}

func NewCallback(url string, retryOn *retry.On) *Callback {
	return &Callback{
		URL: url,
		Client: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &retry.Transport{
				Base:          http.DefaultTransport,
				RetryStrategy: retry.NewExponentialBackOff(10*time.Millisecond, 1*time.Second, 3, nil),
				RetryOn:       retryOn,
			},
		},
	}
}

// Send PATCHes r as JSON to the callback URL.
func (c *Callback) Send(ctx context.Context, r *Result) error {
	body, err := json.Marshal(r)
	if err != nil {
		return xerrors.Errorf("failed to marshal result: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.URL, bytes.NewReader(body))
	if err != nil {
		return xerrors.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.Client.Do(request)
	if err != nil {
		return xerrors.Errorf("failed to send request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		return xerrors.Errorf("callback returned %s", response.Status)
	}

	return nil
}
