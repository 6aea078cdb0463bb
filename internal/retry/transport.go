package retry

import (
	"net/http"
	"time"

	"golang.org/x/xerrors"
)

// Transport retries requests according to RetryOn, waiting as RetryStrategy
// says between attempts. Requests with a body must set GetBody to be retried.
type Transport struct {
	Base          http.RoundTripper
	RetryStrategy Strategy
	RetryOn       *On
}

func (t *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	for retryCount := uint(0); ; retryCount++ {
		sleep, exceeded := t.retryStrategy().Sleep(retryCount)

		response, err := t.base().RoundTrip(request)
		rewindable := request.Body == nil || request.Body == http.NoBody || request.GetBody != nil
		canRetry := !exceeded && t.RetryOn != nil && rewindable
		if err != nil {
			if !canRetry || !t.RetryOn.CheckError(err) {
				return nil, err
			}
		} else {
			if !canRetry || !t.RetryOn.CheckResponse(response) {
				return response, nil
			}
			response.Body.Close()
		}

		timer := time.NewTimer(sleep)
		select {
		case <-request.Context().Done():
			timer.Stop()
			return nil, request.Context().Err()
		case <-timer.C:
		}

		if request.GetBody != nil {
			body, err := request.GetBody()
			if err != nil {
				return nil, xerrors.Errorf("failed to rewind request body: %w", err)
			}
			request = request.Clone(request.Context())
			request.Body = body
		}
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) retryStrategy() Strategy {
	if t.RetryStrategy != nil {
		return t.RetryStrategy
	}
	return NewNever()
}
