package retry

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// On selects which responses and errors are worth retrying. The policy names
// follow Envoy's retry_on values.
type On struct {
	serverError    bool
	gatewayError   bool
	connectFailure bool
	retriable4xx   bool
	statusCodes    []int
}

func NewDefaultRetryOn() *On {
	return &On{
		gatewayError:   true,
		connectFailure: true,
		retriable4xx:   true,
	}
}

// NewRetryOnFromString parses a comma separated policy such as
// "5xx,connect-failure,429".
func NewRetryOnFromString(s string) (*On, error) {
	o := &On{}
	for _, policy := range strings.Split(s, ",") {
		switch policy = strings.TrimSpace(policy); policy {
		case "":
		case "5xx":
			o.serverError = true
		case "gateway-error":
			o.gatewayError = true
		case "connect-failure":
			o.connectFailure = true
		case "retriable-4xx":
			o.retriable4xx = true
		default:
			statusCode, err := strconv.Atoi(policy)
			if err != nil {
				return nil, xerrors.Errorf("invalid retry policy: %s", policy)
			}
			o.statusCodes = append(o.statusCodes, statusCode)
		}
	}
	return o, nil
}

func (o *On) CheckResponse(response *http.Response) bool {
	code := response.StatusCode
	switch {
	case o.serverError && code >= 500 && code < 600:
		return true
	case o.gatewayError && code >= 502 && code <= 504:
		return true
	case o.retriable4xx && code == http.StatusConflict:
		return true
	}

	for _, c := range o.statusCodes {
		if c == code {
			return true
		}
	}
	return false
}

func (o *On) CheckError(err error) bool {
	if !o.connectFailure && !o.serverError {
		return false
	}
	type temporary interface{ Temporary() bool }
	var terr temporary
	return (errors.As(err, &terr) && terr.Temporary()) || errors.Is(err, io.EOF)
}
