package search

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// statusCoder is implemented by transport errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// Classify maps an adapter error onto a failure kind.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var perr *ProviderError
	if errors.As(err, &perr) && perr.Kind != "" {
		return perr.Kind
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return classifyStatus(sc.StatusCode())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}

	return KindUnknown
}

func classifyStatus(code int) Kind {
	switch {
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindUnauthorized
	case code >= 500:
		return KindTransient
	default:
		return KindUnknown
	}
}
