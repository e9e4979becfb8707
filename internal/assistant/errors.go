package assistant

import (
	"errors"
	"fmt"
)

// Failure kinds of a remote completion. Each one degrades to the local
// heuristic for the endpoint.
var (
	ErrCredentialMissing = errors.New("assistant: api credential not configured")
	ErrEmptyResponse     = errors.New("assistant: empty model response")
)

// UpstreamError wraps a network or API failure talking to the model provider.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("assistant: upstream request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Fallback reasons reported in metrics, logs and responses.
const (
	ReasonNone              = ""
	ReasonCredentialMissing = "credential_missing"
	ReasonUpstream          = "upstream_error"
	ReasonEmptyResponse     = "empty_response"
)

// FallbackReason maps a completion error to its reason label.
func FallbackReason(err error) string {
	var upstream *UpstreamError
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrCredentialMissing):
		return ReasonCredentialMissing
	case errors.Is(err, ErrEmptyResponse):
		return ReasonEmptyResponse
	case errors.As(err, &upstream):
		return ReasonUpstream
	}
	return ReasonUpstream
}
