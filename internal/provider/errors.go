package provider

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by lexical enrichment providers. Callers classify
// failures with errors.Is; no provider returns an unclassified error for an
// expected failure mode.
var (
	ErrUnconfigured      = errors.New("lexical provider not configured")
	ErrUnavailable       = errors.New("lexical provider unavailable")
	ErrQuotaExceeded     = errors.New("lexical provider quota exceeded")
	ErrMalformedResponse = errors.New("lexical provider returned a malformed response")
)

// MalformedResponseError carries the offending response text for diagnostics.
type MalformedResponseError struct {
	Raw    string
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return ErrMalformedResponse }

// RawResponse extracts the offending response text from err, if any.
func RawResponse(err error) string {
	var mre *MalformedResponseError
	if errors.As(err, &mre) {
		return mre.Raw
	}
	return ""
}
