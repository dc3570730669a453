package enrollment

import (
	"errors"
	"fmt"
)

// ProviderError is a failure reported by the issuing provider's API. Message
// carries the provider's own wording verbatim so it can be surfaced to the
// holder and to logs without translation.
type ProviderError struct {
	Status  int
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("issuing provider: %s (status %d, code %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("issuing provider: %s (status %d)", e.Message, e.Status)
}

// Detail extracts the provider's verbatim message from err, falling back to
// err.Error() when the failure did not come from the provider API.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}
