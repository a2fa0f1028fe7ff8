package ai

import "errors"

// ErrQuotaExceeded indicates the provider rejected the request on a
// quota/limit error (HTTP 429 or similar). The router maps it to 429.
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrEmptyResponse indicates the provider returned no candidate text.
var ErrEmptyResponse = errors.New("ai returned empty response")
