package ai

import "context"

// Client analyzes the combined text of a data room and returns the raw
// model response. The reply is nominally JSON but callers must not rely on
// that; the analysis normalizer owns interpretation.
type Client interface {
	Analyze(ctx context.Context, documents string) (string, error)
}
