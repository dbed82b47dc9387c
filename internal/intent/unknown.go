package intent

import "context"

// UnknownHandler is the fallback when no intent keyword matches
type UnknownHandler struct{}

// Name returns the intent name
func (h *UnknownHandler) Name() string { return "unknown" }

// CanHandle always returns false; the dispatcher uses this handler
// only as its fallback.
func (h *UnknownHandler) CanHandle(string) bool { return false }

// Handle apologizes
func (h *UnknownHandler) Handle(_ context.Context, _ *Request) (string, error) {
	return "Sorry, I didn't understand that.", nil
}
