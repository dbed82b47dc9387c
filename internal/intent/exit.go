package intent

import (
	"context"
	"strings"
)

// ExitHandler ends the IVR session
type ExitHandler struct{}

// Name returns the intent name
func (h *ExitHandler) Name() string { return "exit" }

// CanHandle checks for the exit or bye keywords
func (h *ExitHandler) CanHandle(text string) bool {
	return strings.Contains(text, "exit") || strings.Contains(text, "bye")
}

// Handle says goodbye
func (h *ExitHandler) Handle(_ context.Context, _ *Request) (string, error) {
	return "Thank you for using SmartTel IVR. Goodbye!", nil
}
