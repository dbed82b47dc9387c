package intent

import (
	"context"
	"strings"
)

const menuMessage = "Opening main menu. You can say balance, plan, offers, data upgrade, recharge, or customer care."

// MenuHandler answers main menu requests
type MenuHandler struct{}

// Name returns the intent name
func (h *MenuHandler) Name() string { return "menu" }

// CanHandle matches "menu", which also covers "main menu"
func (h *MenuHandler) CanHandle(text string) bool {
	return strings.Contains(text, "menu")
}

// Handle lists the available commands
func (h *MenuHandler) Handle(_ context.Context, _ *Request) (string, error) {
	return menuMessage, nil
}
