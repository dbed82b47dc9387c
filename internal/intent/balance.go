package intent

import (
	"context"
	"fmt"
	"strings"
)

// BalanceHandler answers balance queries
type BalanceHandler struct{}

// Name returns the intent name
func (h *BalanceHandler) Name() string { return "balance" }

// CanHandle checks for the balance keyword
func (h *BalanceHandler) CanHandle(text string) bool {
	return strings.Contains(text, "balance")
}

// Handle reports the customer's current balance
func (h *BalanceHandler) Handle(_ context.Context, req *Request) (string, error) {
	return fmt.Sprintf("Your current balance is rupees %s.", formatBalance(req.Customer.Balance)), nil
}
