package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/smarttel/smarttel-ivr-go/internal/storage"
)

// RechargeHandler tops up the customer's balance
type RechargeHandler struct {
	repo *storage.Repository
}

// Name returns the intent name
func (h *RechargeHandler) Name() string { return "recharge" }

// CanHandle checks for the recharge keyword
func (h *RechargeHandler) CanHandle(text string) bool {
	return strings.Contains(text, "recharge")
}

// Handle adds the requested amount to the balance and persists it
func (h *RechargeHandler) Handle(ctx context.Context, req *Request) (string, error) {
	amount := parseAmount(req.Amount)

	customer, err := h.repo.AddBalance(ctx, req.Customer.ID, float64(amount))
	if err != nil {
		return "", fmt.Errorf("failed to recharge: %w", err)
	}
	req.Customer = customer

	return fmt.Sprintf("Recharge of rupees %d successful. New balance is %s.",
		amount, formatBalance(customer.Balance)), nil
}
