package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/smarttel/smarttel-ivr-go/internal/storage"
)

// Plan values applied by the upgrade branch.
const (
	UpgradePlan     = "Premium 499"
	UpgradeDataLeft = "2.5 GB"
)

// DataPackHandler answers data allowance queries and performs
// plan upgrades when the request carries the upgrade flag.
type DataPackHandler struct {
	repo *storage.Repository
}

// Name returns the intent name
func (h *DataPackHandler) Name() string { return "data_packs" }

// CanHandle checks for the data or upgrade keywords
func (h *DataPackHandler) CanHandle(text string) bool {
	return strings.Contains(text, "data") || strings.Contains(text, "upgrade")
}

// Handle upgrades the plan when requested, otherwise reports the current one
func (h *DataPackHandler) Handle(ctx context.Context, req *Request) (string, error) {
	if !req.Upgrade {
		return fmt.Sprintf("Your current plan is %s with %s data per day.",
			req.Customer.Plan, req.Customer.DataLeft), nil
	}

	customer, err := h.repo.UpdatePlan(ctx, req.Customer.ID, UpgradePlan, UpgradeDataLeft)
	if err != nil {
		return "", fmt.Errorf("failed to upgrade plan: %w", err)
	}
	req.Customer = customer

	return "Upgraded to Premium Plan 499 successfully.", nil
}
