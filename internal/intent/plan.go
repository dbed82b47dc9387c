package intent

import (
	"context"
	"fmt"
	"strings"
)

// PlanHandler answers plan detail queries
type PlanHandler struct{}

// Name returns the intent name
func (h *PlanHandler) Name() string { return "plan" }

// CanHandle checks for the plan keyword
func (h *PlanHandler) CanHandle(text string) bool {
	return strings.Contains(text, "plan")
}

// Handle reports the customer's plan and daily data allowance
func (h *PlanHandler) Handle(_ context.Context, req *Request) (string, error) {
	return fmt.Sprintf("Your current plan is %s with %s data per day.",
		req.Customer.Plan, req.Customer.DataLeft), nil
}
