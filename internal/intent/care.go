package intent

import (
	"context"
	"strings"

	"github.com/smarttel/smarttel-ivr-go/internal/logger"
)

// CareHandler files customer care issues by category
type CareHandler struct {
	logger *logger.Logger
}

// Name returns the intent name
func (h *CareHandler) Name() string { return "customer_care" }

// CanHandle checks for any customer care keyword
func (h *CareHandler) CanHandle(text string) bool {
	for _, kw := range []string{"network", "sim", "recharge issue", "customer", "care", "talk"} {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Handle categorizes the issue and returns the canned acknowledgement
func (h *CareHandler) Handle(ctx context.Context, req *Request) (string, error) {
	issue := strings.ToLower(req.Text)

	// The menu branch below is unreachable in practice: any text containing
	// "menu" is intercepted by MenuHandler before dispatch reaches this
	// handler. It is kept to match the documented care flow.
	switch {
	case strings.Contains(issue, "menu"):
		return menuMessage, nil
	case strings.Contains(issue, "network"):
		h.logger.WithField("customer_id", req.Customer.ID).InfoContext(ctx, "network issue logged")
		return "Network issue logged. Our technical team will optimize your area soon.", nil
	case strings.Contains(issue, "sim"), strings.Contains(issue, "activation"):
		h.logger.WithField("customer_id", req.Customer.ID).InfoContext(ctx, "sim issue logged")
		return "SIM issue logged. Activation will be completed shortly.", nil
	case strings.Contains(issue, "recharge"):
		h.logger.WithField("customer_id", req.Customer.ID).InfoContext(ctx, "recharge issue logged")
		return "Recharge issue noted. It will be resolved shortly.", nil
	default:
		h.logger.WithField("customer_id", req.Customer.ID).InfoContext(ctx, "customer care requested")
		return "Connecting to customer care. Describe your issue.", nil
	}
}
