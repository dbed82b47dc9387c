package intent

import (
	"context"
	"strings"
)

const offersMessage = "Latest offers: 10% cashback on recharge above 299, double data on Premium, weekend free calls on Super 699."

// OffersHandler answers promotional offer queries
type OffersHandler struct{}

// Name returns the intent name
func (h *OffersHandler) Name() string { return "offers" }

// CanHandle matches "offer" and therefore also "offers"
func (h *OffersHandler) CanHandle(text string) bool {
	return strings.Contains(text, "offer")
}

// Handle returns the current promotions
func (h *OffersHandler) Handle(_ context.Context, _ *Request) (string, error) {
	return offersMessage, nil
}
