// Package intent implements the IVR command dispatcher. Free-text input
// is matched against an ordered list of handlers; the first handler whose
// keywords appear in the text produces the response, optionally mutating
// the customer record.
package intent

import (
	"context"

	"github.com/smarttel/smarttel-ivr-go/internal/logger"
	"github.com/smarttel/smarttel-ivr-go/internal/metrics"
	"github.com/smarttel/smarttel-ivr-go/internal/storage"
)

// Request carries one intent invocation through the dispatcher.
type Request struct {
	// Customer is the record the intent operates on. Mutating handlers
	// replace it with the persisted record.
	Customer *storage.Customer

	// Text is the trimmed, lowercased command text.
	Text string

	// Upgrade selects the plan-upgrade branch of the data handler.
	Upgrade bool

	// Amount is the raw recharge amount from the request body. It may be
	// a JSON number, a numeric string, or anything else; unparseable
	// values fall back to the default recharge amount.
	Amount any
}

// Handler is one intent branch.
type Handler interface {
	// Name identifies the intent in logs and metrics
	Name() string

	// CanHandle reports whether this handler claims the given text
	CanHandle(text string) bool

	// Handle produces the response message, persisting any state change
	Handle(ctx context.Context, req *Request) (string, error)
}

// Dispatcher routes intent text to the first matching handler.
// Registration order is the match order.
type Dispatcher struct {
	handlers []Handler
	fallback Handler
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewDispatcher creates an empty dispatcher. The fallback handler answers
// when no registered handler matches.
func NewDispatcher(fallback Handler, m *metrics.Metrics, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make([]Handler, 0),
		fallback: fallback,
		metrics:  m,
		logger:   log.WithModule("intent"),
	}
}

// Register appends a handler. Earlier handlers win ties: text containing
// both "balance" and "recharge" resolves to whichever was registered first.
func (d *Dispatcher) Register(h Handler) {
	d.handlers = append(d.handlers, h)
}

// Dispatch routes the request to the first handler that claims its text.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (string, error) {
	handler := d.fallback
	for _, h := range d.handlers {
		if h.CanHandle(req.Text) {
			handler = h
			break
		}
	}

	msg, err := handler.Handle(ctx, req)

	status := "ok"
	if err != nil {
		status = "error"
	}
	d.metrics.RecordIntent(handler.Name(), status)

	if err != nil {
		d.logger.WithError(err).WithFields(map[string]any{
			"intent":      handler.Name(),
			"customer_id": req.Customer.ID,
		}).ErrorContext(ctx, "intent handler failed")
		return "", err
	}

	d.logger.WithFields(map[string]any{
		"intent":      handler.Name(),
		"customer_id": req.Customer.ID,
	}).InfoContext(ctx, "intent processed")

	return msg, nil
}

// NewDefaultDispatcher wires the full IVR intent set in dispatch order.
func NewDefaultDispatcher(repo *storage.Repository, m *metrics.Metrics, log *logger.Logger) *Dispatcher {
	careLog := log.WithModule("intent")

	d := NewDispatcher(&UnknownHandler{}, m, log)
	d.Register(&BalanceHandler{})
	d.Register(&PlanHandler{})
	d.Register(&OffersHandler{})
	d.Register(&DataPackHandler{repo: repo})
	d.Register(&RechargeHandler{repo: repo})
	d.Register(&MenuHandler{})
	d.Register(&CareHandler{logger: careLog})
	d.Register(&ExitHandler{})
	return d
}
