// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey  contextKey = "ctxutil.requestID"
	customerIDKey contextKey = "ctxutil.customerID"
	clientIPKey   contextKey = "ctxutil.clientIP"
)

// WithRequestID adds a request ID to the context for tracing.
// Request ID is generated per HTTP request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID if found, empty string otherwise.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if requestID, ok := v.(string); ok && requestID != "" {
			return requestID
		}
	}
	return ""
}

// WithCustomerID adds a customer ID to the context.
// Customer ID comes from validated request payloads and is used for
// log correlation across the intent pipeline.
func WithCustomerID(ctx context.Context, customerID string) context.Context {
	return context.WithValue(ctx, customerIDKey, customerID)
}

// GetCustomerID retrieves the customer ID from the context.
// Returns the customer ID if found, empty string otherwise.
func GetCustomerID(ctx context.Context) string {
	if v := ctx.Value(customerIDKey); v != nil {
		if customerID, ok := v.(string); ok && customerID != "" {
			return customerID
		}
	}
	return ""
}

// WithClientIP adds the remote client IP to the context.
func WithClientIP(ctx context.Context, clientIP string) context.Context {
	return context.WithValue(ctx, clientIPKey, clientIP)
}

// GetClientIP retrieves the client IP from the context.
// Returns the client IP if found, empty string otherwise.
func GetClientIP(ctx context.Context) string {
	if v := ctx.Value(clientIPKey); v != nil {
		if clientIP, ok := v.(string); ok && clientIP != "" {
			return clientIP
		}
	}
	return ""
}
