package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// Payment is one settled supplier payment.
type Payment struct {
	Supplier string  `json:"supplier"`
	PaidOn   string  `json:"paid_on"`
	Amount   float64 `json:"amount"`
}

// PaymentHistory is the normalized form of the backend's payment-history
// payload. Older deployments return a bare array; newer ones wrap it in an
// object with a "payments" field. The shape is resolved once here, at the
// boundary, instead of being sniffed by every consumer.
type PaymentHistory struct {
	Payments []Payment
}

// UnmarshalJSON accepts both payload shapes.
func (h *PaymentHistory) UnmarshalJSON(data []byte) error {
	// Bare array form.
	var bare []Payment
	if err := json.Unmarshal(data, &bare); err == nil {
		h.Payments = bare
		return nil
	}

	// Wrapped object form.
	var wrapped struct {
		Payments []Payment `json:"payments"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return fmt.Errorf("payment history is neither an array nor a payments object: %w", err)
	}
	h.Payments = wrapped.Payments
	return nil
}

// PaymentHistoryForSupplier fetches settled payments for one supplier.
func (c *Client) PaymentHistoryForSupplier(ctx context.Context, supplier string) (PaymentHistory, error) {
	var history PaymentHistory
	if err := c.get(ctx, "/api/suppliers/"+supplier+"/payments/", &history); err != nil {
		return PaymentHistory{}, err
	}
	return history, nil
}
