package order

import "context"

// PaymentGateway is the opaque charge capability consumed at placement.
// Implementations return a transaction reference on success.
type PaymentGateway interface {
	Charge(ctx context.Context, ownerID string, amountCents int64) (string, error)
}
