package payment

import (
	"context"

	"github.com/google/uuid"
)

// StubGateway accepts every charge and hands back a fresh transaction
// reference. Stands in for the real payment provider integration.
type StubGateway struct{}

func NewStubGateway() *StubGateway {
	return &StubGateway{}
}

func (g *StubGateway) Charge(ctx context.Context, ownerID string, amountCents int64) (string, error) {
	return "txn_" + uuid.NewString(), nil
}
