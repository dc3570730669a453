package cmd

import (
	"context"

	"github.com/solux-cash/solux-backend/internal/domain/enrollment"
)

type IssuingService interface {
	CreateAccountHolder(ctx context.Context, p enrollment.Profile) (accountToken string, err error)
	CreateCard(ctx context.Context, accountToken string) (enrollment.CardDetails, error)
	SimulateAuthorization(ctx context.Context, cardToken string, amountCents int64, descriptor string) (enrollment.AuthorizationSimulation, error)
}
