package checkout

import (
	"context"

	"github.com/vendora/backend/internal/domain/shared/valueobject"
)

// PaymentGateway creates payment orders with the external provider and
// verifies the signatures it returns after capture.
type PaymentGateway interface {
	// CreateOrder registers the amount with the provider and returns the
	// provider-issued payment order id the client completes payment against.
	CreateOrder(ctx context.Context, amount valueobject.Money, receipt string) (string, error)

	// VerifySignature checks that signature is a valid provider signature
	// over the payment order id and payment id pair.
	VerifySignature(paymentOrderID, paymentID, signature string) error
}
