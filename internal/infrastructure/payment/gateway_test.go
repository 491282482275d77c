package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/domain/shared/valueobject"
	"github.com/vendora/backend/internal/infrastructure/config"
)

func newTestGateway() *HMACGateway {
	return NewHMACGateway(config.PaymentConfig{
		KeyID:  "key_test",
		Secret: "merchant-secret",
	}, zap.NewNop())
}

func TestHMACGateway_CreateOrder(t *testing.T) {
	gw := newTestGateway()

	first, err := gw.CreateOrder(context.Background(), valueobject.NewMoneyINRFromFloat(2500), "rcpt_1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "order_"))

	second, err := gw.CreateOrder(context.Background(), valueobject.NewMoneyINRFromFloat(2500), "rcpt_2")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHMACGateway_VerifySignature(t *testing.T) {
	gw := newTestGateway()

	sig := gw.Sign("order_abc", "pay_xyz")
	assert.NoError(t, gw.VerifySignature("order_abc", "pay_xyz", sig))

	err := gw.VerifySignature("order_abc", "pay_xyz", "tampered")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// A signature for a different payment must not verify.
	err = gw.VerifySignature("order_abc", "pay_other", sig)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestHMACGateway_SignatureIsKeyed(t *testing.T) {
	gw := newTestGateway()
	other := NewHMACGateway(config.PaymentConfig{KeyID: "key_test", Secret: "different-secret"}, zap.NewNop())

	sig := other.Sign("order_abc", "pay_xyz")
	assert.ErrorIs(t, gw.VerifySignature("order_abc", "pay_xyz", sig), shared.ErrUnauthorized)
}
