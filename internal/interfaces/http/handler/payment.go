package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	checkoutapp "github.com/vendora/backend/internal/application/checkout"
	orderapp "github.com/vendora/backend/internal/application/order"
	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/shared"
	"github.com/vendora/backend/internal/infrastructure/logger"
)

// CallbackDeduper flags duplicate payment callbacks so they can be answered
// from a replay lookup instead of the promotion transaction. The database
// replay check stays authoritative; a nil or failing deduper degrades to
// taking the full path every time.
type CallbackDeduper interface {
	MarkSeen(ctx context.Context, paymentOrderID string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, paymentOrderID string) error
}

// PaymentHandler handles payment gateway callback HTTP requests
type PaymentHandler struct {
	BaseHandler
	promotions *checkoutapp.PromotionService
	deduper    CallbackDeduper
}

// NewPaymentHandler creates a new payment handler. deduper may be nil when
// no cache is configured.
func NewPaymentHandler(promotions *checkoutapp.PromotionService, deduper CallbackDeduper) *PaymentHandler {
	return &PaymentHandler{promotions: promotions, deduper: deduper}
}

// VerifyPaymentRequest is the gateway callback payload
type VerifyPaymentRequest struct {
	PaymentOrderID string `json:"payment_order_id" binding:"required,max=128"`
	PaymentID      string `json:"payment_id" binding:"required,max=128"`
	Signature      string `json:"signature" binding:"required,max=256"`
}

// VerifyPaymentResponse reports the promotion outcome
type VerifyPaymentResponse struct {
	Order    OrderResponse `json:"order"`
	Replayed bool          `json:"replayed"`
}

// Verify godoc
// @Summary      Confirm a paid order
// @Description  Verifies the gateway signature and promotes the staged order
// @Description  into a durable one. Stock is decremented and coupon usage is
// @Description  charged atomically. Retried callbacks return the existing
// @Description  order with replayed set.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body VerifyPaymentRequest true "Gateway callback"
// @Success      200 {object} dto.Response{data=VerifyPaymentResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      410 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/verify [post]
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)

	promoteReq := checkoutapp.PromoteRequest{
		PaymentOrderID: req.PaymentOrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	}

	firstSeen, duplicate := h.markSeen(ctx, log, req.PaymentOrderID)
	if duplicate {
		result, err := h.promotions.Replay(ctx, promoteReq)
		switch {
		case err == nil:
			h.Success(c, VerifyPaymentResponse{
				Order:    toOrderResponse(*orderapp.ToOrderResponse(result.Order)),
				Replayed: true,
			})
			return
		case errors.Is(err, shared.ErrUnauthorized):
			h.HandleError(c, err)
			return
		}
		// No durable order behind the marker, or the lookup failed. The
		// full path below re-checks everything inside the transaction.
	}

	result, err := h.promotions.Promote(ctx, promoteReq)
	if err != nil {
		// Re-arm the fast path so a retry of this callback is not
		// mistaken for a replay of a promotion that never happened.
		if firstSeen {
			h.forget(ctx, log, req.PaymentOrderID)
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, VerifyPaymentResponse{
		Order:    toOrderResponse(*orderapp.ToOrderResponse(result.Order)),
		Replayed: result.Replayed,
	})
}

// markSeen records the delivery with the deduper. first is true when the
// marker was set by this delivery; duplicate is true when the marker already
// existed. Both are false when no deduper is configured or it is unavailable.
func (h *PaymentHandler) markSeen(ctx context.Context, log *zap.Logger, paymentOrderID string) (first, duplicate bool) {
	if h.deduper == nil {
		return false, false
	}
	first, err := h.deduper.MarkSeen(ctx, paymentOrderID, checkout.TTL)
	if err != nil {
		log.Warn("callback dedup unavailable, falling back to database replay check",
			zap.String("payment_order_id", paymentOrderID),
			zap.Error(err))
		return false, false
	}
	if !first {
		log.Info("duplicate payment callback, trying replay lookup",
			zap.String("payment_order_id", paymentOrderID))
	}
	return first, !first
}

func (h *PaymentHandler) forget(ctx context.Context, log *zap.Logger, paymentOrderID string) {
	if err := h.deduper.Forget(ctx, paymentOrderID); err != nil {
		log.Warn("failed to clear callback dedup marker",
			zap.String("payment_order_id", paymentOrderID),
			zap.Error(err))
	}
}
