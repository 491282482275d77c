package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	promotionapp "github.com/vendora/backend/internal/application/promotion"
	"github.com/vendora/backend/internal/domain/catalog"
	"github.com/vendora/backend/internal/domain/checkout"
	"github.com/vendora/backend/internal/domain/order"
	"github.com/vendora/backend/internal/domain/promotion"
	"github.com/vendora/backend/internal/domain/shared"
)

// PromoteResult is the outcome of a verified-payment promotion
type PromoteResult struct {
	Order *order.Order
	// Replayed is true when the callback was a retry and the durable order
	// already existed; no state was changed.
	Replayed bool
}

// PromotionService turns a temporary order into a durable one once payment is
// verified. Everything runs in a single transaction: stock decrements, coupon
// usage charges and the order insert commit together or not at all.
type PromotionService struct {
	tx       shared.TransactionManager
	temps    checkout.TemporaryOrderRepository
	orders   order.Repository
	products catalog.ProductRepository
	coupons  promotion.CouponRepository
	usages   promotion.CouponUsageRepository
	eligible CouponValidator
	gateway  checkout.PaymentGateway
}

// NewPromotionService creates a new promotion service
func NewPromotionService(
	tx shared.TransactionManager,
	temps checkout.TemporaryOrderRepository,
	orders order.Repository,
	products catalog.ProductRepository,
	coupons promotion.CouponRepository,
	usages promotion.CouponUsageRepository,
	eligible CouponValidator,
	gateway checkout.PaymentGateway,
) *PromotionService {
	return &PromotionService{
		tx:       tx,
		temps:    temps,
		orders:   orders,
		products: products,
		coupons:  coupons,
		usages:   usages,
		eligible: eligible,
		gateway:  gateway,
	}
}

// Replay serves a repeated callback delivery from the durable order it
// already produced, without entering the promotion transaction. The signature
// is still checked so a forged retry cannot read order state. Returns
// shared.ErrNotFound when no durable order exists for the payment order yet.
func (s *PromotionService) Replay(ctx context.Context, req PromoteRequest) (*PromoteResult, error) {
	if err := s.gateway.VerifySignature(req.PaymentOrderID, req.PaymentID, req.Signature); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnauthorized, "payment signature mismatch")
	}
	existing, err := s.orders.FindByPaymentOrderID(ctx, req.PaymentOrderID)
	if err != nil {
		return nil, err
	}
	return &PromoteResult{Order: existing, Replayed: true}, nil
}

// Promote handles the payment callback. The gateway signature is checked
// first; a bad signature never touches order state. A replayed callback for
// an already-promoted payment order returns the existing order unchanged.
func (s *PromotionService) Promote(ctx context.Context, req PromoteRequest) (*PromoteResult, error) {
	if err := s.gateway.VerifySignature(req.PaymentOrderID, req.PaymentID, req.Signature); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnauthorized, "payment signature mismatch")
	}

	result := &PromoteResult{}
	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		existing, err := s.orders.FindByPaymentOrderID(txCtx, req.PaymentOrderID)
		if err == nil {
			result.Order = existing
			result.Replayed = true
			return nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		temp, err := s.temps.FindByPaymentOrderID(txCtx, req.PaymentOrderID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Swept, cancelled, or never created. The caller flags
				// this for reconciliation since money already moved.
				return checkout.ErrOrderExpired
			}
			return err
		}
		if temp.Expired(time.Now()) {
			return checkout.ErrOrderExpired
		}

		vendorByProduct := make(map[uuid.UUID]uuid.UUID, len(temp.Items))
		for _, item := range temp.Items {
			product, err := s.products.FindByID(txCtx, item.ProductID)
			if err != nil {
				return staleSnapshot(err)
			}
			vendorByProduct[item.ProductID] = product.VendorID
			if err := s.products.DecrementStock(txCtx, item.ProductID, item.Quantity); err != nil {
				return staleSnapshot(err)
			}
		}

		couponIDByCode, err := s.chargeCoupons(txCtx, temp)
		if err != nil {
			return err
		}

		orderNumber, err := s.orders.NextOrderNumber(txCtx)
		if err != nil {
			return err
		}
		promoted, err := order.FromSnapshot(temp, orderNumber, req.PaymentID, vendorByProduct, couponIDByCode)
		if err != nil {
			return err
		}
		if err := s.orders.Save(txCtx, promoted); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		if err := s.temps.Delete(txCtx, temp.ID); err != nil {
			return fmt.Errorf("delete temporary order: %w", err)
		}

		result.Order = promoted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// chargeCoupons re-validates every applied coupon against current state and
// charges the usage ledger. A concurrent promotion racing the same coupon
// loses on the ledger's conditional write and surfaces ErrUsageExceeded.
func (s *PromotionService) chargeCoupons(ctx context.Context, temp *checkout.TemporaryOrder) (map[string]uuid.UUID, error) {
	lineAmount := make(map[uuid.UUID]decimal.Decimal, len(temp.Items))
	for _, item := range temp.Items {
		lineAmount[item.ProductID] = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}

	applied := make([]promotionapp.AppliedCouponContext, 0, len(temp.AppliedCoupons))
	for _, c := range temp.AppliedCoupons {
		applied = append(applied, promotionapp.AppliedCouponContext{Code: c.Code, ProductID: c.ProductID})
	}

	couponIDByCode := make(map[string]uuid.UUID, len(temp.AppliedCoupons))
	for i, c := range temp.AppliedCoupons {
		others := append(append([]promotionapp.AppliedCouponContext{}, applied[:i]...), applied[i+1:]...)
		validated, err := s.eligible.Validate(ctx, temp.UserID, promotionapp.ValidateRequest{
			Code:      c.Code,
			Amount:    lineAmount[c.ProductID],
			ProductID: c.ProductID,
			Applied:   others,
		})
		if err != nil {
			return nil, staleSnapshot(err)
		}
		if !validated.Discount.Equal(c.DiscountAmount) {
			return nil, staleSnapshot(fmt.Errorf("discount drifted from %s to %s", c.DiscountAmount, validated.Discount))
		}

		couponIDByCode[c.Code] = validated.Coupon.ID
		if err := s.usages.RecordUsage(ctx, validated.Coupon.ID, temp.UserID, validated.Coupon.Restriction.MaxUsesPerUser); err != nil {
			return nil, err
		}
		if err := s.coupons.IncrementTotalUses(ctx, validated.Coupon.ID); err != nil {
			return nil, err
		}
	}
	return couponIDByCode, nil
}

// staleSnapshot tags a re-validation failure so the handler reports 409 and
// the transaction rolls back with the temporary order intact.
func staleSnapshot(cause error) error {
	return fmt.Errorf("%w: %s", checkout.ErrStaleSnapshot, cause)
}
