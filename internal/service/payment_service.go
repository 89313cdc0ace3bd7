package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"go-scanify-pos/internal/invoice"
	"go-scanify-pos/internal/model"
	"go-scanify-pos/internal/repository"
	"go-scanify-pos/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VerifyPaymentRequest is the gateway's asynchronous confirmation callback
// payload, relayed by the billing client.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type VerifyPaymentResponse struct {
	BillID  uuid.UUID `json:"bill_id"`
	Invoice string    `json:"invoice"`
}

// PaymentService reconciles asynchronous payment confirmations with their
// deferred finalizations.
type PaymentService interface {
	VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error)
}

type paymentService struct {
	billRepo    repository.BillRepository
	productRepo repository.ProductRepository
	pending     repository.PendingOrderStore
	secret      string
	log         *zap.Logger
}

func NewPaymentService(
	billRepo repository.BillRepository,
	productRepo repository.ProductRepository,
	pending repository.PendingOrderStore,
	secret string,
	log *zap.Logger,
) PaymentService {
	return &paymentService{
		billRepo:    billRepo,
		productRepo: productRepo,
		pending:     pending,
		secret:      secret,
		log:         log,
	}
}

// ComputeSignature is the gateway's signing scheme: hex HMAC-SHA256 of
// "orderID|paymentID" under the shared key secret.
func ComputeSignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPayment authenticates the confirmation, then completes the
// deferred finalization exactly once. The pending mapping is consumed
// before any inventory effect, so a redelivered callback finds nothing to
// consume and becomes a safe no-op.
func (s *paymentService) VerifyPayment(ctx context.Context, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, errs[0].FailedField, errs[0].Tag)
	}

	expected := ComputeSignature(s.secret, req.OrderID, req.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		s.log.Warn("payment signature mismatch",
			zap.String("order_id", req.OrderID),
			zap.String("payment_id", req.PaymentID))
		return nil, ErrPaymentAuth
	}

	billID, err := s.pending.Consume(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNoPendingOrder) {
			return nil, fmt.Errorf("%w: order %s", ErrAlreadyReconciled, req.OrderID)
		}
		return nil, err
	}

	bill, err := s.billRepo.FindByID(billID)
	if err != nil {
		s.log.Error("pending order points at missing bill",
			zap.String("order_id", req.OrderID),
			zap.String("bill_id", billID.String()),
			zap.Error(err))
		return nil, err
	}

	if err := s.billRepo.UpdateStatus(billID, model.BillStatusPaid); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	bill.Status = model.BillStatusPaid

	applyInventoryUpdates(s.productRepo, s.log, bill)

	doc, err := invoice.Render(bill)
	if err != nil {
		s.log.Error("invoice render failed",
			zap.String("bill_id", billID.String()),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("payment reconciled",
		zap.String("order_id", req.OrderID),
		zap.String("payment_id", req.PaymentID),
		zap.String("bill_id", billID.String()))

	return &VerifyPaymentResponse{BillID: billID, Invoice: doc}, nil
}
