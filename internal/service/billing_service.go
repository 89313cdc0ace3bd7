package service

import (
	"context"
	"fmt"
	"time"

	"go-scanify-pos/internal/billing"
	"go-scanify-pos/internal/invoice"
	"go-scanify-pos/internal/model"
	"go-scanify-pos/internal/repository"
	"go-scanify-pos/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// finalizeState tracks the orchestrator's progress through one finalize
// call. Purely diagnostic; the durable truth is the bill's status column.
type finalizeState string

const (
	stateValidating         finalizeState = "VALIDATING"
	stateCashPersisting     finalizeState = "CASH_PERSISTING"
	stateOnlineOrderCreated finalizeState = "ONLINE_ORDER_CREATED"
	stateInventoryUpdating  finalizeState = "INVENTORY_UPDATING"
	stateInvoiceReady       finalizeState = "INVOICE_READY"
	stateFailed             finalizeState = "FAILED"
)

// PaymentGateway creates orders at the external payment provider. Calls
// must be time-bounded through the context.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount float64, receipt string) (string, error)
}

// FinalizeItem is one line of the submitted draft.
type FinalizeItem struct {
	Barcode       string  `json:"barcode" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Brand         string  `json:"brand"`
	Category      string  `json:"category"`
	Unit          string  `json:"unit"`
	ImageURL      string  `json:"image_url"`
	OriginalPrice float64 `json:"original_price" validate:"gte=0"`
	Discount      string  `json:"discount"`
	Qty           int     `json:"qty" validate:"required,gt=0"`
}

// FinalizeBillRequest is the billing session's submission of its draft.
type FinalizeBillRequest struct {
	Date        *time.Time     `json:"date"`
	Customer    model.Customer `json:"customer"`
	Mode        string         `json:"mode" validate:"required,oneof=sell return"`
	PaymentMode string         `json:"payment_mode" validate:"required,oneof=cash online"`
	Items       []FinalizeItem `json:"items" validate:"required,min=1,dive"`
}

type FinalizeBillResponse struct {
	BillID  uuid.UUID        `json:"bill_id"`
	Status  model.BillStatus `json:"status"`
	Total   float64          `json:"total"`
	Invoice string           `json:"invoice,omitempty"`
	OrderID string           `json:"order_id,omitempty"`
}

type BillingService interface {
	FinalizeBill(ctx context.Context, staffID uuid.UUID, req *FinalizeBillRequest) (*FinalizeBillResponse, error)
	GetBill(id uuid.UUID) (*model.Bill, error)
	GetAllBills() ([]model.Bill, error)
	ExpireStalePending(maxAge time.Duration) (int64, error)
}

type billingService struct {
	billRepo    repository.BillRepository
	productRepo repository.ProductRepository
	staffRepo   repository.StaffRepository
	pending     repository.PendingOrderStore
	gateway     PaymentGateway
	pendingTTL  time.Duration
	log         *zap.Logger
}

func NewBillingService(
	billRepo repository.BillRepository,
	productRepo repository.ProductRepository,
	staffRepo repository.StaffRepository,
	pending repository.PendingOrderStore,
	gateway PaymentGateway,
	pendingTTL time.Duration,
	log *zap.Logger,
) BillingService {
	return &billingService{
		billRepo:    billRepo,
		productRepo: productRepo,
		staffRepo:   staffRepo,
		pending:     pending,
		gateway:     gateway,
		pendingTTL:  pendingTTL,
		log:         log,
	}
}

// FinalizeBill validates the submitted draft, persists it, and branches on
// payment mode. Cash bills complete synchronously: inventory transitions
// and the invoice happen here. Online bills stop after the gateway order
// is created; payment reconciliation finishes them later.
func (s *billingService) FinalizeBill(ctx context.Context, staffID uuid.UUID, req *FinalizeBillRequest) (*FinalizeBillResponse, error) {
	s.transition(staffID, uuid.Nil, stateValidating)

	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		s.transition(staffID, uuid.Nil, stateFailed)
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, errs[0].FailedField, errs[0].Tag)
	}
	staff, err := s.staffRepo.FindByID(staffID)
	if err != nil {
		s.transition(staffID, uuid.Nil, stateFailed)
		return nil, fmt.Errorf("%w: unknown staff %s", ErrValidation, staffID)
	}

	bill := s.buildBill(staff, req)

	if bill.PaymentMode == model.PaymentModeOnline {
		return s.finalizeOnline(ctx, bill)
	}
	return s.finalizeCash(bill)
}

// buildBill snapshots the draft into an immutable bill. Prices are
// recomputed through the pricing engine so the persisted cents never
// depend on what a client sent.
func (s *billingService) buildBill(staff *model.Staff, req *FinalizeBillRequest) *model.Bill {
	mode := model.BillMode(req.Mode)
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	items := make([]model.BillItem, 0, len(req.Items))
	lines := make([]billing.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		finalPrice := billing.FinalPrice(it.OriginalPrice, it.Discount)
		items = append(items, model.BillItem{
			Barcode:       it.Barcode,
			Name:          it.Name,
			Brand:         it.Brand,
			Category:      it.Category,
			Unit:          it.Unit,
			ImageURL:      it.ImageURL,
			OriginalPrice: billing.Round2(it.OriginalPrice),
			Discount:      it.Discount,
			FinalPrice:    finalPrice,
			Qty:           it.Qty,
			Action:        mode,
		})
		lines = append(lines, billing.LineItem{FinalPrice: finalPrice, Qty: it.Qty})
	}

	return &model.Bill{
		Date:        date,
		StaffID:     staff.ID,
		Staff:       staff,
		Customer:    req.Customer,
		Mode:        mode,
		PaymentMode: model.PaymentMode(req.PaymentMode),
		Total:       billing.Total(lines),
		Items:       items,
	}
}

func (s *billingService) finalizeCash(bill *model.Bill) (*FinalizeBillResponse, error) {
	s.transition(bill.StaffID, uuid.Nil, stateCashPersisting)

	// Persist first: a complete financial record beats perfect stock
	// consistency (inventory drift is logged for manual reconciliation).
	bill.Status = model.BillStatusPaid
	if err := s.billRepo.Create(bill); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.transition(bill.StaffID, bill.ID, stateInventoryUpdating)
	applyInventoryUpdates(s.productRepo, s.log, bill)

	doc, err := invoice.Render(bill)
	if err != nil {
		// The bill and inventory are committed; an invoice render failure
		// is internal only.
		s.log.Error("invoice render failed",
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err))
		return nil, err
	}

	s.transition(bill.StaffID, bill.ID, stateInvoiceReady)
	return &FinalizeBillResponse{
		BillID:  bill.ID,
		Status:  bill.Status,
		Total:   bill.Total,
		Invoice: doc,
	}, nil
}

func (s *billingService) finalizeOnline(ctx context.Context, bill *model.Bill) (*FinalizeBillResponse, error) {
	bill.Status = model.BillStatusPendingPayment
	if err := s.billRepo.Create(bill); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	orderID, err := s.gateway.CreateOrder(ctx, bill.Total, bill.ID.String())
	if err != nil {
		// Bill stays PENDING_PAYMENT; the expiry sweeper reclaims it.
		s.log.Error("payment order creation failed",
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("payment order creation failed: %w", err)
	}

	if err := s.pending.Put(ctx, orderID, bill.ID, s.pendingTTL); err != nil {
		s.log.Error("pending order mapping write failed",
			zap.String("bill_id", bill.ID.String()),
			zap.String("order_id", orderID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.transition(bill.StaffID, bill.ID, stateOnlineOrderCreated)
	return &FinalizeBillResponse{
		BillID:  bill.ID,
		Status:  bill.Status,
		Total:   bill.Total,
		OrderID: orderID,
	}, nil
}

func (s *billingService) GetBill(id uuid.UUID) (*model.Bill, error) {
	return s.billRepo.FindByID(id)
}

func (s *billingService) GetAllBills() ([]model.Bill, error) {
	return s.billRepo.FindAll()
}

// ExpireStalePending reclaims pending-payment bills whose gateway order was
// never confirmed within maxAge.
func (s *billingService) ExpireStalePending(maxAge time.Duration) (int64, error) {
	n, err := s.billRepo.ExpireStalePending(time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired stale pending bills", zap.Int64("count", n))
	}
	return n, nil
}

func (s *billingService) transition(staffID, billID uuid.UUID, state finalizeState) {
	s.log.Debug("finalize state",
		zap.String("staff_id", staffID.String()),
		zap.String("bill_id", billID.String()),
		zap.String("state", string(state)))
}

// applyInventoryUpdates flips each item's sold flag: sell marks the unit
// sold, return marks it available again. Writes are independent and
// idempotent per unit; a failure is logged with enough context to replay
// manually, never rolled back. Shared by the cash path and payment
// reconciliation.
func applyInventoryUpdates(productRepo repository.ProductRepository, log *zap.Logger, bill *model.Bill) {
	for _, item := range bill.Items {
		sold := item.Action != model.BillModeReturn
		if err := productRepo.SetSold(item.Barcode, sold); err != nil {
			log.Error("inventory unit update failed, needs manual reconciliation",
				zap.String("bill_id", bill.ID.String()),
				zap.String("staff_id", bill.StaffID.String()),
				zap.String("barcode", item.Barcode),
				zap.Bool("sold", sold),
				zap.Error(err))
		}
	}
}
