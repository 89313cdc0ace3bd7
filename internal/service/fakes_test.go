package service

import (
	"context"
	"errors"
	"time"

	"go-scanify-pos/internal/model"
	"go-scanify-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeProductRepo struct {
	units     map[string]*model.ProductItem // barcode -> unit
	setSold   map[string][]bool             // barcode -> recorded writes
	failSold  map[string]bool               // barcodes whose SetSold fails
	findCalls int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		units:    make(map[string]*model.ProductItem),
		setSold:  make(map[string][]bool),
		failSold: make(map[string]bool),
	}
}

func (f *fakeProductRepo) addUnit(barcode string, price float64, discount string, sold bool) {
	f.units[barcode] = &model.ProductItem{
		Barcode: barcode,
		Sold:    sold,
		Type: model.ProductType{
			Name:     "Item " + barcode,
			Price:    price,
			Discount: discount,
		},
	}
}

func (f *fakeProductRepo) CreateType(t *model.ProductType) error { return nil }
func (f *fakeProductRepo) CreateUnit(i *model.ProductItem) error { return nil }

func (f *fakeProductRepo) FindUnit(barcode string, sold bool) (*model.ProductItem, error) {
	f.findCalls++
	item, ok := f.units[barcode]
	if !ok || item.Sold != sold {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (f *fakeProductRepo) SetSold(barcode string, sold bool) error {
	if f.failSold[barcode] {
		return errors.New("write refused")
	}
	f.setSold[barcode] = append(f.setSold[barcode], sold)
	if item, ok := f.units[barcode]; ok {
		item.Sold = sold
	}
	return nil
}

type fakeBillRepo struct {
	bills      map[uuid.UUID]*model.Bill
	created    int
	failCreate bool
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: make(map[uuid.UUID]*model.Bill)}
}

func (f *fakeBillRepo) Create(bill *model.Bill) error {
	if f.failCreate {
		return errors.New("connection reset")
	}
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	f.created++
	f.bills[bill.ID] = bill
	return nil
}

func (f *fakeBillRepo) FindByID(id uuid.UUID) (*model.Bill, error) {
	bill, ok := f.bills[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return bill, nil
}

func (f *fakeBillRepo) FindAll() ([]model.Bill, error) {
	out := make([]model.Bill, 0, len(f.bills))
	for _, b := range f.bills {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBillRepo) UpdateStatus(id uuid.UUID, status model.BillStatus) error {
	bill, ok := f.bills[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	bill.Status = status
	return nil
}

func (f *fakeBillRepo) ExpireStalePending(before time.Time) (int64, error) {
	var n int64
	for _, b := range f.bills {
		if b.Status == model.BillStatusPendingPayment && b.CreatedAt.Before(before) {
			b.Status = model.BillStatusExpired
			n++
		}
	}
	return n, nil
}

type fakeStaffRepo struct {
	staff map[uuid.UUID]*model.Staff
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{staff: make(map[uuid.UUID]*model.Staff)}
}

func (f *fakeStaffRepo) addStaff(name string) *model.Staff {
	s := &model.Staff{Name: name, Email: name + "@example.com", IsActive: true}
	s.ID = uuid.New()
	f.staff[s.ID] = s
	return s
}

func (f *fakeStaffRepo) Create(s *model.Staff) error {
	f.staff[s.ID] = s
	return nil
}

func (f *fakeStaffRepo) FindByID(id uuid.UUID) (*model.Staff, error) {
	s, ok := f.staff[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeStaffRepo) FindByEmail(email string) (*model.Staff, error) {
	for _, s := range f.staff {
		if s.Email == email {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePendingStore struct {
	orders map[string]uuid.UUID
	ttls   map[string]time.Duration
}

func newFakePendingStore() *fakePendingStore {
	return &fakePendingStore{
		orders: make(map[string]uuid.UUID),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakePendingStore) Put(ctx context.Context, orderID string, billID uuid.UUID, ttl time.Duration) error {
	f.orders[orderID] = billID
	f.ttls[orderID] = ttl
	return nil
}

func (f *fakePendingStore) Consume(ctx context.Context, orderID string) (uuid.UUID, error) {
	billID, ok := f.orders[orderID]
	if !ok {
		return uuid.Nil, repository.ErrNoPendingOrder
	}
	delete(f.orders, orderID)
	return billID, nil
}

type fakeGateway struct {
	orderID string
	err     error
	calls   int
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amount float64, receipt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.orderID, nil
}
