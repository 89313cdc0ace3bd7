package repository

import (
	"time"

	"go-scanify-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BillRepository interface {
	Create(bill *model.Bill) error
	FindByID(id uuid.UUID) (*model.Bill, error)
	FindAll() ([]model.Bill, error)
	UpdateStatus(id uuid.UUID, status model.BillStatus) error
	ExpireStalePending(before time.Time) (int64, error)
}

type billRepo struct {
	db *gorm.DB
}

func NewBillRepo(db *gorm.DB) BillRepository {
	return &billRepo{db}
}

func (r *billRepo) Create(bill *model.Bill) error {
	return r.db.Create(bill).Error
}

func (r *billRepo) FindByID(id uuid.UUID) (*model.Bill, error) {
	var bill model.Bill
	err := r.db.Preload("Items").Preload("Staff").First(&bill, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepo) FindAll() ([]model.Bill, error) {
	var bills []model.Bill
	err := r.db.Preload("Items").Preload("Staff").Order("created_at DESC").Find(&bills).Error
	return bills, err
}

func (r *billRepo) UpdateStatus(id uuid.UUID, status model.BillStatus) error {
	return r.db.Model(&model.Bill{}).Where("id = ?", id).Update("status", status).Error
}

// ExpireStalePending marks pending-payment bills older than the cutoff as
// expired, so abandoned online orders do not linger indefinitely.
func (r *billRepo) ExpireStalePending(before time.Time) (int64, error) {
	res := r.db.Model(&model.Bill{}).
		Where("status = ? AND created_at < ?", model.BillStatusPendingPayment, before).
		Update("status", model.BillStatusExpired)
	return res.RowsAffected, res.Error
}
