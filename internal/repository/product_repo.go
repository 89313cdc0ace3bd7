package repository

import (
	"go-scanify-pos/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	CreateType(t *model.ProductType) error
	CreateUnit(item *model.ProductItem) error
	FindUnit(barcode string, sold bool) (*model.ProductItem, error)
	SetSold(barcode string, sold bool) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) CreateType(t *model.ProductType) error {
	return r.db.Create(t).Error
}

func (r *productRepo) CreateUnit(item *model.ProductItem) error {
	return r.db.Create(item).Error
}

// FindUnit resolves a barcode to its unit only when the unit is in the
// requested sold state: a sell needs an available unit, a return a sold
// one.
func (r *productRepo) FindUnit(barcode string, sold bool) (*model.ProductItem, error) {
	var item model.ProductItem
	err := r.db.Preload("Type").First(&item, "barcode = ? AND sold = ?", barcode, sold).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SetSold is an independent, idempotent per-unit write keyed by barcode.
func (r *productRepo) SetSold(barcode string, sold bool) error {
	res := r.db.Model(&model.ProductItem{}).
		Where("barcode = ?", barcode).
		Update("sold", sold)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
