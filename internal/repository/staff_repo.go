package repository

import (
	"go-scanify-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRepository interface {
	Create(staff *model.Staff) error
	FindByID(id uuid.UUID) (*model.Staff, error)
	FindByEmail(email string) (*model.Staff, error)
}

type staffRepo struct {
	db *gorm.DB
}

func NewStaffRepo(db *gorm.DB) StaffRepository {
	return &staffRepo{db}
}

func (r *staffRepo) Create(staff *model.Staff) error {
	return r.db.Create(staff).Error
}

func (r *staffRepo) FindByID(id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.First(&staff, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) FindByEmail(email string) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.Where("email = ?", email).First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}
