package service

import (
	"context"
	"errors"
	"fmt"

	"go-scanify-pos/internal/model"
	"go-scanify-pos/internal/repository"

	"gorm.io/gorm"
)

// ProductService is the product-lookup collaborator: it resolves a scanned
// barcode against the unit state the action requires.
type ProductService interface {
	LookupByBarcode(ctx context.Context, barcode, action string) (*model.ScannedProduct, error)
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) LookupByBarcode(ctx context.Context, barcode, action string) (*model.ScannedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Selling needs an available unit, returning a previously sold one.
	wantSold := action == string(model.BillModeReturn)

	item, err := s.productRepo.FindUnit(barcode, wantSold)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: barcode %s", ErrLookupNotFound, barcode)
		}
		return nil, err
	}

	return &model.ScannedProduct{
		Barcode:  item.Barcode,
		Name:     item.Type.Name,
		Brand:    item.Type.Brand,
		Category: item.Type.Category,
		Unit:     item.Type.Unit,
		ImageURL: item.Type.ImageURL,
		Price:    item.Type.Price,
		Discount: item.Type.Discount,
		Sold:     item.Sold,
	}, nil
}
