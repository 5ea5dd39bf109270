package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/enums"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type mediaFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error)
}

// ImageRemover detaches and removes an uploaded image once nothing uses it.
type ImageRemover interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service defines catalog operations exposed to the API layer.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, input ListProductsInput) (*ProductList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	media  mediaFinder
	images ImageRemover
}

// NewService builds a product service with the required dependencies.
func NewService(repo Repository, tx txRunner, media mediaFinder, images ImageRemover) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if media == nil {
		return nil, fmt.Errorf("media finder required")
	}
	if images == nil {
		return nil, fmt.Errorf("image remover required")
	}
	return &service{repo: repo, tx: tx, media: media, images: images}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if input.UnitCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.ImageMediaID != nil {
		if err := s.checkProductImage(ctx, *input.ImageMediaID); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		Name:         name,
		Description:  input.Description,
		SKU:          normalizeSKU(input.SKU),
		UnitCost:     input.UnitCost,
		Stock:        input.Stock,
		Category:     input.Category,
		Notes:        input.Notes,
		ImageMediaID: input.ImageMediaID,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductList, error) {
	list, err := s.repo.List(ctx, input.Pagination, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

// Update applies the provided fields. Changing the unit cost only affects
// line items attached after the change; existing invoices keep their snapshot.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}
	if input.Stock != nil && *input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.ImageMediaID != nil {
		if err := s.checkProductImage(ctx, *input.ImageMediaID); err != nil {
			return nil, err
		}
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		applyProductUpdate(product, input)

		updated, err = repo.Update(ctx, product)
		if err != nil {
			if db.IsUniqueViolation(err, "sku") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sku already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the product unless invoice line items still reference it.
// An attached image is cleaned up afterwards.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	var imageID *uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		count, err := repo.CountLineItems(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count product line items")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "product appears on invoices and cannot be deleted")
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		imageID = product.ImageMediaID
		return nil
	})
	if err != nil {
		return err
	}

	if imageID != nil {
		// Image cleanup happens after commit. A conflict here means the
		// media row picked up another reference in the meantime.
		if err := s.images.Delete(ctx, *imageID); err != nil {
			if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict {
				return nil
			}
			return err
		}
	}
	return nil
}

func (s *service) checkProductImage(ctx context.Context, mediaID uuid.UUID) error {
	if mediaID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "image media id cannot be empty")
	}
	media, err := s.media.FindByID(ctx, mediaID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "image media not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image media")
	}
	if media.Kind != enums.MediaKindProductImage {
		return pkgerrors.New(pkgerrors.CodeValidation, "media is not a product image")
	}
	return nil
}

func normalizeSKU(sku *string) *string {
	if sku == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*sku)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func applyProductUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.SKU != nil {
		product.SKU = normalizeSKU(input.SKU)
	}
	if input.UnitCost != nil {
		product.UnitCost = *input.UnitCost
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Notes != nil {
		product.Notes = input.Notes
	}
	switch {
	case input.ClearImage:
		product.ImageMediaID = nil
		product.ImageMedia = nil
	case input.ImageMediaID != nil:
		product.ImageMediaID = input.ImageMediaID
		product.ImageMedia = nil
	}
}
