package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/printforge/printshop-backend/pkg/db/models"
	"github.com/printforge/printshop-backend/pkg/enums"
	pkgerrors "github.com/printforge/printshop-backend/pkg/errors"
	"github.com/printforge/printshop-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubProductsRepo struct {
	products      map[uuid.UUID]*models.Product
	lineItemCount map[uuid.UUID]int64
	deleted       []uuid.UUID
	createErr     error
}

func newStubProductsRepo() *stubProductsRepo {
	return &stubProductsRepo{
		products:      make(map[uuid.UUID]*models.Product),
		lineItemCount: make(map[uuid.UUID]int64),
	}
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s *stubProductsRepo) List(ctx context.Context, params pagination.Params, filters ProductListFilters) (*ProductList, error) {
	list := &ProductList{}
	for _, product := range s.products {
		list.Products = append(list.Products, *product)
	}
	return list, nil
}

func (s *stubProductsRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.products[product.ID] = product
	return product, nil
}

func (s *stubProductsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.products, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubProductsRepo) CountLineItems(ctx context.Context, productID uuid.UUID) (int64, error) {
	return s.lineItemCount[productID], nil
}

type stubMediaFinder struct {
	rows map[uuid.UUID]*models.Media
}

func (s *stubMediaFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Media, error) {
	media, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return media, nil
}

type stubImageRemover struct {
	deleted []uuid.UUID
	err     error
}

func (s *stubImageRemover) Delete(ctx context.Context, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo *stubProductsRepo, media *stubMediaFinder, images *stubImageRemover) Service {
	t.Helper()

	if media == nil {
		media = &stubMediaFinder{rows: make(map[uuid.UUID]*models.Media)}
	}
	if images == nil {
		images = &stubImageRemover{}
	}
	svc, err := NewService(repo, stubTxRunner{}, media, images)
	require.NoError(t, err)
	return svc
}

func TestServiceCreate_validation(t *testing.T) {
	svc := newTestService(t, newStubProductsRepo(), nil, nil)

	_, err := svc.Create(context.Background(), CreateProductInput{Name: " "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(context.Background(), CreateProductInput{
		Name:     "Spool",
		UnitCost: decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCreate_rejectsNonProductImage(t *testing.T) {
	media := &stubMediaFinder{rows: make(map[uuid.UUID]*models.Media)}
	modelID := uuid.New()
	media.rows[modelID] = &models.Media{ID: modelID, Kind: enums.MediaKindProjectModel}

	svc := newTestService(t, newStubProductsRepo(), media, nil)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Name:         "Spool",
		UnitCost:     decimal.NewFromInt(10),
		ImageMediaID: &modelID,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCreate_normalizesSKU(t *testing.T) {
	repo := newStubProductsRepo()
	svc := newTestService(t, repo, nil, nil)

	blank := "   "
	created, err := svc.Create(context.Background(), CreateProductInput{
		Name:     "No SKU",
		UnitCost: decimal.NewFromInt(5),
		SKU:      &blank,
	})
	require.NoError(t, err)
	assert.Nil(t, created.SKU)

	padded := "  PLA-BLK  "
	created, err = svc.Create(context.Background(), CreateProductInput{
		Name:     "With SKU",
		UnitCost: decimal.NewFromInt(5),
		SKU:      &padded,
	})
	require.NoError(t, err)
	require.NotNil(t, created.SKU)
	assert.Equal(t, "PLA-BLK", *created.SKU)
}

func TestServiceUpdate_unitCostLeavesSnapshotAlone(t *testing.T) {
	repo := newStubProductsRepo()
	existing := &models.Product{ID: uuid.New(), Name: "Spool", UnitCost: decimal.NewFromInt(10)}
	repo.products[existing.ID] = existing

	svc := newTestService(t, repo, nil, nil)

	newCost := decimal.NewFromInt(20)
	updated, err := svc.Update(context.Background(), existing.ID, UpdateProductInput{UnitCost: &newCost})
	require.NoError(t, err)
	assert.True(t, updated.UnitCost.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "Spool", updated.Name)
}

func TestServiceUpdate_clearImage(t *testing.T) {
	repo := newStubProductsRepo()
	imageID := uuid.New()
	existing := &models.Product{ID: uuid.New(), Name: "Spool", ImageMediaID: &imageID}
	repo.products[existing.ID] = existing

	svc := newTestService(t, repo, nil, nil)

	updated, err := svc.Update(context.Background(), existing.ID, UpdateProductInput{ClearImage: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ImageMediaID)
}

func TestServiceDelete_blockedWhenOnInvoices(t *testing.T) {
	repo := newStubProductsRepo()
	existing := &models.Product{ID: uuid.New(), Name: "Referenced"}
	repo.products[existing.ID] = existing
	repo.lineItemCount[existing.ID] = 2

	svc := newTestService(t, repo, nil, nil)

	err := svc.Delete(context.Background(), existing.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
	assert.Empty(t, repo.deleted)
}

func TestServiceDelete_cleansUpImage(t *testing.T) {
	repo := newStubProductsRepo()
	imageID := uuid.New()
	existing := &models.Product{ID: uuid.New(), Name: "With Image", ImageMediaID: &imageID}
	repo.products[existing.ID] = existing

	images := &stubImageRemover{}
	svc := newTestService(t, repo, nil, images)

	require.NoError(t, svc.Delete(context.Background(), existing.ID))
	assert.Equal(t, []uuid.UUID{existing.ID}, repo.deleted)
	assert.Equal(t, []uuid.UUID{imageID}, images.deleted)
}

func TestServiceDelete_ignoresImageConflict(t *testing.T) {
	repo := newStubProductsRepo()
	imageID := uuid.New()
	existing := &models.Product{ID: uuid.New(), Name: "Shared Image", ImageMediaID: &imageID}
	repo.products[existing.ID] = existing

	images := &stubImageRemover{err: pkgerrors.New(pkgerrors.CodeConflict, "media is still referenced")}
	svc := newTestService(t, repo, nil, images)

	require.NoError(t, svc.Delete(context.Background(), existing.ID))
	assert.Equal(t, []uuid.UUID{existing.ID}, repo.deleted)
}
