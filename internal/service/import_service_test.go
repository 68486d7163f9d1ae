package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/storefront-api/internal/config"
	"github.com/yourusername/storefront-api/internal/domain/entity"
	apperrors "github.com/yourusername/storefront-api/internal/pkg/errors"
)

func newTestImportService(images ImageRehoster) (*ImportService, *MockProductRepo, *MockCategoryRepo) {
	products := new(MockProductRepo)
	categories := new(MockCategoryRepo)
	cfg := config.ImportConfig{
		FallbackCategoryID: 1,
		MaxRows:            100,
		ImageTimeoutSec:    1,
		RehostImages:       true,
	}
	return NewImportService(products, categories, images, cfg, zap.NewNop()), products, categories
}

func TestImportService_Import_Report(t *testing.T) {
	svc, products, categories := newTestImportService(nil)

	categories.On("List", false).Return([]entity.Category{
		{ID: 1, Name: "General"},
		{ID: 4, Name: "Electronics", NameAr: "إلكترونيات"},
	}, nil)

	csv := "Name,Price,Stock,Category\n" +
		"Headphones,\"1,299.50\",7,electronics\n" +
		"Old Lamp,10,2,Home\n" +
		",5,1,\n" +
		"headphones,1,1,\n" +
		"Cable,abc,,إلكترونيات\n" +
		"Broken,3,3,\n"

	products.On("ExistsByName", "Headphones").Return(false, nil)
	products.On("ExistsByName", "Old Lamp").Return(true, nil)
	products.On("ExistsByName", "Cable").Return(false, nil)
	products.On("ExistsByName", "Broken").Return(false, nil)

	products.On("Create", mock.MatchedBy(func(p *entity.Product) bool {
		return p.Name == "Headphones"
	})).Return(nil)
	products.On("Create", mock.MatchedBy(func(p *entity.Product) bool {
		return p.Name == "Cable"
	})).Return(nil)
	products.On("Create", mock.MatchedBy(func(p *entity.Product) bool {
		return p.Name == "Broken"
	})).Return(errors.New("numeric field overflow"))

	report, err := svc.Import(context.Background(), "products.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 6, report.Total)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 2, report.Skipped, "existing product and in-file duplicate")
	assert.Equal(t, 2, report.Failed, "empty name and insert failure")
	assert.Equal(t, report.Total, report.Created+report.Skipped+report.Failed)
	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "row 4")
	assert.Contains(t, report.Errors[1], "insert failed")

	products.AssertExpectations(t)

	var headphones, cable *entity.Product
	for _, call := range products.Calls {
		if call.Method != "Create" {
			continue
		}
		p := call.Arguments.Get(0).(*entity.Product)
		switch p.Name {
		case "Headphones":
			headphones = p
		case "Cable":
			cable = p
		}
	}
	require.NotNil(t, headphones)
	require.NotNil(t, cable)
	assert.Equal(t, 1299.5, headphones.Price)
	assert.Equal(t, 7, headphones.Stock)
	assert.Equal(t, uint(4), headphones.CategoryID)
	assert.True(t, headphones.IsActive)
	assert.Empty(t, headphones.Images)

	assert.Equal(t, 0.0, cable.Price)
	assert.Equal(t, 100, cable.Stock)
	assert.Equal(t, uint(4), cable.CategoryID)
}

func TestImportService_Import_RehostFailureKeepsOriginalURL(t *testing.T) {
	images := new(MockRehoster)
	svc, products, categories := newTestImportService(images)

	categories.On("List", false).Return([]entity.Category{}, nil)
	products.On("ExistsByName", mock.Anything).Return(false, nil)
	products.On("Create", mock.Anything).Return(nil)

	images.On("Rehost", "https://supplier.example/a.jpg", "products").Return("https://cdn.example/products/a.jpg", nil)
	images.On("Rehost", "https://supplier.example/b.jpg", "products").Return("", errors.New("timeout"))

	csv := "name,image\nA,https://supplier.example/a.jpg\nB,https://supplier.example/b.jpg\nC,not-a-url\n"
	report, err := svc.Import(context.Background(), "batch.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Created)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "image kept at original url")

	images.AssertNumberOfCalls(t, "Rehost", 2)

	stored := map[string]string{}
	for _, call := range products.Calls {
		if call.Method == "Create" {
			p := call.Arguments.Get(0).(*entity.Product)
			stored[p.Name] = p.Images.First()
		}
	}
	assert.Equal(t, "https://cdn.example/products/a.jpg", stored["A"])
	assert.Equal(t, "https://supplier.example/b.jpg", stored["B"])
	assert.Equal(t, "not-a-url", stored["C"])
}

func TestImportService_Import_FileErrors(t *testing.T) {
	svc, _, categories := newTestImportService(nil)
	categories.On("List", false).Return([]entity.Category{}, nil)

	_, err := svc.Import(context.Background(), "products.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Import(context.Background(), "products.csv", strings.NewReader("price,stock\n1,2\n"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "name")
}

func TestImportService_Import_CancelledContext(t *testing.T) {
	svc, products, categories := newTestImportService(nil)
	categories.On("List", false).Return([]entity.Category{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Import(ctx, "products.csv", strings.NewReader("name\nA\nB\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Failed)
	products.AssertNotCalled(t, "Create", mock.Anything)
}
