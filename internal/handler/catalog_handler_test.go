package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/zozz909/cafe-drive/internal/domain/model"
	"github.com/zozz909/cafe-drive/internal/handler"
	infraRepo "github.com/zozz909/cafe-drive/internal/infra/repository"
	"github.com/zozz909/cafe-drive/internal/usecase"
)

func newCatalogAPI(t *testing.T) *echo.Echo {
	t.Helper()

	store := infraRepo.NewMemoryStore()
	store.SeedCategory(model.Category{ID: 1, Name: "Hot Drinks", SortOrder: 1})
	store.SeedCategory(model.Category{ID: 2, Name: "Cold Drinks", SortOrder: 2})
	store.SeedProduct(model.Product{ID: 1, CategoryID: 1, Name: "Espresso", Price: decimal.RequireFromString("12.00"), IsAvailable: true})
	store.SeedProduct(model.Product{ID: 2, CategoryID: 2, Name: "Iced Latte", Price: decimal.RequireFromString("18.00"), IsAvailable: true})
	store.SeedProduct(model.Product{ID: 3, CategoryID: 1, Name: "Mocha", Price: decimal.RequireFromString("15.00"), IsAvailable: false})

	e := echo.New()
	handler.NewCatalogHandler(usecase.NewCatalogUsecase(store)).RegisterRoutes(e)
	return e
}

func TestListCategories(t *testing.T) {
	e := newCatalogAPI(t)

	rec := doJSON(t, e, http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var out []model.Category
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Len(t, out, 2)
	assert.Equal(t, "Hot Drinks", out[0].Name)
}

func TestListProducts(t *testing.T) {
	e := newCatalogAPI(t)

	// デフォルトは販売中のみ
	rec := doJSON(t, e, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var out []model.Product
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Len(t, out, 2)

	// カテゴリ絞り込み
	rec = doJSON(t, e, http.MethodGet, "/products?category_id=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Len(t, out, 1)
	assert.Equal(t, "Iced Latte", out[0].Name)

	// all=true は販売停止中も返す
	rec = doJSON(t, e, http.MethodGet, "/products?all=true", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Len(t, out, 3)

	rec = doJSON(t, e, http.MethodGet, "/products?category_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
