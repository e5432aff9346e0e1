package usecase

import (
	"context"
	"net/http"

	"github.com/zozz909/cafe-drive/internal/domain/model"
	repo "github.com/zozz909/cafe-drive/internal/repository"
)

// メニュー（カテゴリ・商品）の読み取り専用。
type CatalogUsecase struct {
	tx repo.TransactionManager
}

func NewCatalogUsecase(tx repo.TransactionManager) *CatalogUsecase {
	return &CatalogUsecase{tx: tx}
}

type ListProductsInput struct {
	CategoryID         *int64
	IncludeUnavailable bool
}

func (u *CatalogUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := r.Categories().List(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = items
		return nil
	})
	if err != nil {
		return []model.Category{}, err
	}
	return out, nil
}

func (u *CatalogUsecase) ListProducts(ctx context.Context, in ListProductsInput) ([]model.Product, error) {
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return []model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid category_id")
	}

	var out []model.Product
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, err := r.Products().List(ctx, repo.ProductListFilter{
			CategoryID:         in.CategoryID,
			IncludeUnavailable: in.IncludeUnavailable,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = items
		return nil
	})
	if err != nil {
		return []model.Product{}, err
	}
	return out, nil
}
