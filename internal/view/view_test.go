package view_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentalliance/catalog-gateway/internal/apperr"
	"github.com/studentalliance/catalog-gateway/internal/config"
	"github.com/studentalliance/catalog-gateway/internal/model"
	"github.com/studentalliance/catalog-gateway/internal/view"
)

type fakeCatalog struct {
	products  []model.Product
	loaded    bool
	removed   []string
	removeErr error
}

func (f *fakeCatalog) Products() []model.Product { return f.products }
func (f *fakeCatalog) Loaded() bool              { return f.loaded }
func (f *fakeCatalog) Remove(_ context.Context, id string, _ string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, id)
	return nil
}

func product(id, name string, category model.Category, price float64, stocks int) model.Product {
	p := model.NewProduct()
	p.ID = id
	p.Name = name
	p.Category = category
	p.Price = price
	p.Stocks = stocks
	return p
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		loaded: true,
		products: []model.Product{
			product("1", "Board 65", model.CategoryDigitalBoards, 900, 3),
			product("2", "Studio Mic", model.CategoryMic, 150, 12),
			product("3", "Ceiling Light", model.CategoryLight, 40, 7),
		},
	}
}

func TestFilter(t *testing.T) {
	products := testCatalog().products

	t.Run("Should match name case-insensitively", func(t *testing.T) {
		got := view.Filter(products, "mIc")
		require.Len(t, got, 1)
		assert.Equal(t, "Studio Mic", got[0].Name)
	})

	t.Run("Should match category", func(t *testing.T) {
		got := view.Filter(products, "light")
		require.Len(t, got, 1)
		assert.Equal(t, "3", got[0].ID)
	})

	t.Run("Should keep everything on empty query", func(t *testing.T) {
		assert.Len(t, view.Filter(products, ""), 3)
	})

	t.Run("Should return empty set when nothing matches", func(t *testing.T) {
		assert.Empty(t, view.Filter(products, "projector"))
	})
}

func TestSort(t *testing.T) {
	t.Run("Should sort by price ascending and descending", func(t *testing.T) {
		products := testCatalog().products

		view.Sort(products, view.SortByPrice, true)
		assert.Equal(t, []string{"3", "2", "1"}, ids(products))

		view.Sort(products, view.SortByPrice, false)
		assert.Equal(t, []string{"1", "2", "3"}, ids(products))
	})

	t.Run("Should keep order for unknown key", func(t *testing.T) {
		products := testCatalog().products
		view.Sort(products, "color", true)
		assert.Equal(t, []string{"1", "2", "3"}, ids(products))
	})

	t.Run("Should sort by stocks", func(t *testing.T) {
		products := testCatalog().products
		view.Sort(products, view.SortByStocks, true)
		assert.Equal(t, []string{"1", "3", "2"}, ids(products))
	})

	t.Run("Should be stable on equal keys", func(t *testing.T) {
		products := []model.Product{
			product("a", "Same", model.CategoryMic, 10, 0),
			product("b", "Same", model.CategoryMic, 10, 0),
		}
		view.Sort(products, view.SortByName, true)
		assert.Equal(t, []string{"a", "b"}, ids(products))
	})
}

func TestList(t *testing.T) {
	t.Run("Should report loading before the store is warm", func(t *testing.T) {
		svc := view.New(config.Store{Currency: "₹"}, &fakeCatalog{loaded: false})

		result := svc.List(view.ListParams{})

		assert.True(t, result.Loading)
		assert.Empty(t, result.Rows)
	})

	t.Run("Should render rows with display price", func(t *testing.T) {
		svc := view.New(config.Store{Currency: "₹"}, testCatalog())

		result := svc.List(view.ListParams{Sort: view.SortByPrice, Order: view.OrderAsc})

		require.Len(t, result.Rows, 3)
		assert.False(t, result.Loading)
		assert.False(t, result.Empty)
		assert.Equal(t, "₹40", result.Rows[0].DisplayPrice)
		assert.Equal(t, view.OrderAsc, result.Order)
	})

	t.Run("Should toggle order when the same sort key repeats", func(t *testing.T) {
		svc := view.New(config.Store{Currency: "₹"}, testCatalog())

		first := svc.List(view.ListParams{Sort: view.SortByName})
		assert.Equal(t, view.OrderAsc, first.Order)

		second := svc.List(view.ListParams{Sort: view.SortByName})
		assert.Equal(t, view.OrderDesc, second.Order)

		third := svc.List(view.ListParams{Sort: view.SortByPrice})
		assert.Equal(t, view.OrderAsc, third.Order)
	})

	t.Run("Should report empty result sets", func(t *testing.T) {
		svc := view.New(config.Store{Currency: "₹"}, testCatalog())

		result := svc.List(view.ListParams{Search: "nothing here"})

		assert.True(t, result.Empty)
		assert.Empty(t, result.Rows)
	})
}

func TestStagedDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Should require an existing product to stage", func(t *testing.T) {
		svc := view.New(config.Store{}, testCatalog())
		assert.ErrorIs(t, svc.StageDelete("missing"), apperr.ProductNotFoundErr)
	})

	t.Run("Should not remove anything until confirmed", func(t *testing.T) {
		catalog := testCatalog()
		svc := view.New(config.Store{}, catalog)

		require.NoError(t, svc.StageDelete("2"))
		assert.Empty(t, catalog.removed)

		result := svc.List(view.ListParams{})
		for _, row := range result.Rows {
			if row.Product.ID == "2" {
				assert.True(t, row.PendingDelete)
			} else {
				assert.False(t, row.PendingDelete)
			}
		}
	})

	t.Run("Should remove on confirm", func(t *testing.T) {
		catalog := testCatalog()
		svc := view.New(config.Store{}, catalog)

		require.NoError(t, svc.StageDelete("2"))
		require.NoError(t, svc.ConfirmDelete(ctx, "2", "token"))

		assert.Equal(t, []string{"2"}, catalog.removed)

		// Confirming again fails: the staging was consumed.
		assert.ErrorIs(t, svc.ConfirmDelete(ctx, "2", "token"), apperr.NoDeleteStagedErr)
	})

	t.Run("Should keep the staging when the remote delete fails", func(t *testing.T) {
		catalog := testCatalog()
		catalog.removeErr = errors.New("boom")
		svc := view.New(config.Store{}, catalog)

		require.NoError(t, svc.StageDelete("1"))
		require.Error(t, svc.ConfirmDelete(ctx, "1", "token"))

		catalog.removeErr = nil
		assert.NoError(t, svc.ConfirmDelete(ctx, "1", "token"))
	})

	t.Run("Should cancel a staged delete", func(t *testing.T) {
		catalog := testCatalog()
		svc := view.New(config.Store{}, catalog)

		assert.ErrorIs(t, svc.CancelDelete("1"), apperr.NoDeleteStagedErr)

		require.NoError(t, svc.StageDelete("1"))
		require.NoError(t, svc.CancelDelete("1"))

		assert.ErrorIs(t, svc.ConfirmDelete(ctx, "1", "token"), apperr.NoDeleteStagedErr)
		assert.Empty(t, catalog.removed)
	})
}

func ids(products []model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
