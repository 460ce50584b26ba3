package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentalliance/catalog-gateway/internal/model"
)

func TestNewProduct(t *testing.T) {
	p := model.NewProduct()

	assert.Empty(t, p.ID)
	assert.Len(t, p.AdditionalImages, model.AdditionalImageSlots)
	assert.NotNil(t, p.Features)
	assert.Empty(t, p.Features)
	assert.True(t, p.IsDraft())
}

func TestFromPartial(t *testing.T) {
	t.Run("Should overlay present fields over defaults", func(t *testing.T) {
		p, err := model.FromPartial(json.RawMessage(`{"name":"IFPD 75 inch","price":1200.5}`))
		require.NoError(t, err)

		assert.Equal(t, "IFPD 75 inch", p.Name)
		assert.Equal(t, 1200.5, p.Price)
		assert.Len(t, p.AdditionalImages, model.AdditionalImageSlots)
		assert.Empty(t, p.Features)
	})

	t.Run("Should reject unknown fields", func(t *testing.T) {
		_, err := model.FromPartial(json.RawMessage(`{"name":"x","color":"red"}`))
		assert.ErrorContains(t, err, "unknown product field")
	})

	t.Run("Should keep base values for absent fields", func(t *testing.T) {
		base := model.NewProduct()
		base.Name = "Stand"
		base.Stocks = 7

		p, err := model.OverlayPartial(base, json.RawMessage(`{"price":99}`))
		require.NoError(t, err)

		assert.Equal(t, "Stand", p.Name)
		assert.Equal(t, 7, p.Stocks)
		assert.Equal(t, float64(99), p.Price)
	})
}

func TestNormalized(t *testing.T) {
	t.Run("Should pad and truncate additional images", func(t *testing.T) {
		p := model.Product{AdditionalImages: []string{"a"}}
		assert.Equal(t, []string{"a", "", ""}, p.Normalized().AdditionalImages)

		p = model.Product{AdditionalImages: []string{"a", "b", "c", "d"}}
		assert.Equal(t, []string{"a", "b", "c"}, p.Normalized().AdditionalImages)
	})

	t.Run("Should drop empty and duplicate features", func(t *testing.T) {
		p := model.Product{Features: []string{"4K", "", "HDMI", "4K"}}
		assert.Equal(t, []string{"4K", "HDMI"}, p.Normalized().Features)
	})
}

func TestAddFeature(t *testing.T) {
	p := model.NewProduct()

	p.AddFeature("4K")
	p.AddFeature("")
	p.AddFeature("4K")
	p.AddFeature("HDMI")

	assert.Equal(t, []string{"4K", "HDMI"}, p.Features)
}

func TestCategoryValidate(t *testing.T) {
	for _, c := range model.Categories {
		assert.NoError(t, c.Validate())
	}

	assert.Error(t, model.Category("Gaming").Validate())
	assert.Error(t, model.Category("").Validate())
}

func TestSameContent(t *testing.T) {
	a := model.NewProduct()
	a.ID = "1"
	a.Name = "Mic"

	b := a

	assert.True(t, model.SameContent([]model.Product{a}, []model.Product{b}))

	b.Price = 5
	assert.False(t, model.SameContent([]model.Product{a}, []model.Product{b}))

	assert.False(t, model.SameContent([]model.Product{a}, nil))
	assert.True(t, model.SameContent(nil, []model.Product{}))
}
