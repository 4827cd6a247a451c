package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/storefront-inventory-service/internal/apperr"
	"github.com/fekuna/storefront-inventory-service/internal/attribute/dto"
	"github.com/fekuna/storefront-inventory-service/internal/attribute/repository"
	"github.com/fekuna/storefront-inventory-service/internal/model"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
)

type fakeLedger struct {
	counts map[string]int
	err    error
	calls  int
}

func (f *fakeLedger) CountByAttribute(_ context.Context, attributeID string) (int, error) {
	f.calls++
	return f.counts[attributeID], f.err
}

func newTestUseCase(t *testing.T) (*attributeUseCase, *fakeLedger) {
	t.Helper()
	subcategories := map[string]bool{"sub-velas": true, "sub-aromas": true}
	repo := repository.NewMemoryRepository(func(id string) bool { return subcategories[id] })
	ledger := &fakeLedger{counts: map[string]int{}}
	uc := NewAttributeUseCase(repo, ledger, nil, logger.NewNop()).(*attributeUseCase)
	return uc, ledger
}

func mustCreate(t *testing.T, uc *attributeUseCase, in *dto.CreateAttributeInput) *model.Attribute {
	t.Helper()
	a, err := uc.CreateAttribute(context.Background(), in)
	require.NoError(t, err)
	return a
}

func TestCreateAttribute(t *testing.T) {
	ctx := context.Background()

	t.Run("trims and defaults", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		a := mustCreate(t, uc, &dto.CreateAttributeInput{
			SubcategoryID: "sub-velas",
			Name:          "  Color ",
			Value:         " Rojo",
			Description:   "   ",
			ColorHex:      "#FF0000",
		})

		assert.NotEmpty(t, a.ID)
		assert.Equal(t, "Color", a.Name)
		assert.Equal(t, "Rojo", a.Value)
		assert.Equal(t, model.AttributeTypeVariant, a.Type)
		assert.True(t, a.IsActive)
		assert.Nil(t, a.Description)
		require.NotNil(t, a.ColorHex)
		assert.Equal(t, "#FF0000", *a.ColorHex)
	})

	t.Run("validation", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		tests := []struct {
			name      string
			input     dto.CreateAttributeInput
			messageID string
		}{
			{"missing subcategory", dto.CreateAttributeInput{Name: "Color", Value: "Rojo"}, "error.validation.subcategory_required"},
			{"blank name", dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "  ", Value: "Rojo"}, "error.validation.name_required"},
			{"blank value", dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color"}, "error.validation.value_required"},
			{"unknown type", dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Rojo", Type: "flavor"}, "error.validation.attribute_type"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := uc.CreateAttribute(ctx, &tt.input)
				e, ok := apperr.As(err)
				require.True(t, ok)
				assert.Equal(t, apperr.KindValidation, e.Kind)
				assert.Equal(t, tt.messageID, e.MessageID)
			})
		}
	})

	t.Run("case insensitive duplicate among active", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Rojo"})

		_, err := uc.CreateAttribute(ctx, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "color", Value: "ROJO"})
		assert.ErrorIs(t, err, apperr.ErrDuplicate)

		// other subcategory is a different key
		mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-aromas", Name: "Color", Value: "Rojo"})
	})

	t.Run("inactive twin does not collide", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		inactive := false
		mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Aroma", Value: "Vainilla", IsActive: &inactive})
		mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Aroma", Value: "vainilla"})
	})

	t.Run("unknown subcategory is referential", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		_, err := uc.CreateAttribute(ctx, &dto.CreateAttributeInput{SubcategoryID: "sub-missing", Name: "Color", Value: "Azul"})
		e, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindReferential, e.Kind)
		assert.Equal(t, "error.referential.subcategory", e.MessageID)
	})
}

func TestListBySubcategory(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()
	inactive := false

	mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Verde", SortOrder: 2})
	mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Azul", SortOrder: 1})
	mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Negro", IsActive: &inactive})
	mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-aromas", Name: "Aroma", Value: "Coco"})

	items, err := uc.ListBySubcategory(ctx, "sub-velas")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Azul", items[0].Value)
	assert.Equal(t, "Verde", items[1].Value)

	_, err = uc.ListBySubcategory(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateAttribute(t *testing.T) {
	ctx := context.Background()

	t.Run("patch leaves other fields", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		a := mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Rojo", ColorHex: "#F00", SortOrder: 3})

		value := " Carmesí "
		got, err := uc.UpdateAttribute(ctx, &dto.UpdateAttributeInput{ID: a.ID, Value: &value})
		require.NoError(t, err)
		assert.Equal(t, "Carmesí", got.Value)
		assert.Equal(t, 3, got.SortOrder)
		require.NotNil(t, got.ColorHex)

		clear := ""
		got, err = uc.UpdateAttribute(ctx, &dto.UpdateAttributeInput{ID: a.ID, ColorHex: &clear})
		require.NoError(t, err)
		assert.Nil(t, got.ColorHex)
	})

	t.Run("renaming onto a sibling is duplicate", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Rojo"})
		b := mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Azul"})

		value := "rojo"
		_, err := uc.UpdateAttribute(ctx, &dto.UpdateAttributeInput{ID: b.ID, Value: &value})
		assert.ErrorIs(t, err, apperr.ErrDuplicate)
	})

	t.Run("same key on itself is not duplicate", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		a := mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Rojo"})

		name := "COLOR"
		_, err := uc.UpdateAttribute(ctx, &dto.UpdateAttributeInput{ID: a.ID, Name: &name})
		assert.NoError(t, err)
	})

	t.Run("missing attribute", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		name := "x"
		_, err := uc.UpdateAttribute(ctx, &dto.UpdateAttributeInput{ID: "nope", Name: &name})
		assert.ErrorIs(t, err, &apperr.Error{Kind: apperr.KindNotFound, Ref: apperr.RefAttribute})
	})
}

func TestToggleActive(t *testing.T) {
	uc, _ := newTestUseCase(t)
	ctx := context.Background()

	a := mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Rojo"})

	got, err := uc.ToggleActive(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// while a is inactive an equal option can be created
	mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "color", Value: "rojo"})

	_, err = uc.ToggleActive(ctx, a.ID)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	_, err = uc.ToggleActive(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteAttribute(t *testing.T) {
	ctx := context.Background()

	t.Run("hard delete with references", func(t *testing.T) {
		uc, ledger := newTestUseCase(t)
		a := mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Rojo"})
		ledger.counts[a.ID] = 2

		require.NoError(t, uc.DeleteAttribute(ctx, a.ID))
		assert.Equal(t, 1, ledger.calls)

		_, err := uc.GetAttribute(ctx, a.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("count failure does not block delete", func(t *testing.T) {
		uc, ledger := newTestUseCase(t)
		a := mustCreate(t, uc, &dto.CreateAttributeInput{SubcategoryID: "sub-velas", Name: "Color", Value: "Rojo"})
		ledger.err = errors.New("ledger down")

		assert.NoError(t, uc.DeleteAttribute(ctx, a.ID))
	})

	t.Run("missing", func(t *testing.T) {
		uc, _ := newTestUseCase(t)
		assert.ErrorIs(t, uc.DeleteAttribute(ctx, "missing"), apperr.ErrNotFound)
	})
}
