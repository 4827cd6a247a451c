package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/fekuna/storefront-inventory-service/internal/store"
)

func TestFromStore(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		kind      Kind
		messageID string
	}{
		{
			name:      "unique violation",
			err:       store.Wrap(&pq.Error{Code: "23505", Constraint: "product_attributes_unique_option"}),
			kind:      KindDuplicate,
			messageID: "error.duplicate.attribute",
		},
		{
			name:      "foreign key violation",
			err:       store.Wrap(&pq.Error{Code: "23503"}),
			kind:      KindReferential,
			messageID: "error.referential.subcategory",
		},
		{
			name:      "missing table",
			err:       store.Wrap(&pq.Error{Code: "42P01"}),
			kind:      KindTransport,
			messageID: "error.undefined_table",
		},
		{
			name:      "unclassified driver error",
			err:       store.Wrap(errors.New("connection refused")),
			kind:      KindTransport,
			messageID: "error.transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromStore(fmt.Errorf("insert: %w", tt.err), "error.duplicate.attribute", RefSubcategory)
			e, ok := As(got)
			if assert.True(t, ok) {
				assert.Equal(t, tt.kind, e.Kind)
				assert.Equal(t, tt.messageID, e.MessageID)
			}
		})
	}

	t.Run("non store errors pass through", func(t *testing.T) {
		plain := errors.New("boom")
		assert.Same(t, plain, FromStore(plain, "x", RefProduct))
	})
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound(RefAttribute, "a1"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, &Error{Kind: KindNotFound, Ref: RefAttribute})
	assert.NotErrorIs(t, err, &Error{Kind: KindNotFound, Ref: RefProduct})
	assert.NotErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, KindNotFound, KindOf(err))
}
