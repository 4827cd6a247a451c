package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator_Localize(t *testing.T) {
	tr, err := New("es")
	require.NoError(t, err)

	t.Run("default language", func(t *testing.T) {
		assert.Equal(t,
			"Ya existe un atributo con el mismo nombre y valor en esta subcategoría",
			tr.Localize("error.duplicate.attribute"))
	})

	t.Run("accept-language english", func(t *testing.T) {
		assert.Equal(t, "Product not found", tr.Localize("error.not_found.product", "en-US,en;q=0.9"))
	})

	t.Run("unknown id falls back to generic message", func(t *testing.T) {
		assert.Equal(t, "An unexpected error occurred", tr.Localize("error.nope", "en"))
	})
}
