package shortcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator_Generate(t *testing.T) {
	t.Run("fixed length and alphabet", func(t *testing.T) {
		gen := NewGenerator(DefaultLength)

		for i := 0; i < 100; i++ {
			code, err := gen.Generate()

			assert.NoError(t, err)
			assert.Len(t, code, DefaultLength)

			for _, r := range code {
				assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected character %q in %q", r, code)
			}
		}
	})

	t.Run("invalid length falls back to default", func(t *testing.T) {
		gen := NewGenerator(-1)

		code, err := gen.Generate()

		assert.NoError(t, err)
		assert.Len(t, code, DefaultLength)
	})

	t.Run("codes differ across calls", func(t *testing.T) {
		gen := NewGenerator(DefaultLength)

		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			code, err := gen.Generate()

			assert.NoError(t, err)
			seen[code] = struct{}{}
		}

		assert.Greater(t, len(seen), 99)
	})
}
