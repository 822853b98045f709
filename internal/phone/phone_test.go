package phone_test

import (
	"testing"

	"github.com/khiva-consulting/backoffice-api/internal/phone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare nine digits", "901234567", "+998901234567"},
		{"with country code", "998901234567", "+998901234567"},
		{"with plus prefix", "+998901234567", "+998901234567"},
		{"with spaces and dashes", "+998 90 123-45-67", "+998901234567"},
		{"leading zero trunk prefix", "0998901234567", "+998901234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := phone.Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := phone.Normalize("")
		assert.ErrorIs(t, err, phone.ErrEmpty)
	})

	t.Run("whitespace only", func(t *testing.T) {
		_, err := phone.Normalize("   ")
		assert.ErrorIs(t, err, phone.ErrEmpty)
	})

	t.Run("bare country code", func(t *testing.T) {
		_, err := phone.Normalize("998")
		assert.ErrorIs(t, err, phone.ErrEmpty)
	})

	t.Run("too few digits", func(t *testing.T) {
		_, err := phone.Normalize("12345")
		assert.ErrorIs(t, err, phone.ErrInvalid)
	})
}

func TestNormalizeOptional(t *testing.T) {
	t.Run("empty maps to empty string", func(t *testing.T) {
		got, err := phone.NormalizeOptional("")
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("valid number passes through", func(t *testing.T) {
		got, err := phone.NormalizeOptional("90 123 45 67")
		require.NoError(t, err)
		assert.Equal(t, "+998901234567", got)
	})

	t.Run("invalid still errors", func(t *testing.T) {
		_, err := phone.NormalizeOptional("123")
		assert.ErrorIs(t, err, phone.ErrInvalid)
	})
}
