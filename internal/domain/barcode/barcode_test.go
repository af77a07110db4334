package barcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBarcode(t *testing.T) {
	t.Run("stores the grouped code", func(t *testing.T) {
		b, err := NewBarcode("123456789012", "Title 1")
		require.NoError(t, err)

		assert.NotEmpty(t, b.ID)
		assert.Equal(t, "1234 5678 9012", b.Code)
		assert.Equal(t, "123456789012", b.Digits())
		assert.Equal(t, "Title 1", b.Title)
		assert.Equal(t, 1, b.GetVersion())
	})

	t.Run("publishes barcode.created", func(t *testing.T) {
		b, err := NewBarcode("123456789012", "Shelf A")
		require.NoError(t, err)

		events := b.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeBarcodeCreated, events[0].EventType())
		assert.Equal(t, b.ID, events[0].AggregateID())
	})

	t.Run("rejects invalid code", func(t *testing.T) {
		_, err := NewBarcode("12", "Title")
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewBarcode("123456789012", "   ")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Title cannot be empty")
	})
}

func TestBarcode_Rename(t *testing.T) {
	b, err := NewBarcode("123456789012", "Title 1")
	require.NoError(t, err)
	b.ClearDomainEvents()

	t.Run("trims and updates", func(t *testing.T) {
		require.NoError(t, b.Rename("  Bin 7  "))
		assert.Equal(t, "Bin 7", b.Title)
		assert.Equal(t, "1234 5678 9012", b.Code)
		assert.Equal(t, 2, b.GetVersion())

		events := b.PullDomainEvents()
		require.Len(t, events, 1)
		renamed, ok := events[0].(*BarcodeRenamedEvent)
		require.True(t, ok)
		assert.Equal(t, "Title 1", renamed.OldTitle)
		assert.Equal(t, "Bin 7", renamed.NewTitle)
	})

	t.Run("same title is a no-op", func(t *testing.T) {
		require.NoError(t, b.Rename("Bin 7"))
		assert.Empty(t, b.GetDomainEvents())
		assert.Equal(t, 2, b.GetVersion())
	})

	t.Run("empty title keeps the old one", func(t *testing.T) {
		require.Error(t, b.Rename(""))
		assert.Equal(t, "Bin 7", b.Title)
	})
}

func TestNormalizeTitle(t *testing.T) {
	// "e" + combining acute composes to a single rune
	got, err := NormalizeTitle("Cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", got)

	_, err = NormalizeTitle(strings.Repeat("x", MaxTitleLength+1))
	require.Error(t, err)

	got, err = NormalizeTitle(strings.Repeat("é", MaxTitleLength))
	require.NoError(t, err)
	assert.Equal(t, MaxTitleLength, len([]rune(got)))
}

func TestDefaultTitle(t *testing.T) {
	assert.Equal(t, "Title 1", DefaultTitle(0))
	assert.Equal(t, "Title 5", DefaultTitle(4))
}

func TestBarcode_MarkDeleted(t *testing.T) {
	b, err := NewBarcode("123456789012", "Title 1")
	require.NoError(t, err)
	b.ClearDomainEvents()

	b.MarkDeleted()
	events := b.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeBarcodeDeleted, events[0].EventType())
}
