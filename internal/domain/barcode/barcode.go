package barcode

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/barcodeprint/backend/internal/domain/shared"
)

// MaxTitleLength is the maximum title length in runes
const MaxTitleLength = 255

// Barcode is a generated numeric code with a user-editable title.
// Code is stored in its grouped display form and never changes after creation.
type Barcode struct {
	shared.BaseAggregateRoot
	Code  string
	Title string
}

// NewBarcode creates a barcode record. code may be raw or grouped; it is
// stored grouped.
func NewBarcode(code, title string) (*Barcode, error) {
	display, err := Normalize(code)
	if err != nil {
		return nil, err
	}
	normalized, err := NormalizeTitle(title)
	if err != nil {
		return nil, err
	}

	b := &Barcode{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              display,
		Title:             normalized,
	}
	b.AddDomainEvent(NewBarcodeCreatedEvent(b))
	return b, nil
}

// Digits returns the ungrouped code handed to the rasterizer
func (b *Barcode) Digits() string {
	return Unformat(b.Code)
}

// Rename changes the title. Renaming to the current title is a no-op.
func (b *Barcode) Rename(title string) error {
	normalized, err := NormalizeTitle(title)
	if err != nil {
		return err
	}
	if normalized == b.Title {
		return nil
	}

	old := b.Title
	b.Title = normalized
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewBarcodeRenamedEvent(b, old))
	return nil
}

// MarkDeleted records the deletion event; the repository removes the row
func (b *Barcode) MarkDeleted() {
	b.AddDomainEvent(NewBarcodeDeletedEvent(b))
}

// NormalizeTitle trims and NFC-normalizes a title and rejects empty or
// overlong values
func NormalizeTitle(title string) (string, error) {
	t := norm.NFC.String(strings.TrimSpace(title))
	if t == "" {
		return "", shared.NewDomainError(CodeInvalidTitle, "Title cannot be empty")
	}
	if utf8.RuneCountInString(t) > MaxTitleLength {
		return "", shared.NewDomainError(CodeInvalidTitle, fmt.Sprintf("Title cannot exceed %d characters", MaxTitleLength))
	}
	return t, nil
}

// DefaultTitle is the title given to the i-th barcode of a generated batch
func DefaultTitle(i int) string {
	return fmt.Sprintf("Title %d", i+1)
}
