package barcode

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
)

// Numeric code geometry. Variable-length codes only need these bounds changed.
const (
	MinCodeLength = 12
	MaxCodeLength = 12

	// CodeGroupSize is the number of digits per group in the display form
	CodeGroupSize = 4
	// CodeGroupSeparator separates digit groups in the display form
	CodeGroupSeparator = " "
)

var digitsPattern = regexp.MustCompile(`^[0-9]+$`)

// CodeGenerator produces random numeric codes. Codes are identifiers, not
// secrets, so a seeded PCG source is used rather than crypto/rand.
type CodeGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCodeGenerator creates a generator seeded from the runtime source
func NewCodeGenerator() *CodeGenerator {
	return NewCodeGeneratorWithSource(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewCodeGeneratorWithSource creates a generator backed by src.
// Tests pass a fixed-seed source to get a reproducible sequence.
func NewCodeGeneratorWithSource(src rand.Source) *CodeGenerator {
	return &CodeGenerator{rng: rand.New(src)}
}

// Generate returns a new numeric code. The first digit is never 0 so the
// code survives numeric interpretation downstream.
func (g *CodeGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	length := MinCodeLength
	if span := MaxCodeLength - MinCodeLength; span > 0 {
		length += g.rng.IntN(span + 1)
	}

	digits := make([]byte, length)
	digits[0] = byte('1' + g.rng.IntN(9))
	for i := 1; i < length; i++ {
		digits[i] = byte('0' + g.rng.IntN(10))
	}
	return string(digits)
}

// IsValid reports whether code is a well-formed numeric code
func IsValid(code string) bool {
	if code == "" || len(code) < MinCodeLength || len(code) > MaxCodeLength {
		return false
	}
	return digitsPattern.MatchString(code)
}

// Format groups a valid code into blocks of CodeGroupSize digits,
// e.g. "123456789012" becomes "1234 5678 9012".
func Format(code string) (string, error) {
	if !IsValid(code) {
		return "", &InvalidCodeError{Code: code}
	}

	groups := make([]string, 0, (len(code)+CodeGroupSize-1)/CodeGroupSize)
	for start := 0; start < len(code); start += CodeGroupSize {
		end := min(start+CodeGroupSize, len(code))
		groups = append(groups, code[start:end])
	}
	return strings.Join(groups, CodeGroupSeparator), nil
}

// Unformat strips the display grouping, returning the raw digit string
// that the rasterizer encodes.
func Unformat(display string) string {
	return strings.ReplaceAll(display, CodeGroupSeparator, "")
}

// Normalize accepts either the raw or the grouped form and returns the
// grouped display form.
func Normalize(code string) (string, error) {
	return Format(Unformat(strings.TrimSpace(code)))
}
