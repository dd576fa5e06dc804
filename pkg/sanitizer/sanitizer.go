package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeDescription prepares a room description: control characters are
// dropped and whitespace runs collapse to one space.
func SanitizeDescription(input string) string {
	p := Pipeline{
		stripControl,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeNumber trims the textual form of a number. Decimal parsing
// happens in the validator so the original text can be reported on failure.
func SanitizeNumber(input string) string {
	return strings.TrimSpace(input)
}
