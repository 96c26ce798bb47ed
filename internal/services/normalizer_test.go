package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentNormalizer_CleanText(t *testing.T) {
	cn := NewContentNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "collapses whitespace", input: "  Fraction   Frenzy \t", expected: "Fraction Frenzy"},
		{name: "newlines become spaces", input: "Decimal\nDash", expected: "Decimal Dash"},
		{name: "nfc normalization", input: "Café Quiz", expected: "Café Quiz"},
		{name: "empty", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cn.CleanText(tt.input))
		})
	}
}

func TestContentNormalizer_NormalizeCategory(t *testing.T) {
	cn := NewContentNormalizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "canonical stays", input: "Math", expected: "Math"},
		{name: "alias folds in", input: "algebra", expected: "Math"},
		{name: "case insensitive", input: "PHYSICS", expected: "Science"},
		{name: "coding alias", input: "computer science", expected: "Coding"},
		{name: "unknown keeps cleaned form", input: "  Chess  Tactics ", expected: "Chess Tactics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cn.NormalizeCategory(tt.input))
		})
	}
}

func TestContentNormalizer_NormalizeDifficulty(t *testing.T) {
	cn := NewContentNormalizer()

	assert.Equal(t, "easy", cn.NormalizeDifficulty(" EASY "))
	assert.Equal(t, "hard", cn.NormalizeDifficulty("Hard"))
	assert.Equal(t, "medium", cn.NormalizeDifficulty("medium"))
	assert.Equal(t, "medium", cn.NormalizeDifficulty("impossible"))
}
