package domain

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateBatchCode_Format(t *testing.T) {
	delivered := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	code := GenerateBatchCode(delivered, "Glow Gel Base", "")

	assert.Regexp(t, regexp.MustCompile(`^20250101-GGB-\d{3}$`), code)
}

func TestGenerateBatchCode_WithContainerSegment(t *testing.T) {
	delivered := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	code := GenerateBatchCode(delivered, "Round Jar", "250 ml")

	assert.Regexp(t, regexp.MustCompile(`^20250315-RJ-250ML-\d{3}$`), code)
}

func TestGenerateBatchCode_Initials(t *testing.T) {
	delivered := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		materialName string
		wantInitials string
	}{
		{"single word", "Beeswax", "B"},
		{"two words", "Shea Butter", "SB"},
		{"three words", "Glow Gel Base", "GGB"},
		{"more than three words uses first three", "Extra Virgin Olive Oil", "EVO"},
		{"lowercase input is uppercased", "shea butter", "SB"},
		{"empty name falls back", "", "UNK"},
		{"whitespace only falls back", "   ", "UNK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := GenerateBatchCode(delivered, tt.materialName, "")
			parts := strings.Split(code, "-")
			assert.Len(t, parts, 3)
			assert.Equal(t, tt.wantInitials, parts[1])
		})
	}
}

func TestGenerateBatchCode_SuffixIsThreeDigits(t *testing.T) {
	delivered := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Zero-padding matters: a suffix of 7 must render as 007.
	for i := 0; i < 50; i++ {
		code := GenerateBatchCode(delivered, "Beeswax", "")
		parts := strings.Split(code, "-")
		suffix := parts[len(parts)-1]
		assert.Len(t, suffix, 3, "suffix %q in %q", suffix, code)
	}
}
