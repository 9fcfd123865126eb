package domain

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"
)

// GenerateBatchCode builds a batch identity of the form
//
//	{YYYYMMDD}-{up to 3 uppercase word initials}[-{extra}]-{3 random digits}
//
// e.g. "20250101-GGB-042" for "Glow Gel Base" delivered 2025-01-01.
// The 3-digit suffix is random, so collisions are possible; callers
// must treat a uniqueness violation at the storage layer as retryable
// and call again for a fresh suffix. Identity, once persisted, is
// never regenerated.
func GenerateBatchCode(prefixDate time.Time, name string, extra string) string {
	parts := []string{prefixDate.Format("20060102"), nameInitials(name)}

	if extra != "" {
		parts = append(parts, sanitizeSegment(extra))
	}

	parts = append(parts, fmt.Sprintf("%03d", rand.Intn(1000)))
	return strings.Join(parts, "-")
}

// nameInitials takes the first letter of up to three words, uppercased.
// An empty name yields "UNK".
func nameInitials(name string) string {
	words := strings.Fields(name)
	if len(words) > 3 {
		words = words[:3]
	}

	var b strings.Builder
	for _, w := range words {
		for _, r := range w {
			b.WriteRune(unicode.ToUpper(r))
			break
		}
	}

	if b.Len() == 0 {
		return "UNK"
	}
	return b.String()
}

// sanitizeSegment uppercases a free-form segment (container size) and
// strips whitespace so it cannot break the dashed format.
func sanitizeSegment(s string) string {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return "UNK"
	}
	return strings.ToUpper(s)
}
