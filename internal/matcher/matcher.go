// Package matcher handles matching filenames against artist rules for Tagtidy.
package matcher

import (
	"sort"
	"strings"
	"unicode"

	"tagtidy/internal/config"
	"tagtidy/internal/sanitize"
)

// MatchResult represents the result of matching a filename against artist rules.
type MatchResult struct {
	Matched   bool
	Rule      *config.ArtistRule
	Remainder string // filename after the artist and separator, still noisy
}

// Match evaluates a filename (extension already stripped) against artist
// rules. Comparison is case-insensitive and ignores diacritics, so a rule
// for "Motorhead" matches "Motörhead - Overkill". The longest artist wins
// when several rules match. The artist must be followed by a separator run
// of dashes, colons or whitespace, or end the filename entirely.
func Match(filename string, rules []config.ArtistRule) *MatchResult {
	if len(rules) == 0 {
		return &MatchResult{Matched: false}
	}

	sortedRules := make([]config.ArtistRule, len(rules))
	copy(sortedRules, rules)
	sort.SliceStable(sortedRules, func(i, j int) bool {
		return len(sortedRules[i].Artist) > len(sortedRules[j].Artist)
	})

	nameRunes := []rune(filename)
	normName, offsets := foldWithOffsets(nameRunes)

	for i := range sortedRules {
		rule := &sortedRules[i]
		normArtist := foldForCompare(rule.Artist)
		if normArtist == "" {
			continue
		}

		if !strings.HasPrefix(normName, normArtist) {
			continue
		}

		foldLen := len([]rune(normArtist))
		if foldLen < len(offsets) && offsets[foldLen] == offsets[foldLen-1] {
			// The match ends inside an expanded rune, e.g. an artist
			// ending in ".." against a filename ellipsis.
			continue
		}
		rest := ""
		if foldLen < len(offsets) {
			rest = string(nameRunes[offsets[foldLen]:])
		}

		if rest == "" {
			return &MatchResult{Matched: true, Rule: rule, Remainder: ""}
		}

		remainder, ok := trimSeparator(rest)
		if !ok {
			continue
		}

		return &MatchResult{
			Matched:   true,
			Rule:      rule,
			Remainder: remainder,
		}
	}

	return &MatchResult{Matched: false}
}

// foldForCompare lowercases and strips diacritics for prefix comparison.
func foldForCompare(s string) string {
	return strings.ToLower(sanitize.Transliterate(strings.TrimSpace(s)))
}

// foldWithOffsets folds the filename one rune at a time and records which
// original rune each folded rune came from. Folding can expand a rune
// (an ellipsis becomes three dots) or drop it (a bare combining mark),
// so the folded index cannot be mapped back arithmetically.
func foldWithOffsets(runes []rune) (string, []int) {
	var b strings.Builder
	offsets := make([]int, 0, len(runes))
	for i, r := range runes {
		folded := strings.ToLower(sanitize.Transliterate(string(r)))
		for range folded {
			offsets = append(offsets, i)
		}
		b.WriteString(folded)
	}
	return b.String(), offsets
}

// trimSeparator strips the separator run that must follow the artist.
// It reports false when the artist is immediately followed by more text,
// which means the rule matched inside a longer word.
func trimSeparator(rest string) (string, bool) {
	trimmed := strings.TrimLeftFunc(rest, func(r rune) bool {
		return r == '-' || r == ':' || unicode.IsSpace(r)
	})
	if trimmed == rest {
		return "", false
	}
	return trimmed, true
}
