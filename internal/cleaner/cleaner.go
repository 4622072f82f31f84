// Package cleaner removes promotional noise, self-references and label
// boilerplate from scraped track title strings for Tagtidy.
//
// The engine is a registry of independent rewrite rules applied repeatedly
// to one working title until no rule can make further progress, followed by
// a word-capitalization pass.
package cleaner

import (
	"strings"
	"sync"

	"tagtidy/internal/sanitize"
)

// asciiPunctuation is the ASCII punctuation set shared by the trim helpers.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// asciiWhitespace mirrors the whitespace class used by the trim helpers.
const asciiWhitespace = " \t\n\r\v\f"

// rcleanChars is the punctuation/whitespace class that is safe to delete at
// the right edge of a title. Sentence-meaningful characters stay.
var rcleanChars = stripChars(asciiPunctuation+asciiWhitespace, "!?)-]")

// lcleanChars is the symmetric class for the left edge.
var lcleanChars = stripChars(asciiPunctuation+asciiWhitespace, "(")

// stripChars returns chars with every rune of remove taken out.
func stripChars(chars, remove string) string {
	var b strings.Builder
	for _, r := range chars {
		if !strings.ContainsRune(remove, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// cleaner is one rule capable of inspecting and possibly rewriting the
// working title.
type cleaner interface {
	// Cleanup rewrites the title, returning it unchanged when the rule
	// does not apply.
	Cleanup(title string, args []string) string
	// Skip reports whether this rule cannot apply to the current title.
	Skip(title string, args []string) bool
	// Keep reports whether the rule stays registered after a successful
	// match because it is not yet exhausted.
	Keep() bool
	// ExecuteOnce reports whether the rule is attempted at most one time.
	ExecuteOnce() bool
	// RemoveIfSkipped reports whether a skipped rule retires immediately
	// instead of being re-checked every pass.
	RemoveIfSkipped() bool
}

// base carries the retirement policy flags shared by all rules.
type base struct {
	executeOnce     bool
	removeIfSkipped bool
}

// newBase returns a base with removeIfSkipped defaulted from executeOnce.
func newBase(executeOnce bool) base {
	return base{executeOnce: executeOnce, removeIfSkipped: executeOnce}
}

func (b *base) Skip(string, []string) bool { return false }
func (b *base) Keep() bool                 { return false }
func (b *base) ExecuteOnce() bool          { return b.executeOnce }
func (b *base) RemoveIfSkipped() bool      { return b.removeIfSkipped }

// rclean removes garbage at the right of a string. A trailing " -" left by
// an earlier removal is collapsed before re-trimming.
func rclean(s string) string {
	r := strings.TrimRight(s, rcleanChars)
	if strings.HasSuffix(r, " -") {
		r = strings.TrimRight(r[:len(r)-2], rcleanChars)
	}
	return r
}

// lclean removes garbage at the left of a string, transliterating when that
// exposes more strippable characters.
func lclean(s string) string {
	r := strings.TrimLeft(s, lcleanChars)
	c := strings.TrimLeft(sanitize.Transliterate(r), lcleanChars)
	if c != r {
		r = c
	}
	return r
}

// rnormCache and lnormCache memoize the pure normalization helpers. They map
// immutable string keys to immutable results, so sharing them process-wide
// is safe; a duplicate computation on a race is harmless.
var (
	rnormCache sync.Map
	lnormCache sync.Map
)

// rnorm transliterates a string and removes useless chars from its right.
func rnorm(s string) string {
	if v, ok := rnormCache.Load(s); ok {
		return v.(string)
	}
	r := strings.ToLower(strings.TrimRight(sanitize.Transliterate(strings.TrimRight(s, asciiPunctuation)), asciiPunctuation))
	rnormCache.Store(s, r)
	return r
}

// lnorm transliterates a string and removes useless chars from its left.
func lnorm(s string) string {
	if v, ok := lnormCache.Load(s); ok {
		return v.(string)
	}
	r := strings.ToLower(strings.TrimLeft(sanitize.Transliterate(strings.TrimLeft(s, asciiPunctuation)), asciiPunctuation))
	lnormCache.Store(s, r)
	return r
}

// startsLike reports whether the start of s is similar to pattern. When sep
// is non-empty, the match must be followed by one of its characters, so an
// artist name does not match inside a longer word.
func startsLike(s, pattern, sep string) bool {
	s = lnorm(s)
	pattern = rnorm(pattern)
	if !strings.HasPrefix(s, pattern) {
		return false
	}
	cut := s[len(pattern):]
	if sep == "" || cut == "" {
		return true
	}
	for _, r := range cut {
		return strings.ContainsRune(sep, r)
	}
	return true
}

// endsLike reports whether the end of s is similar to pattern.
func endsLike(s, pattern string) bool {
	return strings.HasSuffix(rnorm(s), rnorm(pattern))
}

// rmSuffix removes len(pattern) characters from the right of the
// punctuation-trimmed string.
func rmSuffix(s, pattern string) string {
	r := []rune(strings.TrimRight(s, asciiPunctuation))
	n := len([]rune(sanitize.Transliterate(pattern)))
	if n == 0 || n >= len(r) {
		return ""
	}
	return string(r[:len(r)-n])
}

// rmPrefix removes len(pattern) characters from the left of the
// punctuation-trimmed string.
func rmPrefix(s, pattern string) string {
	r := []rune(strings.TrimLeft(s, asciiPunctuation))
	n := len([]rune(sanitize.Transliterate(pattern)))
	if n >= len(r) {
		return ""
	}
	return string(r[n:])
}
