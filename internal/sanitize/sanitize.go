// Package sanitize removes unwanted characters and fixes capitalization of
// tag strings for Tagtidy.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiPunctuation is the ASCII punctuation set used by the case heuristics.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// validPathChars holds every character allowed in a FAT/NTFS friendly
// file name component.
var validPathChars = func() map[rune]bool {
	valid := make(map[rune]bool)
	for _, r := range "-_.()!#$%&'@^{}~ " {
		valid[r] = true
	}
	for r := 'a'; r <= 'z'; r++ {
		valid[r] = true
		valid[unicode.ToUpper(r)] = true
	}
	for r := '0'; r <= '9'; r++ {
		valid[r] = true
	}
	return valid
}()

// lowercaseWords is the closed set of words kept lowercase inside a title
// (articles, short prepositions, conjunctions, a few common non-English ones).
var lowercaseWords = map[string]bool{
	"a": true, "an": true, "and": true, "at": true, "by": true,
	"de": true, "del": true, "des": true, "du": true,
	"for": true, "from": true, "in": true,
	"la": true, "le": true, "les": true,
	"of": true, "on": true, "or": true, "over": true,
	"the": true, "to": true, "vs": true, "with": true,
}

// typographicReplacer maps common typographic characters to their ASCII
// equivalents before diacritic folding.
var typographicReplacer = strings.NewReplacer(
	"’", "'", // right single quote
	"‘", "'", // left single quote
	"“", "\"", // left double quote
	"”", "\"", // right double quote
	"–", "-", // en dash
	"—", "-", // em dash
	"…", "...", // ellipsis
)

// foldDiacritics decomposes characters and strips combining marks,
// so "Motörhead" compares equal to "Motorhead".
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Transliterate converts a string to its closest ASCII representation:
// typographic punctuation is replaced and diacritics are stripped.
// Characters with no ASCII equivalent are left as-is.
func Transliterate(s string) string {
	s = typographicReplacer.Replace(s)
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		return s
	}
	return folded
}

// ForPath sanitizes a string to be FAT/NTFS friendly when used in a file path.
func ForPath(s string) string {
	s = strings.NewReplacer("/", "-", "\\", "-", "|", "-", "*", "x").Replace(s)
	var b strings.Builder
	for _, r := range Transliterate(s) {
		if validPathChars[r] {
			b.WriteRune(r)
		}
	}
	s = strings.TrimSpace(b.String())
	// FAT on Android rejects trailing dots
	s = strings.TrimRight(s, ".")
	return s
}

// splitSepChars splits a whitespace-delimited word further at the first '('
// and the first '-', keeping the separator attached to the trailing fragment
// so "(Live)" and "-Titled" survive as their own capitalization units.
func splitSepChars(word string) []string {
	words := []string{word}
	for _, sep := range []string{"(", "-"} {
		var next []string
		for _, w := range words {
			before, after, found := strings.Cut(w, sep)
			if found {
				if before != "" {
					next = append(next, before)
				}
				next = append(next, sep+after)
			} else {
				next = append(next, w)
			}
		}
		words = next
	}
	return words
}

// splitWords tokenizes a tag string for the case heuristic.
func splitWords(s string) []string {
	var words []string
	for _, field := range strings.Fields(s) {
		words = append(words, splitSepChars(field)...)
	}
	return words
}

// removePunct strips ASCII punctuation from a string.
func removePunct(s string) string {
	var b strings.Builder
	for _, r := range s {
		if !strings.ContainsRune(asciiPunctuation, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isRomanNumeral reports whether every non-punctuation character of the word
// is a Roman numeral letter.
func isRomanNumeral(word string) bool {
	for _, r := range removePunct(word) {
		if !strings.ContainsRune("IVXLCDM", r) {
			return false
		}
	}
	return true
}

// capitalizeWord uppercases the first rune and lowercases the rest.
func capitalizeWord(word string) string {
	if word == "" {
		return word
	}
	r := []rune(word)
	out := make([]rune, 0, len(r))
	out = append(out, unicode.ToUpper(r[0]))
	for _, c := range r[1:] {
		out = append(out, unicode.ToLower(c))
	}
	return string(out)
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

// NormalizeTagCase normalizes the capitalization of an audio tag string.
//
// The heuristic works word by word: abbreviations, parenthesized or
// dash-attached fragments and Roman numerals are preserved, contractions
// like "I'm" get a lowercase lead, the small-word list stays lowercase
// mid-title, and everything else is word-capitalized.
func NormalizeTagCase(s string) string {
	oldWords := splitWords(s)
	newWords := make([]string, 0, len(oldWords))
	prevWord := ""

	for i, oldWord := range oldWords {
		var newWord string
		switch {
		case (prevWord != "" &&
			strings.ContainsRune(".-", lastRune(prevWord)) &&
			unicode.IsUpper(firstRune(oldWord))) ||
			strings.Contains(oldWord, "."):
			// abbreviations and initials like "PT." or "I.C.Y.C.S.D"
			newWord = oldWord
		case strings.ContainsRune("[(-", firstRune(oldWord)):
			newWord = oldWord
		case strings.Index(oldWord, "'") == 1:
			// contraction like "I'm"; the very first word is left alone
			if i > 0 {
				head := strings.ToLower(oldWord[:1])
				newWord = head + "'" + capitalizeWord(oldWord[2:])
			} else {
				newWord = oldWord
			}
		case i != 0 &&
			lowercaseWords[strings.ToLower(oldWord)] &&
			prevWord != "" &&
			!strings.ContainsRune(strings.ReplaceAll(asciiPunctuation, "'", ""), lastRune(prevWord)):
			newWord = strings.ToLower(oldWord)
		case isRomanNumeral(oldWord):
			newWord = oldWord
		default:
			newWord = capitalizeWord(oldWord)
		}
		newWord = strings.ReplaceAll(newWord, "I'M", "I'm")
		newWords = append(newWords, newWord)
		prevWord = oldWord
	}

	// rejoin, reattaching "-" fragments without a space
	var b strings.Builder
	for i, newWord := range newWords {
		if i > 0 && !(strings.HasPrefix(newWord, "-") && newWord != "-") {
			b.WriteByte(' ')
		}
		b.WriteString(newWord)
	}
	return b.String()
}
