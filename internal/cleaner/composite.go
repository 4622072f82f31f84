package cleaner

import (
	"strings"
	"unicode/utf8"
)

// artistCleaner removes an artist self-reference from the start or the end
// of the title, trying several orthographic variants of the reference
// string. A prefix removal and a suffix removal are independent events, so
// the rule stays registered until a suffix form has matched.
type artistCleaner struct {
	base
	prefixRemoved bool
	suffixRemoved bool
}

func newArtistCleaner() *artistCleaner {
	return &artistCleaner{base: newBase(false)}
}

func (c *artistCleaner) Keep() bool {
	return !c.suffixRemoved
}

// artistVariants returns the spellings under which an artist name may show
// up inside a scraped title, first spelling first, duplicates removed.
func artistVariants(artist string) []string {
	candidates := []string{
		artist + " band",
		artist,
		strings.ReplaceAll(artist, " ", ""),
		strings.ReplaceAll(artist, "and", "&"),
		strings.ReplaceAll(artist, "&", "and"),
		strings.ReplaceAll(artist, ", ", " and "),
		strings.ReplaceAll(artist, " and ", ", "),
		strings.ReplaceAll(artist, "’", ""),
	}
	seen := make(map[string]bool, len(candidates))
	variants := candidates[:0]
	for _, v := range candidates {
		if !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}
	return variants
}

func (c *artistCleaner) Cleanup(title string, args []string) string {
	artist := args[0]

	// "by <artist>" only makes sense as a prefix
	if !c.prefixRemoved && startsLike(title, "by "+artist, "") {
		c.prefixRemoved = true
		return tryStripPrefix(title, "by "+artist)
	}

	for _, variant := range artistVariants(artist) {
		if !c.prefixRemoved && startsLike(title, variant, "") {
			c.prefixRemoved = true
			return tryStripPrefix(title, variant)
		}
		if !c.suffixRemoved && endsLike(title, variant) {
			c.suffixRemoved = true
			return tryStripSuffix(title, variant)
		}
	}
	return title
}

// albumCleaner removes an album self-reference from the start or the end of
// the title. A suffix removal often exposes a connective ("taken from",
// "from the album"), which is then stripped as well.
type albumCleaner struct {
	base
}

func newAlbumCleaner(executeOnce bool) *albumCleaner {
	return &albumCleaner{base: newBase(executeOnce)}
}

func (c *albumCleaner) Cleanup(title string, args []string) string {
	album := args[0]
	if startsLike(title, album, "") {
		return tryStripPrefix(title, album)
	}
	if endsLike(title, album) {
		title = tryStripSuffix(title, album)
		for _, connective := range []string{"taken from", "from the album", "from"} {
			if endsLike(title, connective) {
				if newTitle := tryStripSuffix(title, connective); newTitle != "" {
					title = newTitle
					break
				}
			}
		}
	}
	return title
}

// startParenthesesCleaner strips a parenthesized aside at the very start of
// the title, unless the parentheses span the whole title.
type startParenthesesCleaner struct {
	base
}

func newStartParenthesesCleaner(executeOnce bool) *startParenthesesCleaner {
	return &startParenthesesCleaner{base: newBase(executeOnce)}
}

func (c *startParenthesesCleaner) Cleanup(title string, _ []string) string {
	closing := strings.Index(title, ")")
	var aside string
	if closing >= 1 {
		aside = title[1:closing]
	} else if closing < 0 && len(title) > 1 {
		// unclosed parenthesis: treat everything but the last char as aside
		aside = title[1 : len(title)-1]
	}
	if strings.HasPrefix(title, "(") && closing != len(title)-1 && utf8.RuneCountInString(aside) > 1 {
		return lclean(title[closing+1:])
	}
	return title
}

// pairedCharCleaner fixes characters that go by pair: a lone parenthesis or
// double quote is deleted wherever it sits, a lone single quote only at the
// string edges, and a full parenthesis wrap is unwrapped.
type pairedCharCleaner struct {
	base
}

func newPairedCharCleaner(executeOnce bool) *pairedCharCleaner {
	return &pairedCharCleaner{base: newBase(executeOnce)}
}

func (c *pairedCharCleaner) Cleanup(title string, _ []string) string {
	// lone parenthesis anywhere
	if strings.Count(title, "(")+strings.Count(title, ")") == 1 {
		title = strings.NewReplacer("(", "", ")", "").Replace(title)
	}

	// lone double quote anywhere
	if strings.Count(title, `"`) == 1 {
		title = strings.ReplaceAll(title, `"`, "")
	}

	// lone single quote at either edge
	if strings.HasSuffix(title, "'") && !strings.Contains(title[:len(title)-1], "'") {
		title = title[:len(title)-1]
	} else if strings.HasPrefix(title, "'") && !strings.Contains(title[1:], "'") {
		title = title[1:]
	}

	// full wrap
	if strings.HasPrefix(title, "(") && strings.HasSuffix(title, ")") {
		title = title[1 : len(title)-1]
	}

	return title
}
