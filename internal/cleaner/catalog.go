package cleaner

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// genreRule is a precompiled genre-noise pattern. The compiled regexes are
// immutable and shared process-wide; per-call cleaners wrap them.
type genreRule struct {
	re       *regexp.Regexp
	contains []string
	suffixes []string
}

// genreCatalog holds every generated genre-tag rule.
type genreCatalog struct {
	suffixRules []genreRule // trailing "<noise> <genre> [song]"
	fromRules   []genreRule // trailing "(<genre> from <location>)"
	prefixes    []string    // leading "<genre> " literals
}

var genres = buildGenreCatalog()

func buildGenreCatalog() genreCatalog {
	baseGenres := []string{
		"crust",
		"black",
		"death",
		"doom",
		"grind",
		"grindcore",
		"progressive",
		"sci-fi",
		"thrash",
	}

	// ordered pairs with every separator, in both orders
	var composedGenres []string
	for i, first := range baseGenres {
		for j, second := range baseGenres {
			if i == j {
				continue
			}
			for _, sep := range []string{"/", "-", " "} {
				composedGenres = append(composedGenres, first+sep+second)
			}
		}
	}

	var metalGenres []string
	for _, genre := range append(append([]string{}, baseGenres...), composedGenres...) {
		metalGenres = append(metalGenres, genre+" metal")
	}

	// bare base genres: "metal" joins, words too common as title words leave
	baseGenres = append(baseGenres, "metal")
	bare := baseGenres[:0]
	for _, genre := range baseGenres {
		switch genre {
		case "black", "death", "thrash":
			continue
		}
		bare = append(bare, genre)
	}

	all := make([]string, 0, len(metalGenres)+len(composedGenres)+len(bare))
	all = append(all, metalGenres...)
	all = append(all, composedGenres...)
	all = append(all, bare...)

	catalog := genreCatalog{}
	for _, genre := range all {
		catalog.suffixRules = append(catalog.suffixRules, genreRule{
			re:       regexp.MustCompile(`(?i)[|([/\])-]+[ ]*(?:[0-9a-z/-]+[ ]*)*` + genre + `( song)?$`),
			suffixes: []string{genre, genre + " song"},
		})
		catalog.fromRules = append(catalog.fromRules, genreRule{
			re:       regexp.MustCompile(`(?i)[|([/]+[ ]*` + genre + ` from [a-zA-Z-, ]+[)\]]?$`),
			contains: []string{genre + " from "},
		})
	}
	for _, genre := range metalGenres {
		catalog.prefixes = append(catalog.prefixes, genre)
	}
	for _, genre := range composedGenres {
		catalog.prefixes = append(catalog.prefixes, genre)
	}

	return catalog
}

// fillerStartYear is the first release year worth scrubbing from titles.
const fillerStartYear = 2016

// fillerExpressions is the generated catalog of promotional filler phrases,
// sorted longest first so greedy longest-match stripping does not leave
// orphaned fragments behind.
var fillerExpressions = buildFillerExpressions(time.Now().Year())

func buildFillerExpressions(currentYear int) []string {
	set := make(map[string]bool)

	words1 := []string{"", "explicit", "full", "including", "new", "official", "stop motion", "the new"}
	words2 := []string{
		"",
		"360",
		"album",
		"album/tour",
		"audio",
		"game",
		"lyric",
		"lyrics",
		"music",
		"promo",
		"single",
		"song",
		"stream",
		"studio",
		"track",
		"video",
		"visual",
	}
	words3 := []string{
		"4k",
		"album",
		"audio",
		"clip",
		"discovery",
		"edit",
		"excerpt",
		"hq",
		"in 4k",
		"lyric",
		"lyrics",
		"only",
		"premier",
		"premiere",
		"presentation",
		"promo",
		"single",
		"song",
		"stream",
		"streaming",
		"teaser",
		"track",
		"trailer",
		"version",
		"video",
		"visualizer",
		"vr",
	}

	for _, w1 := range words1 {
		for _, w2 := range words2 {
			for _, w3 := range words3 {
				if w3 == w2 {
					continue
				}
				if w1 != "" || w2 != "" {
					for _, rsep := range []string{" ", "-", ""} {
						rpart := strings.TrimSpace(w2 + rsep + w3)
						set[strings.TrimSpace(w1+" "+rpart)] = true
					}
				} else {
					set[w3] = true
				}
			}
		}
	}

	for _, idiom := range []string{
		"full ep",
		"full-length",
		"hd",
		"official",
		"pre-listening",
		"pre-order now",
		"pre-orders available",
		"prelistening",
		"preorders available",
		"s/t",
		"sw exclusive",
		"trailer for the upcoming album",
		"transcending obscurity",
		"transcending obscurity india",
		"trollzorn",
		"uncensored",
	} {
		set[idiom] = true
	}

	for year := fillerStartYear; year <= currentYear; year++ {
		yearStr := strconv.Itoa(year)
		set[yearStr] = true
		for month := time.January; month <= time.December; month++ {
			name := month.String()
			set[name+" "+yearStr] = true
			set[name[:3]+" "+yearStr] = true
		}
	}

	expressions := make([]string, 0, len(set))
	for expression := range set {
		expressions = append(expressions, expression)
	}
	// longest first; lexicographic for equal lengths keeps the order stable
	sort.Slice(expressions, func(i, j int) bool {
		if len(expressions[i]) != len(expressions[j]) {
			return len(expressions[i]) > len(expressions[j])
		}
		return expressions[i] < expressions[j]
	})
	return expressions
}
