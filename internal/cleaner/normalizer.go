package cleaner

import (
	"fmt"
	"regexp"
	"strings"

	"tagtidy/internal/sanitize"
)

// Precompiled noise patterns. Compiled once and shared; the per-call
// cleaners wrapping them carry all mutable state.
var (
	reHashtags       = regexp.MustCompile(`(?i)(#[\w]+ ?)+`)
	reTakenFromOut   = regexp.MustCompile(`(?i)taken from .+, out `)
	reTrackUpcoming  = regexp.MustCompile(`(?i)a track of upcoming `)
	reAlbumTrackNum  = regexp.MustCompile(`(?i)(album: .+ )?track [0-9]+`)
	reFromLP         = regexp.MustCompile(`(?i)from .+ LP`)
	reFromAlbum      = regexp.MustCompile(`(?i)from .*album`)
	reDottedDate     = regexp.MustCompile(`(?i) [\[(]?([^ ]+ out: )?[0-9]+\.[0-9]+\.[0-9]+[\])]?`)
	reOutSlashDate   = regexp.MustCompile(`(?i) out [0-9]+/[0-9]+`)
	reOutMonthDay    = regexp.MustCompile(`(?i) out [a-z]+ [0-9]+th`)
	reNewAlbumOut    = regexp.MustCompile(`(?i)new album out .*$`)
	reMusicOutlet    = regexp.MustCompile(`(?i)[\[( ][a-z]+ music$`)
	reEntertainment  = regexp.MustCompile(`(?i)[\[( ][a-z]+ entertainment$`)
	reRecordLabel    = regexp.MustCompile(`(?i)record label:? [a-z0-9 ]+$`)
	reNextConcert    = regexp.MustCompile(`(?i)next concert: .+$`)
	reFeatSuffix     = regexp.MustCompile(`(?i)feat\..+$`)
	reFtAnywhere     = regexp.MustCompile(`(?i)[(\[ ]+ft\. [a-zA-Z.: ]+[)\]]?`)
	reProductions    = regexp.MustCompile(`(?i)[^\w\s].+ productions?[^\w\s]`)
	reProductionsPre = regexp.MustCompile(`(?i)^[\w\s]+ productions?`)
	reProductionsSuf = regexp.MustCompile(`(?i)[\[( ][a-z ]+ productions$`)
	reTrackNumber    = regexp.MustCompile(`^[0-9]+[ -.]+`)
	rePipeSuffix     = regexp.MustCompile(` \| .*$`)
)

// registeredCleaner pairs a rule with its bound arguments.
type registeredCleaner struct {
	cleaner cleaner
	args    []string
}

// TitleNormalizer chains every title transformation. It owns a private,
// per-invocation registry that shrinks as rules retire; it must not be
// shared between goroutines or reused across titles.
type TitleNormalizer struct {
	cleaners []registeredCleaner

	// Trace, when set, receives every accepted mutation.
	Trace func(cleaner, oldTitle, newTitle string)

	// passes counts driver iterations, as a termination regression guard.
	passes int
}

func (n *TitleNormalizer) register(c cleaner, args ...string) {
	n.cleaners = append(n.cleaners, registeredCleaner{cleaner: c, args: args})
}

// NewTitleNormalizer builds the rule registry for one title cleanup.
// The album reference may be empty when the source supplied none.
func NewTitleNormalizer(artist, album string) *TitleNormalizer {
	n := &TitleNormalizer{}

	// remove consecutive spaces
	n.register(newFunctionCleaner(func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}, true))

	// '#hashtag' suffixes
	n.register(newRegexSuffixCleaner(reHashtags, []string{"#"}, nil, true))

	// 'taken from album xxx, out (on) yyy' suffix
	n.register(newRegexSuffixCleaner(reTakenFromOut, []string{"taken from", "out"}, nil, true))

	// 'a track of the upcoming xxx' suffix
	n.register(newRegexSuffixCleaner(reTrackUpcoming, []string{"a track of upcoming"}, nil, true))

	// 'album: xxx track yy'
	n.register(newRegexCleaner(reAlbumTrackNum, []string{"track"}, true))

	// 'from xxx LP' suffix
	n.register(newRegexSuffixCleaner(reFromLP, []string{"from"}, nil, true))

	// 'from xxx album' suffix
	n.register(newRegexSuffixCleaner(reFromAlbum, []string{"from", "album"}, nil, true))

	// 'xxx out: yy.zz.aa' suffix
	n.register(newRegexSuffixCleaner(reDottedDate, nil, nil, true))

	// 'out yy/zz' suffix
	n.register(newRegexSuffixCleaner(reOutSlashDate, []string{" out "}, nil, true))

	// 'out month xxth' suffix
	n.register(newRegexSuffixCleaner(reOutMonthDay, []string{" out "}, nil, true))

	// 'new album out xxx' suffix
	n.register(newRegexSuffixCleaner(reNewAlbumOut, []string{"new album out "}, nil, true))

	// '[xxx music]' suffix
	n.register(newRegexSuffixCleaner(reMusicOutlet, nil, []string{"music"}, true))

	// 'xxx entertainment' suffix
	n.register(newRegexSuffixCleaner(reEntertainment, nil, []string{"entertainment"}, true))

	// 'record label xxx' suffix
	n.register(newRegexSuffixCleaner(reRecordLabel, []string{"record label"}, nil, true))

	// 'next concert: xxx' suffix
	n.register(newRegexSuffixCleaner(reNextConcert, []string{"next concert: "}, nil, true))

	// 'feat. xxx' suffix
	n.register(newRegexSuffixCleaner(reFeatSuffix, []string{"feat."}, nil, true))

	// 'ft. xxx' anywhere
	n.register(newRegexCleaner(reFtAnywhere, []string{"ft."}, true))

	// '(xxx productions)' anywhere, and 'xxx productions' prefix
	n.register(newRegexCleaner(reProductions, []string{"production"}, true))
	n.register(newRegexPrefixCleaner(reProductionsPre, []string{"production"}, true))

	// '- xxx metal' style genre-tag suffixes; these stay registered while
	// skipped, since earlier removals can expose a genre tag later
	for _, rule := range genres.suffixRules {
		c := newRegexSuffixCleaner(rule.re, nil, rule.suffixes, true)
		c.removeIfSkipped = false
		n.register(c)
	}

	// '(thrash/death from whatever)' suffixes
	for _, rule := range genres.fromRules {
		n.register(newRegexSuffixCleaner(rule.re, rule.contains, nil, true))
	}

	// 'xxx metal' prefixes
	for _, genre := range genres.prefixes {
		n.register(newSimplePrefixCleaner(true), genre)
	}

	// 'xxx productions' suffix
	n.register(newRegexSuffixCleaner(reProductionsSuf, nil, []string{" productions"}, false))

	// track number prefix
	n.register(newRegexPrefixCleaner(reTrackNumber, nil, false))

	// 'xxx records' suffixes
	n.register(newRecordsSuffixCleaner("recordings"))
	n.register(newRecordsSuffixCleaner("records"))

	// ' | xxx' suffixes
	n.register(newRegexSuffixCleaner(rePipeSuffix, nil, nil, true))

	// common useless expressions, longest first; "song" is too common a
	// legitimate title word to strip as a prefix
	suffixCleaner := newSimpleSuffixCleaner(false)
	for _, expression := range fillerExpressions {
		n.register(suffixCleaner, expression)
	}
	prefixCleaner := newSimplePrefixCleaner(false)
	for _, expression := range fillerExpressions {
		if expression == "song" {
			continue
		}
		n.register(prefixCleaner, expression)
	}

	// artist self-reference
	n.register(newArtistCleaner(), artist)

	// starting parenthesized aside
	n.register(newStartParenthesesCleaner(true))

	// album self-reference
	if album != "" {
		n.register(newAlbumCleaner(true), album)
	}

	// unpaired chars
	n.register(newPairedCharCleaner(true))

	// surrounding dashes
	n.register(newFunctionCleaner(func(s string) string {
		return strings.Trim(s, "-")
	}, true))

	// case normalization
	n.register(newFunctionCleaner(sanitize.NormalizeTagCase, true))

	// post case normalization fixup
	n.register(newFunctionCleaner(func(s string) string {
		return strings.ReplaceAll(s, "PT.", "pt.")
	}, true))

	return n
}

// Cleanup runs the registry to its fixpoint and returns the cleaned title.
// It never fails: a rule whose removal would empty the title is ignored,
// so any non-empty input maps to a non-empty output.
func (n *TitleNormalizer) Cleanup(title string) string {
	curTitle := title
	startIndex := 0

	for len(n.cleaners) > 0 {
		n.passes++

		var toDelete []int
		restarted := false

		for i := startIndex; i < len(n.cleaners); i++ {
			entry := n.cleaners[i]
			removeCur := false

			if entry.cleaner.Skip(curTitle, entry.args) {
				if entry.cleaner.RemoveIfSkipped() && !entry.cleaner.Keep() {
					removeCur = true
				}
			} else {
				newTitle := entry.cleaner.Cleanup(curTitle, entry.args)
				if newTitle != "" && newTitle != curTitle {
					if n.Trace != nil {
						n.Trace(cleanerName(entry.cleaner), curTitle, newTitle)
					}
					// accept the mutation and re-evaluate everything
					curTitle = newTitle
					removeCur = !entry.cleaner.Keep()
					restarted = true
				} else if entry.cleaner.ExecuteOnce() {
					// exhausted without matching; skip it on the next pass
					removeCur = true
					if startIndex == 0 {
						startIndex = i
					}
				}
			}

			if removeCur {
				toDelete = append(toDelete, i)
			}
			if restarted {
				startIndex = 0
				break
			}
		}

		if !restarted {
			// a full scan changed nothing: fixpoint reached
			break
		}

		// apply removals highest index first to keep indices valid
		for j := len(toDelete) - 1; j >= 0; j-- {
			idx := toDelete[j]
			n.cleaners = append(n.cleaners[:idx], n.cleaners[idx+1:]...)
		}
	}

	return curTitle
}

// cleanerName returns a stable rule name for mutation traces.
func cleanerName(c cleaner) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", c), "*cleaner.")
}

// Clean removes useless prefixes and suffixes from a scraped track title,
// using the known artist and album reference strings. The album may be
// empty. The result is word-capitalized.
func Clean(title, artist, album string) string {
	return NewTitleNormalizer(artist, album).Cleanup(title)
}
