package cleaner

import (
	"regexp"
	"strings"
)

// regexCleaner removes text matched by a regular expression found anywhere
// in the title. An optional contains list acts as a cheap pre-check before
// the regex runs; a title failing it retires the rule.
type regexCleaner struct {
	base
	regex    *regexp.Regexp
	contains []string
}

func newRegexCleaner(re *regexp.Regexp, contains []string, executeOnce bool) *regexCleaner {
	return &regexCleaner{base: newBase(executeOnce), regex: re, contains: contains}
}

func (c *regexCleaner) Skip(title string, _ []string) bool {
	return c.skipByContains(title)
}

func (c *regexCleaner) skipByContains(title string) bool {
	if len(c.contains) == 0 {
		return false
	}
	lower := strings.ToLower(title)
	for _, needle := range c.contains {
		if strings.Contains(lower, needle) {
			return false
		}
	}
	// the needle can never appear later either
	c.removeIfSkipped = true
	return true
}

func (c *regexCleaner) Cleanup(title string, _ []string) string {
	rstripped := strings.TrimRight(title, asciiPunctuation)
	loc := c.regex.FindStringIndex(rstripped)
	if loc != nil {
		joined := rclean(rstripped[:loc[0]]) + " " + lclean(rstripped[loc[1]:])
		title = strings.TrimRight(joined, asciiWhitespace)
	}
	return title
}

// regexSuffixCleaner removes a regex match anchored at the end of the title,
// with an optional ends-with-one-of fast reject.
type regexSuffixCleaner struct {
	regexCleaner
	suffixes []string
}

func newRegexSuffixCleaner(re *regexp.Regexp, contains, suffixes []string, executeOnce bool) *regexSuffixCleaner {
	return &regexSuffixCleaner{
		regexCleaner: *newRegexCleaner(re, contains, executeOnce),
		suffixes:     suffixes,
	}
}

func (c *regexSuffixCleaner) Skip(title string, _ []string) bool {
	if len(c.suffixes) > 0 {
		for _, suffix := range c.suffixes {
			if endsLike(title, suffix) {
				return false
			}
		}
		return true
	}
	return c.skipByContains(title)
}

func (c *regexSuffixCleaner) Cleanup(title string, _ []string) string {
	loc := c.regex.FindStringIndex(strings.TrimRight(title, asciiPunctuation))
	if loc != nil {
		title = rclean(title[:loc[0]])
	}
	return title
}

// regexPrefixCleaner removes a regex match anchored at the start of the title.
type regexPrefixCleaner struct {
	regexCleaner
}

func newRegexPrefixCleaner(re *regexp.Regexp, contains []string, executeOnce bool) *regexPrefixCleaner {
	return &regexPrefixCleaner{regexCleaner: *newRegexCleaner(re, contains, executeOnce)}
}

func (c *regexPrefixCleaner) Cleanup(title string, _ []string) string {
	loc := c.regex.FindStringIndex(title)
	if loc != nil {
		title = lclean(title[loc[1]:])
	}
	return title
}

// recordsSuffixCleaner removes a record label suffix, in either its
// parenthesized form ("(xxx yyy records)") or as bare trailing words. The
// bare form additionally drops one trailing word, since unbracketed label
// names usually keep their last word after the literal removal.
type recordsSuffixCleaner struct {
	regexSuffixCleaner
	recordWord string
}

func newRecordsSuffixCleaner(recordWord string) *recordsSuffixCleaner {
	re := regexp.MustCompile(`(?i)([|)([]|on)[0-9a-z,/ ]+` + recordWord + `$`)
	return &recordsSuffixCleaner{
		regexSuffixCleaner: *newRegexSuffixCleaner(re, nil, []string{recordWord}, false),
		recordWord:         recordWord,
	}
}

func (c *recordsSuffixCleaner) Cleanup(title string, _ []string) string {
	loc := c.regex.FindStringIndex(strings.TrimRight(title, asciiPunctuation))
	if loc != nil {
		// '(xxx yyy records)' suffix
		return rclean(title[:loc[0]])
	}
	title = tryStripSuffix(title, c.recordWord)
	words := strings.Fields(title)
	if len(words) > 0 {
		words = words[:len(words)-1]
	}
	return rclean(strings.Join(words, " "))
}
