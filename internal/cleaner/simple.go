package cleaner

import "strings"

// functionCleaner applies an arbitrary pure transform to the title.
type functionCleaner struct {
	base
	fn func(string) string
}

func newFunctionCleaner(fn func(string) string, executeOnce bool) *functionCleaner {
	return &functionCleaner{base: newBase(executeOnce), fn: fn}
}

func (c *functionCleaner) Cleanup(title string, _ []string) string {
	return c.fn(title)
}

// simplePrefixCleaner removes a known literal from the start of the title
// when a normalized comparison matches.
type simplePrefixCleaner struct {
	base
}

func newSimplePrefixCleaner(executeOnce bool) *simplePrefixCleaner {
	return &simplePrefixCleaner{base: newBase(executeOnce)}
}

func (c *simplePrefixCleaner) Cleanup(title string, args []string) string {
	return tryStripPrefix(title, args[0])
}

// tryStripPrefix removes prefix from title when the normalized comparison
// matches and the match ends at a separator.
func tryStripPrefix(title, prefix string) string {
	if startsLike(title, prefix, asciiPunctuation+asciiWhitespace) {
		title = lclean(rmPrefix(title, prefix))
	}
	return title
}

// simpleSuffixCleaner removes a known literal from the end of the title.
type simpleSuffixCleaner struct {
	base
}

func newSimpleSuffixCleaner(executeOnce bool) *simpleSuffixCleaner {
	return &simpleSuffixCleaner{base: newBase(executeOnce)}
}

func (c *simpleSuffixCleaner) Cleanup(title string, args []string) string {
	return tryStripSuffix(title, args[0])
}

// tryStripSuffix removes suffix from title when the normalized comparison
// matches. A removal that would leave a bare article is refused.
func tryStripSuffix(title, suffix string) string {
	if endsLike(title, suffix) {
		newTitle := rclean(rmSuffix(title, suffix))
		if strings.ToLower(newTitle) != "the" {
			title = newTitle
		}
	}
	return title
}
