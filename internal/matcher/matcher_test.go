package matcher

import (
	"testing"
	"unicode"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"tagtidy/internal/config"
)

// randomizeCase applies random casing to a string
func randomizeCase(s string, seed int64) string {
	runes := []rune(s)
	for i := range runes {
		if (seed>>uint(i%64))&1 == 1 {
			runes[i] = unicode.ToUpper(runes[i])
		} else {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}

// genNonEmptyAlphaString generates non-empty alphabetic strings
func genNonEmptyAlphaString() gopter.Gen {
	return gen.AlphaString().SuchThat(func(s string) bool {
		return len(s) > 0
	})
}

// genArtistRule generates a valid ArtistRule
func genArtistRule() gopter.Gen {
	return gopter.CombineGens(
		genNonEmptyAlphaString(),
		genNonEmptyAlphaString(),
	).Map(func(vals []interface{}) config.ArtistRule {
		return config.ArtistRule{
			Artist:          vals[0].(string),
			TargetDirectory: vals[1].(string),
		}
	})
}

func TestCaseInsensitiveArtistMatching(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("Match succeeds regardless of artist casing", prop.ForAll(
		func(rule config.ArtistRule, casingSeed int64, title string) bool {
			randomCasedArtist := randomizeCase(rule.Artist, casingSeed)
			filename := randomCasedArtist + " - " + title

			result := Match(filename, []config.ArtistRule{rule})

			if !result.Matched {
				t.Logf("expected match for filename %q with artist %q", filename, rule.Artist)
				return false
			}
			if result.Remainder != title {
				t.Logf("remainder %q, want %q", result.Remainder, title)
				return false
			}
			return true
		},
		genArtistRule(),
		gen.Int64(),
		genNonEmptyAlphaString(),
	))

	properties.TestingRun(t)
}

func TestMatchDiacriticInsensitive(t *testing.T) {
	rules := []config.ArtistRule{
		{Artist: "Motorhead", TargetDirectory: "/music"},
	}

	result := Match("Motörhead - Overkill", rules)
	if !result.Matched {
		t.Fatal("expected diacritic-insensitive match")
	}
	if result.Remainder != "Overkill" {
		t.Errorf("remainder = %q, want %q", result.Remainder, "Overkill")
	}
}

func TestMatchEllipsisArtist(t *testing.T) {
	rules := []config.ArtistRule{
		{Artist: "...And Oceans", TargetDirectory: "/music"},
	}

	// The ellipsis folds to three dots, so the folded prefix is longer
	// than the original; the remainder must still start after the artist.
	result := Match("…And Oceans - Cold Fever", rules)
	if !result.Matched {
		t.Fatal("expected ellipsis-folded match")
	}
	if result.Remainder != "Cold Fever" {
		t.Errorf("remainder = %q, want %q", result.Remainder, "Cold Fever")
	}
}

func TestMatchPrefixEndingInsideExpandedRune(t *testing.T) {
	rules := []config.ArtistRule{
		{Artist: "..", TargetDirectory: "/music"},
	}

	result := Match("…And Oceans - Cold Fever", rules)
	if result.Matched {
		t.Errorf("artist ending mid-ellipsis matched, remainder %q", result.Remainder)
	}
}

func TestMatchLongestArtistWins(t *testing.T) {
	rules := []config.ArtistRule{
		{Artist: "Crystal", TargetDirectory: "/a"},
		{Artist: "Crystal Viper", TargetDirectory: "/b"},
	}

	result := Match("Crystal Viper - The Witch Is Back", rules)
	if !result.Matched {
		t.Fatal("expected match")
	}
	if result.Rule.Artist != "Crystal Viper" {
		t.Errorf("matched %q, want the longer artist", result.Rule.Artist)
	}
	if result.Remainder != "The Witch Is Back" {
		t.Errorf("remainder = %q", result.Remainder)
	}
}

func TestMatchSeparatorVariants(t *testing.T) {
	rules := []config.ArtistRule{
		{Artist: "Dool", TargetDirectory: "/music"},
	}

	tests := []struct {
		filename  string
		matched   bool
		remainder string
	}{
		{"Dool - She Goat", true, "She Goat"},
		{"Dool- She Goat", true, "She Goat"},
		{"Dool: She Goat", true, "She Goat"},
		{"Dool   She Goat", true, "She Goat"},
		{"Dool -- She Goat", true, "She Goat"},
		{"Dool", true, ""},
		{"Doolittle Farm", false, ""},
		{"DoolX She Goat", false, ""},
		{"Something Else Entirely", false, ""},
	}

	for _, tt := range tests {
		result := Match(tt.filename, rules)
		if result.Matched != tt.matched {
			t.Errorf("Match(%q).Matched = %v, want %v", tt.filename, result.Matched, tt.matched)
			continue
		}
		if result.Matched && result.Remainder != tt.remainder {
			t.Errorf("Match(%q).Remainder = %q, want %q", tt.filename, result.Remainder, tt.remainder)
		}
	}
}

func TestMatchEmptyRules(t *testing.T) {
	result := Match("Dool - She Goat", nil)
	if result.Matched {
		t.Error("expected no match with empty rule set")
	}
}
