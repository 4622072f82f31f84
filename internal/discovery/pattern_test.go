package discovery

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestExtractArtistFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		artist   string
		matched  bool
	}{
		{"Dool - She Goat.opus", "Dool", true},
		{"Crystal Viper - The Witch Is Back.flac", "Crystal Viper", true},
		{"Motörhead - Overkill.mp3", "Motörhead", true},
		// A title containing " - " stays in the title half.
		{"Dool - Love Like Blood - Live.opus", "Dool", true},
		// The separator needs spaces around the dash.
		{"Dool-She Goat.opus", "", false},
		{"She Goat.opus", "", false},
		{" - She Goat.opus", "", false},
		{"Dool - .opus", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		artist, matched := ExtractArtistFromFilename(tt.filename)
		if matched != tt.matched || artist != tt.artist {
			t.Errorf("ExtractArtistFromFilename(%q) = (%q, %v), want (%q, %v)",
				tt.filename, artist, matched, tt.artist, tt.matched)
		}
	}
}

func TestExtractArtistIgnoresExtensionDots(t *testing.T) {
	// Only the final extension is stripped before matching.
	artist, matched := ExtractArtistFromFilename("Dool - She.Goat.opus")
	if !matched || artist != "Dool" {
		t.Errorf("got (%q, %v), want (Dool, true)", artist, matched)
	}
}

func TestExtractArtistRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genWord := gen.RegexMatch(`[A-Za-z][a-z]{1,10}`)

	properties.Property("constructed filenames yield their artist back", prop.ForAll(
		func(artist, title string) bool {
			filename := artist + " - " + title + ".opus"
			got, matched := ExtractArtistFromFilename(filename)
			return matched && got == artist
		},
		genWord,
		genWord,
	))

	properties.TestingRun(t)
}
