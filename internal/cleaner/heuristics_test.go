package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSectionHeader(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"all caps", "FALL PROTECTION", true},
		{"all caps with digits", "OSHA 1926 REQUIREMENTS", true},
		{"numbered heading", "1. Introduction", true},
		{"chapter heading", "Chapter 3: Ladder Safety", true},
		{"section number", "1.1 Safety Procedures", true},
		{"capitalized words", "Fall Protection Equipment", true},
		{"two caps words inline", "The OSHA and ANSI rules differ here", true},
		{"plain sentence", "Always wear a harness when working above six feet.", false},
		{"short fragment", "the", false},
		{"capitalized but ends with period", "Fall Protection Basics.", false},
		{"too many words", "This Is A Very Long Title With Far Too Many Words To Be A Header Really", false},
		{"single capitalized word", "Safety", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSectionHeader(tt.text), "text: %q", tt.text)
		})
	}
}

func TestIsSectionHeader_LongAllCaps(t *testing.T) {
	// Every header rule carries a 100 character ceiling.
	long := "THIS IS AN EXTREMELY LONG ALL CAPS PARAGRAPH THAT KEEPS GOING AND GOING WELL PAST THE ONE HUNDRED CHARACTER LIMIT FOR HEADERS"
	assert.False(t, IsSectionHeader(long))
}

func TestIsListItem(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"dash", "- wear gloves", true},
		{"asterisk", "* wear gloves", true},
		{"bullet", "• wear gloves", true},
		{"numbered dot", "1. wear gloves", true},
		{"numbered paren", "2) wear gloves", true},
		{"lettered", "a) wear gloves", true},
		{"plain text", "wear gloves at all times", false},
		{"dash without space", "-wear gloves", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsListItem(tt.text))
		})
	}
}

func TestIsTopicChange(t *testing.T) {
	tests := []struct {
		name string
		next string
		want bool
	}{
		{"however", "However, some sites require more.", true},
		{"step", "Step 2: attach the lanyard.", true},
		{"warning", "Warning: never exceed the rated load.", true},
		{"note", "note that anchor points must be rated", true},
		{"plain continuation", "The harness must also fit snugly.", false},
		{"mid-sentence however", "We checked; however it failed.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTopicChange(tt.next))
		})
	}
}
