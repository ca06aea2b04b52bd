package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntry_Valid(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{
			name:  "all fields present",
			entry: Entry{Title: "Ladder Safety", Content: "Inspect before use.", Category: "equipment"},
			want:  true,
		},
		{
			name:  "empty title",
			entry: Entry{Title: "", Content: "Inspect before use.", Category: "equipment"},
			want:  false,
		},
		{
			name:  "whitespace only content",
			entry: Entry{Title: "Ladder Safety", Content: "   ", Category: "equipment"},
			want:  false,
		},
		{
			name:  "missing category",
			entry: Entry{Title: "Ladder Safety", Content: "Inspect before use."},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry.Valid())
		})
	}
}

func TestChunk_Entry(t *testing.T) {
	c := Chunk{Title: "Fall Protection", Content: "Wear a harness.", Category: "fall"}
	e := c.Entry()

	assert.Equal(t, "Fall Protection", e.Title)
	assert.Equal(t, "Wear a harness.", e.Content)
	assert.Equal(t, "fall", e.Category)
	assert.Nil(t, e.Source)
	assert.Nil(t, e.Keywords)
}

func TestEntry_JSONShape(t *testing.T) {
	t.Run("optional fields omitted when absent", func(t *testing.T) {
		e := Entry{Title: "T", Content: "C", Category: "general"}
		data, err := json.Marshal(e)
		require.NoError(t, err)

		assert.NotContains(t, string(data), "source")
		assert.NotContains(t, string(data), "keywords")
		assert.NotContains(t, string(data), "search_text")
	})

	t.Run("empty source persists once materialised", func(t *testing.T) {
		src := ""
		e := Entry{Title: "T", Content: "C", Category: "general", Source: &src}
		data, err := json.Marshal(e)
		require.NoError(t, err)

		assert.Contains(t, string(data), `"source":""`)
	})

	t.Run("round trip preserves fields", func(t *testing.T) {
		src := "manual.pdf"
		e := Entry{
			Title:      "T",
			Content:    "C",
			Category:   "general",
			Source:     &src,
			Keywords:   []string{"harness", "anchor"},
			SearchText: "wear harness",
		}
		data, err := json.Marshal(e)
		require.NoError(t, err)

		var got Entry
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, e, got)
	})
}
