package feed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		maxRunes int
		want     string
	}{
		{
			name:     "plain text untouched",
			html:     "Parliament passes a new law",
			maxRunes: 500,
			want:     "Parliament passes a new law",
		},
		{
			name:     "tags removed",
			html:     "<p>Parliament passes a <b>new law</b></p>",
			maxRunes: 500,
			want:     "Parliament passes a new law",
		},
		{
			name:     "script and style dropped",
			html:     "<p>Headline</p><script>alert('x')</script><style>p{color:red}</style>",
			maxRunes: 500,
			want:     "Headline",
		},
		{
			name:     "entity-escaped text decoded",
			html:     "Profits &amp; losses",
			maxRunes: 500,
			want:     "Profits & losses",
		},
		{
			name:     "whitespace collapsed",
			html:     "<p>First   line</p>\n\n<p>Second line</p>",
			maxRunes: 500,
			want:     "First line Second line",
		},
		{
			name:     "empty input",
			html:     "",
			maxRunes: 500,
			want:     "",
		},
		{
			name:     "whitespace only",
			html:     "   \n\t  ",
			maxRunes: 500,
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.html, tt.maxRunes))
		})
	}
}

func TestStripHTML_Truncates(t *testing.T) {
	long := "<p>" + strings.Repeat("word ", 200) + "</p>"

	got := StripHTML(long, 50)

	assert.True(t, strings.HasSuffix(got, "..."))
	// 50 runes plus the ellipsis.
	assert.Len(t, []rune(got), 53)
}
