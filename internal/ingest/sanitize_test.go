package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Need 2 years experience, entry level",
			want:  "Need 2 years experience, entry level",
		},
		{
			name:  "tags removed",
			input: "Requires <strong>5+ years</strong> of experience.",
			want:  "Requires 5+ years of experience.",
		},
		{
			name:  "nested markup",
			input: "<div><p>Senior <em>Go</em> engineer</p></div>",
			want:  "Senior Go engineer",
		},
		{
			name:  "entities decoded",
			input: "Design &amp; build APIs",
			want:  "Design & build APIs",
		},
		{
			name:  "unclosed tag tolerated",
			input: "3-5 years of experience <b>required",
			want:  "3-5 years of experience required",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkup(tt.input))
		})
	}
}
