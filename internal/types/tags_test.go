package types_test

import (
	"testing"

	"github.com/kodelink/task-mcp/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "lowercases and single-spaces",
			in:   []string{"  Foo   Bar  ", "BAZ"},
			want: []string{"foo bar", "baz"},
		},
		{
			name: "dedupes preserving insertion order",
			in:   []string{"b", "a", "b", "A"},
			want: []string{"b", "a"},
		},
		{
			name: "drops empty entries",
			in:   []string{"", "   ", "x"},
			want: []string{"x"},
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types.NormalizeTags(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagStringRoundTrip(t *testing.T) {
	tags := types.NormalizeTags([]string{"B", "a", "c"})
	s := types.TagString(tags)
	assert.Equal(t, "b,a,c", s)
	assert.Equal(t, tags, types.SplitTagString(s))
}

func TestSplitTagString_Empty(t *testing.T) {
	assert.Nil(t, types.SplitTagString(""))
}
