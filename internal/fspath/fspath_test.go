package fspath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "dir\\a.txt", Normalize(`\dir\a.txt`))
	assert.Equal(t, "a.txt", Normalize("a.txt"))
	assert.Equal(t, "", Normalize(`\`))
	assert.Equal(t, `\`, Normalize(`\\`))
}

func TestIsRoot(t *testing.T) {
	assert.True(t, IsRoot(`\`))
	assert.True(t, IsRoot(`\\`))
	assert.False(t, IsRoot(`\a`))
}

func TestSearchPrefix(t *testing.T) {
	prefix, wildcard := SearchPrefix(`\dir\`, "*")
	assert.Equal(t, `dir\`, prefix)
	assert.Equal(t, `dir\*`, wildcard)

	prefix, wildcard = SearchPrefix(`\`, "*.txt")
	assert.Equal(t, ".txt", prefix)
	assert.Equal(t, ".txt*", wildcard)

	prefix, wildcard = SearchPrefix(`\dir`, "")
	assert.Equal(t, "dir", prefix)
	assert.Equal(t, "dir*", wildcard)
}

func TestLiteralPrefix(t *testing.T) {
	assert.Equal(t, "a", LiteralPrefix("a?c"))
	assert.Equal(t, `dir\`, LiteralPrefix(`dir\*.txt`))
	assert.Equal(t, `dir\x`, LiteralPrefix(`dir\x`))
	assert.Equal(t, "", LiteralPrefix("?"))
}

func TestJoinSplit(t *testing.T) {
	assert.Equal(t, "a", Join("", "a"))
	assert.Equal(t, `a\b`, Join("a", "b"))

	parent, name := Split(`a\b\c`)
	assert.Equal(t, `a\b`, parent)
	assert.Equal(t, "c", name)

	parent, name = Split("c")
	assert.Equal(t, "", parent)
	assert.Equal(t, "c", name)

	assert.Equal(t, `a\b`, FromSlash("/a/b/"))
}

func TestChild(t *testing.T) {
	assert.Equal(t, "a", Child("", "a"))
	assert.Equal(t, "a", Child("", `a\b`))
	assert.Equal(t, "b", Child("a", `a\b\c`))
	assert.Equal(t, "", Child("a", "a"))
	assert.Equal(t, "", Child("a", "ab"))
}

func TestMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"*", "", true},
		{"*", `dir\a`, true},
		{`dir\*`, `dir\a.txt`, true},
		{`dir\*`, `other\a.txt`, false},
		{"a?c", "abc", true},
		{"a?c", "ac", false},
		{"*.txt", "notes.txt", true},
		{"*.txt", "notes.md", false},
		{"a*b*c", "axxbyyc", true},
		{"a*b*c", "axxbyy", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Match(tc.pattern, tc.name), "%q ~ %q", tc.pattern, tc.name)
	}
}
