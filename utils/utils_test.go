package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{
		"golang":     "Go",
		" GO ":       "Go",
		"javascipt":  "JavaScript",
		"c++":        "C++",
		"py":         "Python",
		"Elixir":     "Elixir",
		"  Haskell ": "Haskell",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeLanguage(in), in)
	}
}

func TestToggleMember(t *testing.T) {
	orig := []string{"a", "b"}

	out, added := ToggleMember(orig, "c")
	assert.True(t, added)
	assert.Equal(t, []string{"a", "b", "c"}, out)

	out, added = ToggleMember(out, "a")
	assert.False(t, added)
	assert.Equal(t, []string{"b", "c"}, out)

	assert.Equal(t, []string{"a", "b"}, orig)

	out, added = ToggleMember(nil, "x")
	assert.True(t, added)
	assert.Equal(t, []string{"x"}, out)
}

func TestContainsAndRemove(t *testing.T) {
	list := []string{"u1", "u2", "u1"}
	assert.True(t, Contains(list, "u2"))
	assert.False(t, Contains(list, "u3"))
	assert.Equal(t, []string{"u2"}, Remove(list, "u1"))
	assert.Equal(t, []string{}, Remove(nil, "u1"))
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "go", "", "Docker", "  ", "docker", "k8s"})
	assert.Equal(t, []string{"Go", "Docker", "k8s"}, got)
}
