package patterns

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText_Basic(t *testing.T) {
	in := "# colours\nred\tcolour\n\ngreen\nlight blue\tcolour\r\n"
	entries, err := ParseText(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Pattern: "red", Value: "colour"},
		{Pattern: "green", Value: "green"},
		{Pattern: "light blue", Value: "colour"},
	}, entries)
}

func TestParseText_Escapes(t *testing.T) {
	entries, err := ParseText(strings.NewReader(`a\tb` + "\tv\n" + `\#tag` + "\n" + `back\\slash` + "\n"))
	require.NoError(t, err)
	assert.Equal(t, "a\tb", entries[0].Pattern)
	assert.Equal(t, "v", entries[0].Value)
	assert.Equal(t, "#tag", entries[1].Pattern)
	assert.Equal(t, `back\slash`, entries[2].Pattern)
}

func TestParseText_Errors(t *testing.T) {
	_, err := ParseText(strings.NewReader("ok\nbad\\q\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ParseText(strings.NewReader("trailing\\"))
	assert.ErrorContains(t, err, "trailing backslash")

	_, err = ParseText(strings.NewReader("\tvalue-only\n"))
	assert.ErrorContains(t, err, "empty pattern")
}

func TestParseYAML_List(t *testing.T) {
	entries, err := ParseYAML([]byte(`
- pattern: he
  value: pronoun
- pattern: hers
`))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Pattern: "he", Value: "pronoun"},
		{Pattern: "hers", Value: "hers"},
	}, entries)
}

func TestParseYAML_MappingKeepsOrder(t *testing.T) {
	entries, err := ParseYAML([]byte("zeta: last-letter\nalpha: first-letter\n"))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Pattern: "zeta", Value: "last-letter"},
		{Pattern: "alpha", Value: "first-letter"},
	}, entries)
}

func TestParseYAML_Errors(t *testing.T) {
	_, err := ParseYAML([]byte("- value: orphan\n"))
	assert.ErrorContains(t, err, "missing pattern")

	_, err = ParseYAML([]byte("just a string\n"))
	assert.ErrorContains(t, err, "expected a list or a mapping")

	_, err = ParseYAML([]byte("key: [1, 2]\n"))
	assert.ErrorContains(t, err, "scalars")

	entries, err := ParseYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "p.txt")
	yml := filepath.Join(dir, "p.yml")
	require.NoError(t, os.WriteFile(txt, []byte("foo\tbar\n"), 0644))
	require.NoError(t, os.WriteFile(yml, []byte("foo: bar\n"), 0644))

	a, err := Load(txt)
	require.NoError(t, err)
	b, err := Load(yml)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPatterns_Dedup(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Patterns([]Entry{
		{Pattern: "a"}, {Pattern: "b"}, {Pattern: "a"},
	}))
}
