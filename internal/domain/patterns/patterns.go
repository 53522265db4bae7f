// Package patterns loads pattern files into automaton entries.
//
// Two formats are understood. The text format holds one pattern per line,
// optionally followed by a TAB and the value; lines starting with '#' are
// comments and blank lines are skipped. Patterns may use the escapes \t, \n,
// \\ and \# (a literal leading '#'). When no value is given the pattern is
// its own value.
//
// The YAML format (.yaml/.yml) is either a sequence of {pattern, value}
// objects or a mapping from pattern to value. Mapping order is preserved.
package patterns

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/corey/acmatch/internal/domain/automaton"
	"gopkg.in/yaml.v3"
)

// Entry is a pattern bound to a string value.
type Entry = automaton.Entry[string]

// Load reads path and parses it according to its extension.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return entries, nil
	default:
		entries, err := ParseText(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return entries, nil
	}
}

// ParseText parses the line-oriented format.
func ParseText(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSuffix(sc.Text(), "\r")
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		rawPattern, value, hasValue := strings.Cut(raw, "\t")
		pattern, err := unescape(rawPattern)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if pattern == "" {
			return nil, fmt.Errorf("line %d: empty pattern", line)
		}
		if !hasValue {
			value = pattern
		}
		entries = append(entries, Entry{Pattern: pattern, Value: value})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan patterns: %w", err)
	}
	return entries, nil
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("trailing backslash in %q", s)
		}
		switch s[i] {
		case 't':
			sb.WriteByte('\t')
		case 'n':
			sb.WriteByte('\n')
		case '\\':
			sb.WriteByte('\\')
		case '#':
			sb.WriteByte('#')
		default:
			return "", fmt.Errorf("unknown escape \\%c in %q", s[i], s)
		}
	}
	return sb.String(), nil
}

type yamlEntry struct {
	Pattern *string `yaml:"pattern"`
	Value   *string `yaml:"value"`
}

// ParseYAML parses the YAML format.
func ParseYAML(data []byte) ([]Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []yamlEntry
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("decode pattern list: %w", err)
		}
		entries := make([]Entry, 0, len(list))
		for i, e := range list {
			if e.Pattern == nil || *e.Pattern == "" {
				return nil, fmt.Errorf("entry %d: missing pattern", i)
			}
			value := *e.Pattern
			if e.Value != nil {
				value = *e.Value
			}
			entries = append(entries, Entry{Pattern: *e.Pattern, Value: value})
		}
		return entries, nil

	case yaml.MappingNode:
		entries := make([]Entry, 0, len(root.Content)/2)
		for i := 0; i+1 < len(root.Content); i += 2 {
			k, v := root.Content[i], root.Content[i+1]
			if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping entries must be scalars", k.Line)
			}
			if k.Value == "" {
				return nil, fmt.Errorf("line %d: empty pattern", k.Line)
			}
			entries = append(entries, Entry{Pattern: k.Value, Value: v.Value})
		}
		return entries, nil

	default:
		return nil, fmt.Errorf("line %d: expected a list or a mapping of patterns", root.Line)
	}
}

// Patterns returns the pattern strings of entries, first occurrence wins.
func Patterns(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Pattern]; ok {
			continue
		}
		seen[e.Pattern] = struct{}{}
		out = append(out, e.Pattern)
	}
	return out
}
