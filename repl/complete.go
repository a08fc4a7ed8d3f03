// Copyright © 2024 The rsresolve authors

package repl

import (
	"sort"
	"strings"
)

// nameCompleter implements readline.AutoCompleter over a list of names.
// Only the last segment of a path is completed.
type nameCompleter struct {
	names func() []string
}

func (c *nameCompleter) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 {
		ch := line[start-1]
		if ch == ' ' || ch == '\t' || ch == ':' || ch == '@' {
			break
		}
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}

	candidates := c.collect(prefix)
	if len(candidates) == 0 {
		return nil, 0
	}

	// Each entry is the suffix to append.
	result := make([][]rune, 0, len(candidates))
	for _, name := range candidates {
		result = append(result, []rune(name[len(prefix):]))
	}
	return result, len(prefix)
}

func (c *nameCompleter) collect(prefix string) []string {
	seen := make(map[string]bool)
	var result []string
	for _, name := range c.names() {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	sort.Strings(result)
	return result
}
