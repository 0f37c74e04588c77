// # internal/render/ids.go
package render

import (
	"strconv"
	"strings"
	"unicode"
)

// idTable assigns stable identifiers in first-seen order. Minified IDs are a
// base-36 counter behind a letter prefix so they always start with a letter;
// readable IDs are sanitized path names made unique with a numeric suffix.
type idTable struct {
	minify  bool
	ids     map[string]string
	used    map[string]int
	counter int
}

func newIDTable(minify bool) *idTable {
	return &idTable{
		minify: minify,
		ids:    make(map[string]string),
		used:   make(map[string]int),
	}
}

// Register returns the ID for name, assigning one on first sight.
func (t *idTable) Register(name string) string {
	if id, ok := t.ids[name]; ok {
		return id
	}

	var id string
	if t.minify {
		id = "n" + strconv.FormatInt(int64(t.counter), 36)
		t.counter++
	} else {
		base := sanitizeID(name)
		idx := t.used[base]
		t.used[base] = idx + 1
		if idx == 0 {
			id = base
		} else {
			id = base + "_" + strconv.Itoa(idx+1)
		}
	}

	t.ids[name] = id
	return id
}

// Alias maps an alternate name (the absolute path) onto an already assigned ID.
func (t *idTable) Alias(name, id string) {
	t.ids[name] = id
}

// Lookup returns the ID for name, if assigned.
func (t *idTable) Lookup(name string) (string, bool) {
	id, ok := t.ids[name]
	return id, ok
}

// sanitizeID strips characters the diagram syntax cannot carry in an
// identifier. "." and ".." path segments get spelled-out replacements so they
// stay distinguishable.
func sanitizeID(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		switch seg {
		case ".":
			segments[i] = "dot"
		case "..":
			segments[i] = "dotdot"
		}
	}

	var b strings.Builder
	for _, r := range strings.Join(segments, "_") {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}

	out := b.String()
	if out == "" {
		return "m"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "m_" + out
	}
	return out
}
