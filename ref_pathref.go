package vegaskema

import (
	"fmt"
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
// The zero-length path renders as "/".
type PathRef struct {
	parts []string
}

// Root returns the document root.
func Root() PathRef { return PathRef{} }

// At parses an existing JSON Pointer ("/marks/0") into a PathRef.
func At(pointer string) PathRef {
	if pointer == "" || pointer == "/" {
		return Root()
	}
	var parts []string
	for _, p := range strings.Split(pointer, "/") {
		if p == "" {
			continue
		}
		parts = append(parts, p)
	}
	return PathRef{parts: parts}
}

// Field appends an object key; '~' and '/' are escaped per RFC 6901.
func (p PathRef) Field(name string) PathRef {
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return PathRef{parts: append(append([]string{}, p.parts...), esc)}
}

// Index appends an array index.
func (p PathRef) Index(i int) PathRef {
	return PathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

// Pointer renders the JSON Pointer.
func (p PathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

func (p PathRef) String() string { return p.Pointer() }

// Issue creates an Issue at this path. kv is a flat list of param key/value pairs.
func (p PathRef) Issue(code, msg string, kv ...any) Issue {
	var m map[string]any
	if len(kv) >= 2 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: m, Offset: -1}
}
