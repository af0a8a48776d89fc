// Package jsontree walks loosely-typed JSON documents embedded in web pages.
//
// A tree is the value produced by encoding/json decoding into any:
// map[string]any, []any, string, float64, bool or nil. Page blobs change
// shape without notice, so lookups here never fail loudly; a missing path is
// simply nil or "".
package jsontree

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"
	"strconv"
	"strings"
)

// ErrNoObject is returned by Decode when the input holds no JSON value.
var ErrNoObject = errors.New("jsontree: no JSON object")

// Predicate reports whether a map node is the one being looked for.
type Predicate func(node map[string]any) bool

// Decode parses data into a tree, keeping numbers as float64.
func Decode(data []byte) (any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoObject
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Find walks root depth-first and returns the first map satisfying pred.
// A map is tested before its children. Map keys are visited in sorted
// order so the result is stable across runs.
func Find(root any, pred Predicate) map[string]any {
	switch n := root.(type) {
	case map[string]any:
		if pred(n) {
			return n
		}
		for _, k := range sortedKeys(n) {
			if hit := Find(n[k], pred); hit != nil {
				return hit
			}
		}
	case []any:
		for _, child := range n {
			if hit := Find(child, pred); hit != nil {
				return hit
			}
		}
	}
	return nil
}

// FindAll returns every map satisfying pred, in Find's visiting order.
func FindAll(root any, pred Predicate) []map[string]any {
	var out []map[string]any
	var walk func(any)
	walk = func(v any) {
		switch n := v.(type) {
		case map[string]any:
			if pred(n) {
				out = append(out, n)
			}
			for _, k := range sortedKeys(n) {
				walk(n[k])
			}
		case []any:
			for _, child := range n {
				walk(child)
			}
		}
	}
	walk(root)
	return out
}

// HasKey builds a predicate matching maps that contain key.
func HasKey(key string) Predicate {
	return func(m map[string]any) bool {
		_, ok := m[key]
		return ok
	}
}

// Get follows path through root. String elements index maps, int elements
// index arrays (negative counts from the end). Returns nil when any step misses.
func Get(root any, path ...any) any {
	cur := root
	for _, p := range path {
		switch key := p.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[key]
		case int:
			arr, ok := cur.([]any)
			if !ok {
				return nil
			}
			if key < 0 {
				key += len(arr)
			}
			if key < 0 || key >= len(arr) {
				return nil
			}
			cur = arr[key]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// String returns the display text of the node at path, or "".
func String(root any, path ...any) string {
	return DisplayText(Get(root, path...))
}

// DisplayText returns the human-readable text of a node. It understands bare
// strings, {"simpleText": ...}, {"runs": [{"text": ...}]} and
// {"content": ...}; other containers are searched recursively for the first
// non-empty text.
func DisplayText(node any) string {
	switch n := node.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(n)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case map[string]any:
		if s, ok := n["simpleText"].(string); ok {
			return strings.TrimSpace(s)
		}
		if runs, ok := n["runs"].([]any); ok {
			var sb strings.Builder
			for _, r := range runs {
				if rm, ok := r.(map[string]any); ok {
					if t, ok := rm["text"].(string); ok {
						sb.WriteString(t)
					}
				}
			}
			if s := strings.TrimSpace(sb.String()); s != "" {
				return s
			}
		}
		if s, ok := n["content"].(string); ok {
			return strings.TrimSpace(s)
		}
		for _, k := range sortedKeys(n) {
			if s := DisplayText(n[k]); s != "" {
				return s
			}
		}
	case []any:
		for _, child := range n {
			if s := DisplayText(child); s != "" {
				return s
			}
		}
	}
	return ""
}

// ExtractObject locates marker in body and returns the balanced JSON object
// that starts at the first '{' after it. Returns nil when no complete object
// follows the marker.
func ExtractObject(body []byte, marker string) []byte {
	return extractAfter(body, marker, '{')
}

// ExtractArray is ExtractObject for a JSON array following marker.
func ExtractArray(body []byte, marker string) []byte {
	return extractAfter(body, marker, '[')
}

func extractAfter(body []byte, marker string, open byte) []byte {
	idx := bytes.Index(body, []byte(marker))
	if idx < 0 {
		return nil
	}
	rest := body[idx+len(marker):]
	start := bytes.IndexByte(rest, open)
	if start < 0 {
		return nil
	}
	// only assignment punctuation may sit between the marker and the value
	if len(bytes.Trim(rest[:start], " \t\r\n=(\"]:")) > 0 {
		return nil
	}
	return balanced(rest[start:])
}

// DecodeAfter combines ExtractObject and Decode.
func DecodeAfter(body []byte, marker string) (any, error) {
	obj := ExtractObject(body, marker)
	if obj == nil {
		return nil, ErrNoObject
	}
	return Decode(obj)
}

// balanced returns the prefix of b holding one bracket-balanced object or
// array, honoring string literals and escapes.
func balanced(b []byte) []byte {
	if len(b) == 0 || (b[0] != '{' && b[0] != '[') {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
