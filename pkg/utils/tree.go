package utils

import (
	"fmt"
	"strconv"
	"strings"
)

const forbiddenKeyChars = ".$#[]/"

// ToTree converts a value into its stored tree form: plain JSON values, lists
// as index-keyed maps, with nulls and empty containers removed. A nil result
// means the value stores nothing.
func ToTree(value interface{}) (interface{}, error) {
	plain, err := Plain(value)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON-shaped: %w", err)
	}
	return compact(plain)
}

func compact(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, child := range v {
			if key == "" || strings.ContainsAny(key, forbiddenKeyChars) {
				return nil, fmt.Errorf("invalid key %q", key)
			}
			c, err := compact(child)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out[key] = c
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil

	case []interface{}:
		out := make(map[string]interface{}, len(v))
		for i, child := range v {
			c, err := compact(child)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out[strconv.Itoa(i)] = c
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	}
	return value, nil
}

// FromTree deep-copies a stored value into its read form. Maps whose keys
// are all array indices and that are more than half populated become lists.
func FromTree(value interface{}) interface{} {
	m, ok := value.(map[string]interface{})
	if !ok {
		return value
	}
	if list, ok := asList(m); ok {
		return list
	}
	out := make(map[string]interface{}, len(m))
	for key, child := range m {
		out[key] = FromTree(child)
	}
	return out
}

func asList(m map[string]interface{}) ([]interface{}, bool) {
	max := -1
	for key := range m {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || strconv.Itoa(idx) != key {
			return nil, false
		}
		if idx > max {
			max = idx
		}
	}
	if max < 0 || 2*len(m) <= max+1 {
		return nil, false
	}
	list := make([]interface{}, max+1)
	for key, child := range m {
		idx, _ := strconv.Atoi(key)
		list[idx] = FromTree(child)
	}
	return list, true
}

// Child returns the value at the relative path segs below value, walking
// both maps and lists.
func Child(value interface{}, segs []string) interface{} {
	for _, seg := range segs {
		switch v := value.(type) {
		case map[string]interface{}:
			value = v[seg]
		case []interface{}:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil
			}
			value = v[idx]
		default:
			return nil
		}
		if value == nil {
			return nil
		}
	}
	return value
}

// WithChild returns a copy of value with the node at segs replaced by child.
// Lists along the path are turned into index-keyed maps; pass the result
// through ToTree and FromTree to get the canonical form back.
func WithChild(value interface{}, segs []string, child interface{}) interface{} {
	if len(segs) == 0 {
		return child
	}

	out := make(map[string]interface{})
	switch v := value.(type) {
	case map[string]interface{}:
		for key, c := range v {
			out[key] = c
		}
	case []interface{}:
		for i, c := range v {
			if c != nil {
				out[strconv.Itoa(i)] = c
			}
		}
	}

	next := WithChild(out[segs[0]], segs[1:], child)
	if next == nil {
		delete(out, segs[0])
	} else {
		out[segs[0]] = next
	}
	return out
}
