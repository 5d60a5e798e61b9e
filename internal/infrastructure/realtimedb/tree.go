package realtimedb

import (
	"strings"

	"pairchat/pkg/utils"
)

func lookup(node interface{}, segs []string) interface{} {
	for _, seg := range segs {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		node = m[seg]
		if node == nil {
			return nil
		}
	}
	return node
}

// setIn writes value at segs below node, creating intermediate maps and
// pruning any that become empty.
func setIn(node map[string]interface{}, segs []string, value interface{}) {
	key := segs[0]
	if len(segs) == 1 {
		if value == nil {
			delete(node, key)
		} else {
			node[key] = value
		}
		return
	}

	child, ok := node[key].(map[string]interface{})
	if !ok {
		if value == nil {
			return
		}
		child = make(map[string]interface{})
		node[key] = child
	}
	setIn(child, segs[1:], value)
	if len(child) == 0 {
		delete(node, key)
	}
}

// overlapping returns the first pair of paths where one is an ancestor of,
// or equal to, the other.
func overlapping(paths []string) (string, string, bool) {
	seen := make(map[string]bool, len(paths))
	for _, path := range paths {
		if seen[path] {
			return path, path, true
		}
		seen[path] = true
	}
	for _, path := range paths {
		segs := utils.SplitPath(path)
		for depth := 0; depth < len(segs); depth++ {
			if ancestor := strings.Join(segs[:depth], "/"); seen[ancestor] {
				return ancestor, path, true
			}
		}
	}
	return "", "", false
}
