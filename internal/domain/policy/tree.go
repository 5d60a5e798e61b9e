package policy

import "pairchat/pkg/utils"

// Tree is a read-only view of the current datastore contents.
type Tree interface {
	Value(path string) (interface{}, error)
}

type TreeFunc func(path string) (interface{}, error)

func (f TreeFunc) Value(path string) (interface{}, error) {
	return f(path)
}

// MapTree is an in-memory snapshot of the whole tree, for offline evaluation.
type MapTree map[string]interface{}

func (t MapTree) Value(path string) (interface{}, error) {
	return utils.Child(map[string]interface{}(t), utils.SplitPath(path)), nil
}
