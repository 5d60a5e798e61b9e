package trigger

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"pairchat/internal/domain/repository"
	"pairchat/pkg/utils"
)

// ObservedStore decorates a Datastore so that every write publishes the
// changed template nodes to the dispatcher. Writes are serialized so that
// each write's before and after snapshots are consistent with each other.
type ObservedStore struct {
	store      repository.Datastore
	dispatcher *Dispatcher
	mu         sync.Mutex
}

func NewObservedStore(store repository.Datastore, dispatcher *Dispatcher) *ObservedStore {
	return &ObservedStore{store: store, dispatcher: dispatcher}
}

func (s *ObservedStore) Get(ctx context.Context, path string) (interface{}, error) {
	return s.store.Get(ctx, path)
}

func (s *ObservedStore) Set(ctx context.Context, path string, value interface{}) error {
	return s.write(ctx, []string{path}, func() error {
		return s.store.Set(ctx, path, value)
	})
}

func (s *ObservedStore) Update(ctx context.Context, updates map[string]interface{}) error {
	paths := make([]string, 0, len(updates))
	for path := range updates {
		paths = append(paths, path)
	}
	return s.write(ctx, paths, func() error {
		return s.store.Update(ctx, updates)
	})
}

// scope is a subtree read before and after a write. Nodes are found by
// walking the remaining template segments below base.
type scope struct {
	base      string
	remaining []string
}

func (s *ObservedStore) write(ctx context.Context, paths []string, apply func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scopes := s.scopes(paths)
	if len(scopes) == 0 {
		return apply()
	}

	before := make([]interface{}, len(scopes))
	for i, sc := range scopes {
		value, err := s.store.Get(ctx, sc.base)
		if err != nil {
			return err
		}
		before[i] = value
	}

	if err := apply(); err != nil {
		return err
	}

	published := make(map[string]bool)
	for i, sc := range scopes {
		after, err := s.store.Get(ctx, sc.base)
		if err != nil {
			return err
		}

		nodes := make(map[string]bool)
		collect(before[i], sc.remaining, nil, nodes)
		collect(after, sc.remaining, nil, nodes)

		for rel := range nodes {
			path := utils.JoinPath(sc.base, rel)
			if published[path] {
				continue
			}
			published[path] = true

			relSegs := utils.SplitPath(rel)
			b := utils.Child(before[i], relSegs)
			a := utils.Child(after, relSegs)
			if reflect.DeepEqual(b, a) {
				continue
			}
			s.dispatcher.Publish(ctx, Change{Path: path, Before: b, After: a})
		}
	}
	return nil
}

// scopes lists, per written path and registered template, the subtree that
// holds every template node the write can affect.
func (s *ObservedStore) scopes(paths []string) []scope {
	if s.dispatcher == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []scope
	for _, path := range paths {
		segs := utils.SplitPath(path)
		for _, template := range s.dispatcher.templates() {
			sc, ok := scopeFor(template, segs)
			if !ok {
				continue
			}
			key := sc.base + "|" + strings.Join(sc.remaining, "/")
			if !seen[key] {
				seen[key] = true
				out = append(out, sc)
			}
		}
	}
	return out
}

func scopeFor(template, segs []string) (scope, bool) {
	n := len(template)
	if len(segs) >= n {
		if _, ok := matchTemplate(template, segs[:n]); !ok {
			return scope{}, false
		}
		return scope{base: strings.Join(segs[:n], "/")}, true
	}
	if _, ok := matchTemplate(template[:len(segs)], segs); !ok {
		return scope{}, false
	}
	return scope{base: strings.Join(segs, "/"), remaining: template[len(segs):]}, true
}

// collect adds the relative path of every node reached by walking remaining
// template segments through value.
func collect(value interface{}, remaining []string, prefix []string, out map[string]bool) {
	if len(remaining) == 0 {
		if value != nil {
			out[strings.Join(prefix, "/")] = true
		}
		return
	}

	part := remaining[0]
	_, capture := captureName(part)

	visit := func(key string, next interface{}) {
		if !capture && key != part {
			return
		}
		collect(next, remaining[1:], append(append([]string(nil), prefix...), key), out)
	}

	switch v := value.(type) {
	case map[string]interface{}:
		for key, next := range v {
			visit(key, next)
		}
	case []interface{}:
		for i, next := range v {
			visit(strconv.Itoa(i), next)
		}
	}
}
