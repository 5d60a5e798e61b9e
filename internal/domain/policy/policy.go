// Package policy decides whether an actor may read or write a datastore path.
//
// Rules are a static table keyed by (path shape, operation). Every entry is a
// pure predicate over the actor, the path captures, the current value at the
// node, the proposed value and read-only lookups into the current tree. Any
// path or operation without an entry is denied, and so is any evaluation whose
// tree lookups fail.
package policy

import (
	"strings"
	"time"

	"pairchat/pkg/utils"
)

type Operation int

const (
	OpRead Operation = iota
	OpCreate
	OpUpdate
	OpDelete
)

func (o Operation) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// OperationFor derives the write operation from the current and proposed node values.
func OperationFor(current, proposed interface{}) Operation {
	switch {
	case proposed == nil:
		return OpDelete
	case current == nil:
		return OpCreate
	default:
		return OpUpdate
	}
}

// Actor is an authenticated caller. A nil *Actor is an anonymous caller.
type Actor struct {
	ID string
}

type Request struct {
	Actor *Actor
	Op    Operation
	Path  string
	// Proposed is the complete value the node would hold after the write.
	Proposed interface{}
	Now      time.Time
}

type Predicate func(ev *Evaluation) bool

type ruleKey struct {
	shape string
	op    Operation
}

type shape struct {
	pattern string
	segs    []string
}

type Policy struct {
	shapes []shape
	table  map[ruleKey]Predicate
}

// New builds the policy from the default rule table.
func New() *Policy {
	return newPolicy(defaultRules)
}

func newPolicy(entries []rule) *Policy {
	p := &Policy{table: make(map[ruleKey]Predicate, len(entries))}
	seen := make(map[string]bool)
	for _, r := range entries {
		if !seen[r.shape] {
			seen[r.shape] = true
			p.shapes = append(p.shapes, shape{pattern: r.shape, segs: utils.SplitPath(r.shape)})
		}
		p.table[ruleKey{shape: r.shape, op: r.op}] = r.allow
	}
	return p
}

// Allow evaluates req against the rule table. Read grants cascade to
// descendants; write rules apply to the exact rule node only.
func (p *Policy) Allow(req Request, tree Tree) bool {
	segs := utils.SplitPath(req.Path)
	if len(segs) == 0 {
		return false
	}

	if req.Op == OpRead {
		for depth := 1; depth <= len(segs); depth++ {
			if p.evaluate(segs[:depth], req, tree) {
				return true
			}
		}
		return false
	}

	return p.evaluate(segs, req, tree)
}

// NodePath returns the deepest rule node at or above path. Writes below a rule
// node must be evaluated as a write of the whole node.
func (p *Policy) NodePath(path string) (string, bool) {
	segs := utils.SplitPath(path)
	for depth := len(segs); depth > 0; depth-- {
		if _, _, ok := p.match(segs[:depth]); ok {
			return strings.Join(segs[:depth], "/"), true
		}
	}
	return "", false
}

func (p *Policy) evaluate(segs []string, req Request, tree Tree) bool {
	sh, vars, ok := p.match(segs)
	if !ok {
		return false
	}

	allow := p.table[ruleKey{shape: sh.pattern, op: req.Op}]
	if allow == nil {
		return false
	}

	path := strings.Join(segs, "/")
	ev := &Evaluation{
		Actor:   req.Actor,
		Vars:    vars,
		Path:    path,
		NewData: req.Proposed,
		Now:     req.Now,
		tree:    tree,
	}
	ev.Data = ev.Lookup(path)
	if ev.err != nil {
		return false
	}

	return allow(ev) && ev.err == nil
}

func (p *Policy) match(segs []string) (shape, map[string]string, bool) {
	for _, sh := range p.shapes {
		if len(sh.segs) != len(segs) {
			continue
		}
		vars := make(map[string]string)
		matched := true
		for i, pattern := range sh.segs {
			if strings.HasPrefix(pattern, "$") {
				vars[pattern[1:]] = segs[i]
				continue
			}
			if pattern != segs[i] {
				matched = false
				break
			}
		}
		if matched {
			return sh, vars, true
		}
	}
	return shape{}, nil, false
}

// Evaluation is the context one predicate sees.
type Evaluation struct {
	Actor   *Actor
	Vars    map[string]string
	Path    string
	Data    interface{}
	NewData interface{}
	Now     time.Time

	tree Tree
	err  error
}

// Lookup reads the current value at path. A failed read poisons the evaluation.
func (ev *Evaluation) Lookup(path string) interface{} {
	if ev.err != nil || ev.tree == nil {
		return nil
	}
	value, err := ev.tree.Value(path)
	if err != nil {
		ev.err = err
		return nil
	}
	return value
}

func (ev *Evaluation) Exists(path string) bool {
	return ev.Lookup(path) != nil
}

func (ev *Evaluation) Authenticated() bool {
	return ev.Actor != nil && ev.Actor.ID != ""
}
