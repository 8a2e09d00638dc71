package normalize

import (
	"fmt"
	"strings"

	"pos-taskbridge/internal/models"
)

// State is the outcome of a resolution
type State int

const (
	// Absent means no strategy produced a usable value
	Absent State = iota
	// Found means Value holds the first usable value
	Found
	// Failed means no value was found and at least one strategy faulted
	Failed
)

func (s State) String() string {
	switch s {
	case Found:
		return "found"
	case Failed:
		return "failed"
	default:
		return "absent"
	}
}

// Result is the tri-state answer of a resolution
type Result struct {
	State  State
	Value  any
	Source string
	Err    error
}

// Ok reports whether a value was found
func (r Result) Ok() bool {
	return r.State == Found
}

// Text returns the found value as trimmed text
func (r Result) Text() (string, bool) {
	if !r.Ok() {
		return "", false
	}
	return toText(r.Value)
}

// Record returns the found value as a Record
func (r Result) Record() (Record, bool) {
	if !r.Ok() {
		return nil, false
	}
	return AsRecord(r.Value)
}

// StrategyKind selects how a strategy reads a record
type StrategyKind int

const (
	AccessorStrategy StrategyKind = iota
	PropertyStrategy
	NestedStrategy
)

// Strategy is one named way of reading a field
type Strategy struct {
	Kind StrategyKind
	Path []string
}

// Accessor calls the named accessor
func Accessor(name string) Strategy {
	return Strategy{Kind: AccessorStrategy, Path: []string{name}}
}

// Property reads the named property
func Property(name string) Strategy {
	return Strategy{Kind: PropertyStrategy, Path: []string{name}}
}

// Nested walks properties through intermediate records
func Nested(path ...string) Strategy {
	return Strategy{Kind: NestedStrategy, Path: path}
}

func (s Strategy) String() string {
	switch s.Kind {
	case AccessorStrategy:
		return s.Path[0] + "()"
	default:
		return strings.Join(s.Path, ".")
	}
}

// Chain is an ordered fallback list of strategies
type Chain []Strategy

// Then returns a new chain with more strategies appended
func (c Chain) Then(more ...Strategy) Chain {
	out := make(Chain, 0, len(c)+len(more))
	out = append(out, c...)
	return append(out, more...)
}

// Properties builds a chain of plain property reads
func Properties(names ...string) Chain {
	c := make(Chain, 0, len(names))
	for _, n := range names {
		c = append(c, Property(n))
	}
	return c
}

// Diagnostics receives fault events raised during extraction
type Diagnostics interface {
	Debug(action, message, requestID string, fields map[string]any)
}

type noDiagnostics struct{}

func (noDiagnostics) Debug(string, string, string, map[string]any) {}

// Resolver runs fallback chains against records
type Resolver struct {
	diag Diagnostics
}

// NewResolver creates a resolver reporting faults to diag (may be nil)
func NewResolver(diag Diagnostics) *Resolver {
	if diag == nil {
		diag = noDiagnostics{}
	}
	return &Resolver{diag: diag}
}

// Resolve returns the first non-empty value produced by chain
func (r *Resolver) Resolve(rec Record, chain Chain) Result {
	return r.ResolveWith(rec, chain, nil)
}

// ResolveWith is Resolve with an extra acceptance predicate on candidates
func (r *Resolver) ResolveWith(rec Record, chain Chain, accept func(any) bool) Result {
	if rec == nil {
		return Result{State: Absent}
	}

	var fault error
	for _, s := range chain {
		v, err := r.try(rec, s)
		if err != nil {
			fault = &models.ExtractionFault{Field: strings.Join(s.Path, "."), Source: s.String(), Err: err}
			r.diag.Debug("field_resolution_fault", "Strategy failed, trying next candidate", "", map[string]any{
				"strategy": s.String(),
				"error":    err.Error(),
			})
			continue
		}
		if isEmpty(v) {
			continue
		}
		if accept != nil && !accept(v) {
			continue
		}
		return Result{State: Found, Value: v, Source: s.String()}
	}

	if fault != nil {
		return Result{State: Failed, Err: fault}
	}
	return Result{State: Absent}
}

func (r *Resolver) try(rec Record, s Strategy) (value any, err error) {
	defer func() {
		if p := recover(); p != nil {
			value = nil
			err = fmt.Errorf("panic in %s: %v", s, p)
		}
	}()

	if len(s.Path) == 0 {
		return nil, nil
	}

	switch s.Kind {
	case AccessorStrategy:
		v, present, callErr := rec.Call(s.Path[0])
		if !present {
			return nil, nil
		}
		return v, callErr
	case PropertyStrategy:
		v, _ := rec.Field(s.Path[0])
		return v, nil
	case NestedStrategy:
		cur := rec
		for i, name := range s.Path {
			v, ok := cur.Field(name)
			if !ok {
				return nil, nil
			}
			if i == len(s.Path)-1 {
				return v, nil
			}
			next, ok := AsRecord(v)
			if !ok {
				return nil, nil
			}
			cur = next
		}
	}
	return nil, nil
}
