// Package state holds the generic containers every domain store is built
// from: a cached list (or record), a primary loading/error pair for
// fetches, and independent named statuses for secondary operations that
// may be in flight at the same time.
package state

import (
	"sync"

	"github.com/ashraf950/timesheet-client/internal"
)

// Failure is what a container remembers about a failed operation.
type Failure struct {
	Type    internal.ErrorType `json:"type"`
	Message string             `json:"message"`
}

// FailureFrom converts err into a Failure, using fallback when neither a
// feature-pending note nor a backend message is available.
func FailureFrom(err error, fallback string) Failure {
	f := Failure{Type: internal.ErrorTypeInternal, Message: internal.Describe(err, fallback)}
	if appErr, ok := internal.IsAppError(err); ok {
		f.Type = appErr.Type
	}
	return f
}

type Status struct {
	Loading bool     `json:"loading"`
	Error   *Failure `json:"error"`
}

func (s Status) Idle() bool {
	return !s.Loading
}

// Keyed is implemented by entities addressable by backend id.
type Keyed interface {
	Key() string
}

// Snapshot is an immutable copy of a collection handed to readers.
type Snapshot[T any] struct {
	Items  []T               `json:"items"`
	Status Status            `json:"status"`
	Ops    map[string]Status `json:"ops,omitempty"`
}

// Op returns the status of a named secondary operation.
func (s Snapshot[T]) Op(name string) Status {
	return s.Ops[name]
}

// Collection is a cached list plus the status of its fetch and of each
// named secondary operation. The zero value is not usable; use
// NewCollection.
type Collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	status Status
	ops    map[string]*Status
}

func NewCollection[T any](ops ...string) *Collection[T] {
	c := &Collection[T]{
		items: make([]T, 0),
		ops:   make(map[string]*Status, len(ops)),
	}
	for _, op := range ops {
		c.ops[op] = &Status{}
	}
	return c
}

// Begin marks the primary operation in flight and clears its error.
func (c *Collection[T]) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Loading = true
	c.status.Error = nil
}

// Replace ends a successful fetch with a fresh list. Overlapping fetches
// are not cancelled; whichever resolves last wins.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Loading = false
	c.items = cloneOrEmpty(items)
}

// Fail ends a failed fetch. Cached items are dropped so a stale list is
// never shown next to an error.
func (c *Collection[T]) Fail(f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Loading = false
	c.status.Error = &f
	c.items = make([]T, 0)
}

// Apply ends a successful primary mutation by transforming the items.
func (c *Collection[T]) Apply(fn func([]T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Loading = false
	c.items = cloneOrEmpty(fn(c.items))
}

// Reject ends a failed primary mutation; unlike Fail it keeps the items.
func (c *Collection[T]) Reject(f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Loading = false
	c.status.Error = &f
}

func (c *Collection[T]) BeginOp(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	op := c.op(name)
	op.Loading = true
	op.Error = nil
}

// CompleteOp ends a secondary operation. fn may be nil when the
// operation does not touch the list.
func (c *Collection[T]) CompleteOp(name string, fn func([]T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.op(name).Loading = false
	if fn != nil {
		c.items = cloneOrEmpty(fn(c.items))
	}
}

func (c *Collection[T]) FailOp(name string, f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	op := c.op(name)
	op.Loading = false
	op.Error = &f
}

func (c *Collection[T]) ClearErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.Error = nil
	for _, op := range c.ops {
		op.Error = nil
	}
}

func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneOrEmpty(c.items)
}

func (c *Collection[T]) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ops := make(map[string]Status, len(c.ops))
	for name, op := range c.ops {
		ops[name] = *op
	}
	return Snapshot[T]{
		Items:  cloneOrEmpty(c.items),
		Status: c.status,
		Ops:    ops,
	}
}

func (c *Collection[T]) op(name string) *Status {
	op, ok := c.ops[name]
	if !ok {
		op = &Status{}
		c.ops[name] = op
	}
	return op
}

func cloneOrEmpty[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// Append returns a transform that adds item at the end.
func Append[T any](item T) func([]T) []T {
	return func(items []T) []T {
		return append(items, item)
	}
}

// ReplaceByKey returns a transform that swaps the element sharing item's
// key. Unknown keys leave the list untouched.
func ReplaceByKey[T Keyed](item T) func([]T) []T {
	return func(items []T) []T {
		for i := range items {
			if items[i].Key() == item.Key() {
				items[i] = item
				break
			}
		}
		return items
	}
}

// RemoveByKey returns a transform that drops every element with key.
func RemoveByKey[T Keyed](key string) func([]T) []T {
	return func(items []T) []T {
		out := items[:0]
		for _, it := range items {
			if it.Key() != key {
				out = append(out, it)
			}
		}
		return out
	}
}

// Find returns the first element with key.
func Find[T Keyed](items []T, key string) (T, bool) {
	for _, it := range items {
		if it.Key() == key {
			return it, true
		}
	}
	var zero T
	return zero, false
}
