package state

import "sync"

// Record is the single-value counterpart of Collection, used for the
// dashboard summary and similar one-object caches.
type Record[T any] struct {
	mu     sync.RWMutex
	value  T
	status Status
	ops    map[string]*Status
}

type RecordSnapshot[T any] struct {
	Value  T                 `json:"value"`
	Status Status            `json:"status"`
	Ops    map[string]Status `json:"ops,omitempty"`
}

func (s RecordSnapshot[T]) Op(name string) Status {
	return s.Ops[name]
}

func NewRecord[T any](initial T, ops ...string) *Record[T] {
	r := &Record[T]{
		value: initial,
		ops:   make(map[string]*Status, len(ops)),
	}
	for _, op := range ops {
		r.ops[op] = &Status{}
	}
	return r
}

func (r *Record[T]) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Loading = true
	r.status.Error = nil
}

func (r *Record[T]) Set(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Loading = false
	r.value = value
}

// Fail records the error and keeps the previous value; a record always
// holds something renderable (its initial value at worst).
func (r *Record[T]) Fail(f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Loading = false
	r.status.Error = &f
}

func (r *Record[T]) BeginOp(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op := r.op(name)
	op.Loading = true
	op.Error = nil
}

func (r *Record[T]) CompleteOp(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.op(name).Loading = false
}

func (r *Record[T]) FailOp(name string, f Failure) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op := r.op(name)
	op.Loading = false
	op.Error = &f
}

func (r *Record[T]) ClearErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status.Error = nil
	for _, op := range r.ops {
		op.Error = nil
	}
}

func (r *Record[T]) Value() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

func (r *Record[T]) Snapshot() RecordSnapshot[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ops := make(map[string]Status, len(r.ops))
	for name, op := range r.ops {
		ops[name] = *op
	}
	return RecordSnapshot[T]{Value: r.value, Status: r.status, Ops: ops}
}

func (r *Record[T]) op(name string) *Status {
	op, ok := r.ops[name]
	if !ok {
		op = &Status{}
		r.ops[name] = op
	}
	return op
}
