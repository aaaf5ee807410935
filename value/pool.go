package value

import "github.com/cloudcmds/lox/errz"

// Pool is an append-only, insertion-ordered sequence of values. Identical
// values occupy separate slots; the pool never deduplicates.
//
// A Pool is not safe for concurrent mutation. Indexes are only meaningful
// relative to the pool that returned them.
type Pool struct {
	values []Value
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Append adds v to the end of the pool and returns its index.
func (p *Pool) Append(v Value) int {
	p.values = append(p.values, v)
	return len(p.values) - 1
}

// At returns the value at index. An index outside [0, Len()) yields a
// bounds error.
func (p *Pool) At(index int) (Value, error) {
	if index < 0 || index >= len(p.values) {
		return Value{}, errz.Bounds("value.Pool.At", "index", index, len(p.values))
	}
	return p.values[index], nil
}

// MustAt is like At but panics on an out-of-range index.
func (p *Pool) MustAt(index int) Value {
	v, err := p.At(index)
	if err != nil {
		panic(err)
	}
	return v
}

// Len returns the number of values in the pool.
func (p *Pool) Len() int {
	return len(p.values)
}

// All returns a copy of the pool contents.
func (p *Pool) All() []Value {
	if len(p.values) == 0 {
		return nil
	}
	out := make([]Value, len(p.values))
	copy(out, p.values)
	return out
}

// Reset releases the pool storage. Calling it more than once is harmless.
func (p *Pool) Reset() {
	p.values = nil
}
