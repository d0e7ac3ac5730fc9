package builders

import (
	"errors"

	"github.com/kndndrj/datasink/core"
)

// Result fills core.ResultStream for all sql backends.
type Result struct {
	next    func() (core.Row, error)
	hasNext func() bool
	close   func()
	columns []core.Column
}

func (r *Result) Columns() []core.Column {
	return r.columns
}

func (r *Result) HasNext() bool {
	return r.hasNext()
}

func (r *Result) Next() (core.Row, error) {
	row, err := r.next()
	if err != nil || row == nil {
		r.Close()
		return nil, err
	}
	return row, nil
}

func (r *Result) Close() {
	r.close()
	r.hasNext = func() bool {
		return false
	}
}

// ResultBuilder builds the result stream.
type ResultBuilder struct {
	next    func() (core.Row, error)
	hasNext func() bool
	columns []core.Column
	close   func()
}

func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{
		next:    func() (core.Row, error) { return nil, errors.New("no next row") },
		hasNext: func() bool { return false },
		close:   func() {},
	}
}

func (b *ResultBuilder) WithNextFunc(fn func() (core.Row, error), has func() bool) *ResultBuilder {
	b.next = fn
	b.hasNext = has
	return b
}

func (b *ResultBuilder) WithColumns(columns ...core.Column) *ResultBuilder {
	b.columns = columns
	return b
}

func (b *ResultBuilder) WithCloseFunc(fn func()) *ResultBuilder {
	b.close = fn
	return b
}

func (b *ResultBuilder) Build() *Result {
	return &Result{
		next:    b.next,
		hasNext: b.hasNext,
		columns: b.columns,
		close:   b.close,
	}
}
