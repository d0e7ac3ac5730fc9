package mock

import (
	"errors"
	"fmt"
	"time"

	"github.com/kndndrj/datasink/core"
)

type resultStreamConfig struct {
	nextSleep time.Duration
	failAfter int
	failWith  error
}

type ResultStreamOption func(*resultStreamConfig)

// ResultStreamWithNextSleep makes every Next call take at least the given
// duration.
func ResultStreamWithNextSleep(d time.Duration) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.nextSleep = d
	}
}

// ResultStreamWithFailAfter makes the stream fail with err after n
// successfully delivered rows.
func ResultStreamWithFailAfter(n int, err error) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.failAfter = n
		c.failWith = err
	}
}

type ResultStream struct {
	columns   []core.Column
	rows      []core.Row
	index     int
	delivered int
	config    *resultStreamConfig
}

// NewResultStream returns a mocked result stream with the provided rows.
// When no columns are given, a header matching the width of the first row
// is generated in the form column_0, column_1, ...
func NewResultStream(columns []core.Column, rows []core.Row, opts ...ResultStreamOption) *ResultStream {
	config := &resultStreamConfig{failAfter: -1}
	for _, opt := range opts {
		opt(config)
	}

	if columns == nil && len(rows) > 0 {
		for i := range rows[0] {
			columns = append(columns, core.Column{
				Name: fmt.Sprintf("column_%d", i),
				Type: core.ColumnTypeText,
			})
		}
	}

	return &ResultStream{
		columns: columns,
		rows:    rows,
		config:  config,
	}
}

func (rs *ResultStream) Columns() []core.Column {
	return rs.columns
}

func (rs *ResultStream) HasNext() bool {
	if rs.config.failAfter >= 0 && rs.delivered >= rs.config.failAfter {
		return true
	}
	return rs.index < len(rs.rows)
}

func (rs *ResultStream) Next() (core.Row, error) {
	time.Sleep(rs.config.nextSleep)

	if rs.config.failAfter >= 0 && rs.delivered >= rs.config.failAfter {
		return nil, rs.config.failWith
	}
	if rs.index >= len(rs.rows) {
		return nil, errors.New("no next row")
	}

	row := rs.rows[rs.index]
	rs.index++
	rs.delivered++
	return row, nil
}

func (rs *ResultStream) Close() {}

// NewRows returns rows in the form { <index>, "row_<index>" } for indexes
// in [from, to).
func NewRows(from, to int) []core.Row {
	var rows []core.Row

	for i := from; i < to; i++ {
		rows = append(rows, core.Row{
			core.IntegerValue(int64(i)),
			core.TextValue(fmt.Sprintf("row_%d", i)),
		})
	}
	return rows
}
