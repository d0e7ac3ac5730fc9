package mock

import (
	"context"

	"github.com/kndndrj/datasink/core"
)

type adapterConfig struct {
	columns      []core.Column
	rows         []core.Row
	affectedRows int64

	connectErr error
	execErr    error
	queryErr   error
	pingErr    error

	querySideEffects    map[string]func(context.Context) error
	resultStreamOptions []ResultStreamOption
}

func defaultAdapterConfig() *adapterConfig {
	return &adapterConfig{
		affectedRows:     1,
		querySideEffects: make(map[string]func(context.Context) error),
	}
}

type AdapterOption func(*adapterConfig)

// WithResult sets the columns and rows every query returns.
func WithResult(columns []core.Column, rows []core.Row) AdapterOption {
	return func(c *adapterConfig) {
		c.columns = columns
		c.rows = rows
	}
}

func WithAffectedRows(n int64) AdapterOption {
	return func(c *adapterConfig) {
		c.affectedRows = n
	}
}

func WithConnectError(err error) AdapterOption {
	return func(c *adapterConfig) {
		c.connectErr = err
	}
}

func WithExecError(err error) AdapterOption {
	return func(c *adapterConfig) {
		c.execErr = err
	}
}

func WithQueryError(err error) AdapterOption {
	return func(c *adapterConfig) {
		c.queryErr = err
	}
}

func WithPingError(err error) AdapterOption {
	return func(c *adapterConfig) {
		c.pingErr = err
	}
}

// WithQuerySideEffect runs fn whenever the given query text is executed.
func WithQuerySideEffect(query string, fn func(context.Context) error) AdapterOption {
	return func(c *adapterConfig) {
		c.querySideEffects[query] = fn
	}
}

func WithResultStreamOpts(opts ...ResultStreamOption) AdapterOption {
	return func(c *adapterConfig) {
		c.resultStreamOptions = opts
	}
}
