package testhelpers

import (
	"context"

	tc "github.com/testcontainers/testcontainers-go"
	tcpsql "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/kndndrj/datasink/adapters"
	"github.com/kndndrj/datasink/core"
)

type PostgresContainer struct {
	*tcpsql.PostgresContainer
	ConnURL string
	Driver  core.Driver
}

// NewPostgresContainer starts a postgres container and opens a driver on it.
func NewPostgresContainer(ctx context.Context) (*PostgresContainer, error) {
	ctr, err := tcpsql.Run(
		ctx,
		"postgres:16-alpine",
		tcpsql.BasicWaitStrategies(),
		tc.CustomizeRequest(tc.GenericContainerRequest{
			ProviderType: GetContainerProvider(),
		}),
		tcpsql.WithDatabase("dev"),
	)
	if err != nil {
		return nil, err
	}

	connURL, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, err
	}

	driver, err := adapters.NewDriver(connURL)
	if err != nil {
		return nil, err
	}

	return &PostgresContainer{
		PostgresContainer: ctr,
		ConnURL:           connURL,
		Driver:            driver,
	}, nil
}

// NewDriver opens an additional driver on the running container.
func (p *PostgresContainer) NewDriver() (core.Driver, error) {
	return adapters.NewDriver(p.ConnURL)
}
