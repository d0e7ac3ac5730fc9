package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kndndrj/datasink/core"
	"github.com/kndndrj/datasink/registry"
	"github.com/kndndrj/datasink/schema"
	"github.com/kndndrj/datasink/server"
	"github.com/kndndrj/datasink/service"
)

// databaseFlags collects repeated -db name=url pairs.
type databaseFlags struct {
	entries []databaseEntry
}

type databaseEntry struct {
	name string
	url  string
}

func (f *databaseFlags) String() string {
	parts := make([]string, len(f.entries))
	for i, e := range f.entries {
		parts[i] = e.name + "=" + e.url
	}
	return strings.Join(parts, ",")
}

func (f *databaseFlags) Set(value string) error {
	name, url, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected name=url, got %q", value)
	}
	f.entries = append(f.entries, databaseEntry{name: name, url: url})
	return nil
}

func runServe(ctx context.Context, args []string, log *logrus.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var (
		bind       = fs.String("bind", "127.0.0.1:50051", "listen address")
		defaultURL = fs.String("database-url", envOr("DATABASE_URL", defaultDatabaseURL), "url of the default database")
		schemaFile = fs.String("schema", "", "schema file to apply to the default database on startup")
		databases  databaseFlags
	)
	fs.Var(&databases, "db", "extra database as name=url, repeatable")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := registry.New(registry.WithLogger(log))
	defer reg.Close()

	url := normalizeServeURL(*defaultURL)
	if err := reg.Add(ctx, registry.DefaultDatabaseName, url); err != nil {
		return fmt.Errorf("connect default database: %w", err)
	}
	for _, entry := range databases.entries {
		if err := reg.Add(ctx, entry.name, entry.url); err != nil {
			return fmt.Errorf("connect database %q: %w", entry.name, err)
		}
	}

	if *schemaFile != "" {
		loaded, err := schema.Load(*schemaFile)
		if err != nil {
			return err
		}
		handle, _ := reg.Get(registry.DefaultDatabaseName)
		err = handle.Exclusive(func(driver core.Driver) error {
			return schema.Apply(ctx, driver, loaded, log)
		})
		if err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	svc := service.New(reg, log)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Serve(ctx, *bind, svc, log)
	})

	return group.Wait()
}

// normalizeServeURL appends create mode to sqlite urls without options,
// so a fresh server run creates its database file.
func normalizeServeURL(url string) string {
	if strings.HasPrefix(url, "sqlite://") && !strings.Contains(url, "?") {
		return url + "?mode=rwc"
	}
	return url
}
