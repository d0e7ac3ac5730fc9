package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/kndndrj/datasink/adapters"
	"github.com/kndndrj/datasink/core"
)

// DefaultDatabaseName is the registry name that always wins default
// resolution.
const DefaultDatabaseName = "default"

// record is one live backing-store connection. Owned exclusively by the
// Registry; the capability is only ever reached through a Handle.
type record struct {
	name           string
	url            string
	connected      bool
	connectionTime time.Time

	driver core.Driver
	// capMu guards every use of driver. Shared for liveness probes,
	// exclusive for dispatched operations.
	capMu sync.RWMutex

	cancelHealth context.CancelFunc
}

// Summary is the caller-visible state of one record.
type Summary struct {
	Name           string
	URL            string
	Connected      bool
	ConnectionTime time.Time
	// ActiveConnections is a placeholder: one per registered record.
	ActiveConnections int
}

// Handle is a time-bounded reference to a record's capability. Holding a
// handle never blocks registry metadata operations.
type Handle struct {
	rec *record
}

func (h *Handle) Name() string { return h.rec.name }

// Exclusive runs fn with the capability lock held exclusively for the whole
// call. Query streams are driven entirely inside fn, so a slow consumer
// blocks other operations on this one connection until done.
func (h *Handle) Exclusive(fn func(core.Driver) error) error {
	h.rec.capMu.Lock()
	defer h.rec.capMu.Unlock()

	return fn(h.rec.driver)
}

// Shared runs fn with the capability lock held in read mode.
func (h *Handle) Shared(fn func(core.Driver) error) error {
	h.rec.capMu.RLock()
	defer h.rec.capMu.RUnlock()

	return fn(h.rec.driver)
}

// TryShared is Shared that gives up instead of queueing behind a held
// exclusive lock. Reports whether fn ran.
func (h *Handle) TryShared(fn func(core.Driver) error) (bool, error) {
	if !h.rec.capMu.TryRLock() {
		return false, nil
	}
	defer h.rec.capMu.RUnlock()

	return true, fn(h.rec.driver)
}

type Registry struct {
	// mu guards the records map and record metadata. Many readers, rare
	// writers.
	mu      sync.RWMutex
	records map[string]*record

	connect        func(url string) (core.Driver, error)
	healthInterval time.Duration
	log            *logrus.Logger

	baseCtx   context.Context
	baseStop  context.CancelFunc
	healthWG  sync.WaitGroup
	closeOnce sync.Once
}

type Option func(*Registry)

// WithConnector overrides how connection strings become drivers.
func WithConnector(fn func(url string) (core.Driver, error)) Option {
	return func(r *Registry) {
		r.connect = fn
	}
}

// WithHealthInterval sets the period of the per-connection liveness probe.
// Zero disables the probe entirely.
func WithHealthInterval(d time.Duration) Option {
	return func(r *Registry) {
		r.healthInterval = d
	}
}

func WithLogger(log *logrus.Logger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

func New(opts ...Option) *Registry {
	ctx, stop := context.WithCancel(context.Background())

	r := &Registry{
		records:        make(map[string]*record),
		connect:        adapters.NewDriver,
		healthInterval: 30 * time.Second,
		log:            logrus.StandardLogger(),
		baseCtx:        ctx,
		baseStop:       stop,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Add connects to url and registers the connection under name. Adding an
// already registered name is a no-op success and never reconnects. The
// record is only inserted once the connect attempt and liveness probe
// succeed; a failure leaves no partial record behind.
func (r *Registry) Add(ctx context.Context, name, url string) error {
	if name == "" {
		return core.NewError(core.ErrorInvalidArgument, "database name cannot be empty")
	}

	r.mu.RLock()
	_, exists := r.records[name]
	r.mu.RUnlock()
	if exists {
		return nil
	}

	// connect outside the registry lock so readers stay unblocked
	driver, err := r.connect(url)
	if err != nil {
		return core.WrapError(core.ErrorUnavailable, err)
	}

	if err := probe(ctx, driver); err != nil {
		_ = driver.Close()
		return core.WrapError(core.ErrorUnavailable, fmt.Errorf("liveness probe: %w", err))
	}

	rec := &record{
		name:           name,
		url:            url,
		connected:      true,
		connectionTime: time.Now(),
		driver:         driver,
	}

	// the health check starts before the record is visible so Remove can
	// never observe a half-initialized cancel func
	r.startHealthCheck(rec)

	r.mu.Lock()
	if _, exists := r.records[name]; exists {
		// lost the race to a concurrent Add for the same name
		r.mu.Unlock()
		if rec.cancelHealth != nil {
			rec.cancelHealth()
		}
		_ = driver.Close()
		return nil
	}
	r.records[name] = rec
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{"database": name, "url": url}).Info("database connection registered")
	return nil
}

// probe retries the first ping a few times; sql.Open alone does not touch
// the network for most drivers.
func probe(ctx context.Context, driver core.Driver) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	return backoff.Retry(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return driver.Ping(pingCtx)
	}, policy)
}

// Get returns a handle to the named record.
func (r *Registry) Get(name string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[name]
	if !ok {
		return nil, false
	}
	return &Handle{rec: rec}, true
}

// GetOrDefault resolves an empty name through DefaultName.
func (r *Registry) GetOrDefault(name string) (*Handle, bool) {
	if name != "" {
		return r.Get(name)
	}

	r.mu.RLock()
	names := make([]string, 0, len(r.records))
	for n := range r.records {
		names = append(names, n)
	}
	r.mu.RUnlock()

	resolved := DefaultName(names)
	if resolved == "" {
		return nil, false
	}
	return r.Get(resolved)
}

// DefaultName picks the default connection from the registered names: a
// record literally named "default" wins, otherwise the sole record if
// exactly one exists. With several records and none named "default" there
// is no default - callers must name their target.
func DefaultName(names []string) string {
	for _, n := range names {
		if n == DefaultDatabaseName {
			return n
		}
	}
	if len(names) == 1 {
		return names[0]
	}
	return ""
}

// List returns a summary of every record.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]Summary, 0, len(r.records))
	for _, rec := range r.records {
		summaries = append(summaries, Summary{
			Name:              rec.name,
			URL:               rec.url,
			Connected:         rec.connected,
			ConnectionTime:    rec.connectionTime,
			ActiveConnections: 1,
		})
	}
	return summaries
}

// Remove deregisters name and closes its connection. Reports whether the
// record existed; removing an unknown name is not an error.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	rec, ok := r.records[name]
	if ok {
		delete(r.records, name)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}

	if rec.cancelHealth != nil {
		rec.cancelHealth()
	}

	// wait out in-flight operations without blocking the caller
	go func() {
		rec.capMu.Lock()
		defer rec.capMu.Unlock()
		_ = rec.driver.Close()
	}()

	r.log.WithField("database", name).Info("database connection removed")
	return true
}

// Count returns the number of registered records.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records)
}

// Close removes every record and stops all health checks.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		r.baseStop()

		r.mu.Lock()
		records := r.records
		r.records = make(map[string]*record)
		r.mu.Unlock()

		for _, rec := range records {
			rec.capMu.Lock()
			_ = rec.driver.Close()
			rec.capMu.Unlock()
		}

		r.healthWG.Wait()
	})
}

// startHealthCheck spawns the cancellable periodic liveness probe for one
// record. The probe takes the capability lock in shared mode and skips the
// round entirely when an exclusive operation is running.
func (r *Registry) startHealthCheck(rec *record) {
	if r.healthInterval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(r.baseCtx)
	rec.cancelHealth = cancel

	h := &Handle{rec: rec}

	r.healthWG.Add(1)
	go func() {
		defer r.healthWG.Done()

		ticker := time.NewTicker(r.healthInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			var pingErr error
			ran, _ := h.TryShared(func(driver core.Driver) error {
				pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				defer cancel()
				pingErr = driver.Ping(pingCtx)
				return nil
			})
			if !ran {
				// connection busy; a running operation is proof of life
				continue
			}

			r.setConnected(rec.name, pingErr == nil)
			if pingErr != nil {
				r.log.WithFields(logrus.Fields{"database": rec.name, "error": pingErr}).Warn("health check failed")
			}
		}
	}()
}

func (r *Registry) setConnected(name string, connected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.records[name]; ok {
		rec.connected = connected
	}
}
