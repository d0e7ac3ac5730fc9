package adapters

import (
	"errors"
	"strings"

	"github.com/kndndrj/datasink/core"
)

var (
	errNoValidSchemes    = errors.New("no valid url schemes provided")
	ErrUnsupportedScheme = errors.New("no adapter registered for provided url scheme")
)

// registeredAdapters holds implemented adapters - specific adapters register
// themselves in their init functions. The main reason is to be able to
// compile the binary without unsupported os/arch of specific drivers.
var registeredAdapters = make(map[string]core.Adapter)

// register registers a new adapter under the given url schemes.
func register(adapter core.Adapter, schemes ...string) error {
	if len(schemes) < 1 {
		return errNoValidSchemes
	}

	invalidCount := 0
	for _, scheme := range schemes {
		if scheme == "" {
			invalidCount++
			continue
		}
		registeredAdapters[scheme] = adapter
	}

	if invalidCount == len(schemes) {
		return errNoValidSchemes
	}

	return nil
}

// Mux is an interface to all internal adapters.
type Mux struct{}

func (*Mux) GetAdapter(scheme string) (core.Adapter, error) {
	adapter, ok := registeredAdapters[scheme]
	if !ok {
		return nil, ErrUnsupportedScheme
	}

	return adapter, nil
}

func (*Mux) AddAdapter(scheme string, adapter core.Adapter) error {
	return register(adapter, scheme)
}

// Schemes lists the registered url schemes.
func (*Mux) Schemes() []string {
	schemes := make([]string, 0, len(registeredAdapters))
	for s := range registeredAdapters {
		schemes = append(schemes, s)
	}
	return schemes
}

// SplitURL splits a connection string of the form scheme://rest.
func SplitURL(url string) (scheme, rest string, err error) {
	scheme, rest, found := strings.Cut(url, "://")
	if !found || scheme == "" {
		return "", "", core.NewErrorf(core.ErrorInvalidArgument, "connection string %q has no scheme", url)
	}
	return scheme, rest, nil
}

// NewDriver connects to the backing store behind the url, choosing the
// adapter by url scheme.
func NewDriver(url string) (core.Driver, error) {
	scheme, _, err := SplitURL(url)
	if err != nil {
		return nil, err
	}

	adapter, err := new(Mux).GetAdapter(scheme)
	if err != nil {
		return nil, core.NewErrorf(core.ErrorInvalidArgument, "unsupported url scheme %q", scheme)
	}

	driver, err := adapter.Connect(url)
	if err != nil {
		return nil, core.WrapError(core.ErrorUnavailable, err)
	}

	return driver, nil
}
