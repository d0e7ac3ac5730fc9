package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kndndrj/datasink/core"
)

func TestSplitURL(t *testing.T) {
	r := require.New(t)

	scheme, rest, err := SplitURL("postgres://user@host:5432/db")
	r.NoError(err)
	r.Equal("postgres", scheme)
	r.Equal("user@host:5432/db", rest)

	_, _, err = SplitURL("no-scheme-here")
	r.Error(err)
	r.Equal(core.ErrorInvalidArgument, core.KindOf(err))

	_, _, err = SplitURL("://empty-scheme")
	r.Error(err)
}

func TestNewDriverUnsupportedScheme(t *testing.T) {
	r := require.New(t)

	_, err := NewDriver("carrier-pigeon://coop")
	r.Error(err)
	r.Equal(core.ErrorInvalidArgument, core.KindOf(err))
}

func TestMuxSchemes(t *testing.T) {
	r := require.New(t)

	mux := new(Mux)
	schemes := mux.Schemes()
	r.Contains(schemes, "mysql")
	r.Contains(schemes, "postgres")

	adapter, err := mux.GetAdapter("mysql")
	r.NoError(err)
	r.NotNil(adapter)

	_, err = mux.GetAdapter("carrier-pigeon")
	r.ErrorIs(err, ErrUnsupportedScheme)
}
