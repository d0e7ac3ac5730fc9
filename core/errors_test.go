package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kndndrj/datasink/core"
)

func TestKindOf(t *testing.T) {
	r := require.New(t)

	err := core.NewError(core.ErrorNotFound, "gone")
	r.Equal(core.ErrorNotFound, core.KindOf(err))

	// wrapping keeps the kind visible
	wrapped := fmt.Errorf("while deleting: %w", err)
	r.Equal(core.ErrorNotFound, core.KindOf(wrapped))

	// plain errors are internal
	r.Equal(core.ErrorInternal, core.KindOf(errors.New("boom")))
	r.Equal(core.ErrorInternal, core.KindOf(nil))
}

func TestWrapErrorKeepsClassification(t *testing.T) {
	r := require.New(t)

	classified := core.NewError(core.ErrorAlreadyExists, "duplicate")

	// an already classified cause is not reclassified
	wrapped := core.WrapError(core.ErrorInternal, classified)
	r.Equal(core.ErrorAlreadyExists, core.KindOf(wrapped))

	// an unclassified cause takes the new kind
	wrapped = core.WrapError(core.ErrorUnavailable, errors.New("refused"))
	r.Equal(core.ErrorUnavailable, core.KindOf(wrapped))
	r.ErrorContains(wrapped, "refused")
}
