package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	assert.Equal(t, "upstream_lookup", Kind(ErrUpstreamLookup))
	assert.Equal(t, "persistence", Kind(fmt.Errorf("%w: disk full", ErrPersistence)))
	assert.Equal(t, "notification", Kind(fmt.Errorf("wrap: %w", ErrNotification)))
	assert.Equal(t, "malformed_event", Kind(ErrMalformedEvent))
	assert.Equal(t, "unknown", Kind(errors.New("something else")))
	assert.Equal(t, "unknown", Kind(nil))
}
