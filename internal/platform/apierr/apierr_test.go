package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/yungbote/atlas-backend/internal/pkg/errors"
)

func TestConstructorsWrapSentinels(t *testing.T) {
	nf := NotFound("mission_not_found", "week %d", 60)
	assert.Equal(t, http.StatusNotFound, nf.Status)
	assert.True(t, errors.Is(nf, apperr.ErrNotFound))
	assert.Equal(t, "week 60: not found", nf.Error())

	inv := Invalid("invalid_status", "status %q", "bogus")
	assert.Equal(t, http.StatusBadRequest, inv.Status)
	assert.True(t, errors.Is(inv, apperr.ErrInvalidArgument))

	c := Conflict("session_busy", "session")
	assert.Equal(t, http.StatusConflict, c.Status)
	assert.True(t, errors.Is(c, apperr.ErrConflict))
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Invalid("bad", "x"))
	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "bad", e.Code)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
