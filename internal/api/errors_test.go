package api

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorResponse(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("boom")

	e := NewErrorResponse(http.StatusBadRequest, "Bad input", cause)
	require.Equal(t, http.StatusBadRequest, e.GetStatus())
	require.EqualError(t, e, "Bad input")
	require.ErrorIs(t, e, cause)

	bare := NewErrorResponse(http.StatusNotFound, "Nope")
	require.NoError(t, bare.Unwrap())
}
