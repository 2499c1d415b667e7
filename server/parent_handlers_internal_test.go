package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParentHomeHandler_WithoutSessionKeepsQuery(t *testing.T) {
	pages, err := parsePages()
	require.NoError(t, err)

	s := &Server{}
	rec := httptest.NewRecorder()
	s.ParentHomeHandler(pages)(rec, httptest.NewRequest(http.MethodGet, "/parent?child=42", nil))

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/sign-in?child=42", rec.Header().Get("Location"))
}
