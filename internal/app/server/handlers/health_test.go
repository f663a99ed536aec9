package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Health_Reports_Up(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	HandleHealth(w, r)

	req.Equal(http.StatusOK, w.Code)
	req.Equal("application/json", w.Header().Get("Content-Type"))

	var body HealthResponse
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Equal("UP", body.Status)
	req.False(body.Timestamp.IsZero())
}
