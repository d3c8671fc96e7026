package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// newRequest builds a request as an authenticated user (userID > 0) with route vars set
func newRequest(t *testing.T, method, target string, body string, userID int64, vars map[string]string) *http.Request {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	if userID > 0 {
		req = req.WithContext(WithUserID(req.Context(), userID))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

// decodeBody parses the JSON envelope of a recorded response
func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}
