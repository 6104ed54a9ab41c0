package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func corsRequest(handler http.Handler, method, origin, requestMethod string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/shopping-list/items/a", nil)
	req.Header.Set("Origin", origin)
	if requestMethod != "" {
		req.Header.Set("Access-Control-Request-Method", requestMethod)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestCORS_PreflightAllowsRouteMethods(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := CORSMiddleware([]string{"https://app.example"}, false)(ok)

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		w := corsRequest(handler, http.MethodOptions, "https://app.example", method)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, method, w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	}

	w := corsRequest(handler, http.MethodOptions, "https://app.example", "TRACE")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Methods"))

	w = corsRequest(handler, http.MethodOptions, "https://evil.example", http.MethodPatch)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_ExposesExportAndQuotaHeaders(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := CORSMiddleware([]string{"https://app.example"}, false)(ok)

	w := corsRequest(handler, http.MethodGet, "https://app.example", "")
	exposed := w.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, "Content-Disposition")
	assert.Contains(t, exposed, "Retry-After")
}

func TestCORS_DevelopmentAllowsAnyOriginWithoutCredentials(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := CORSMiddleware(nil, true)(ok)

	w := corsRequest(handler, http.MethodOptions, "http://localhost:5173", http.MethodPatch)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_NoOriginsConfiguredIsSameOriginOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := CORSMiddleware(nil, false)(ok)

	w := corsRequest(handler, http.MethodGet, "https://app.example", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
