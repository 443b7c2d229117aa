package httputil_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/partner-console/internal/pkg/httputil"
)

func TestJSONHelpers(t *testing.T) {
	w := httptest.NewRecorder()
	httputil.Conflict(w, "empty_recipient_set", "no recipients selected")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "empty_recipient_set", body.Code)
}

func TestInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	httputil.InternalError(w, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestDecode(t *testing.T) {
	var dst struct{ IDs []string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":["a"]}`))
	assert.True(t, httputil.Decode(httptest.NewRecorder(), r, &dst))
	assert.Equal(t, []string{"a"}, dst.IDs)

	w := httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.False(t, httputil.Decode(w, r, &dst))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&size=x", nil)
	assert.Equal(t, 3, httputil.QueryInt(r, "page", 1))
	assert.Equal(t, 10, httputil.QueryInt(r, "size", 10))
	assert.Equal(t, 7, httputil.QueryInt(r, "missing", 7))
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	httputil.Attachment(w, "text/plain", "a.txt", []byte("hi"))
	assert.Equal(t, `attachment; filename="a.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "hi", w.Body.String())
}
