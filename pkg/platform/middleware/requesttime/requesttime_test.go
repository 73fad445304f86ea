package requesttime_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leicca/pkg/platform/middleware/requesttime"
	"leicca/pkg/requestcontext"
)

func TestRequestTimeStampsContext(t *testing.T) {
	var first, second time.Time
	handler := requesttime.RequestTime(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		second = requestcontext.Now(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	before := time.Now().UTC()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	after := time.Now().UTC()

	require.False(t, first.IsZero())
	assert.Equal(t, first, second, "repeated reads within one request see the same instant")
	assert.False(t, first.Before(before))
	assert.False(t, first.After(after))
}
