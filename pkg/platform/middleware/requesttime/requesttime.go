// Package requesttime pins one wall-clock reading per request. Every
// timestamp derived while handling the request reads the same instant, so a
// capsule and its audit events never disagree about when they happened.
package requesttime

import (
	"net/http"
	"time"

	"leicca/pkg/requestcontext"
)

// RequestTime stamps the request context with the arrival time.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
