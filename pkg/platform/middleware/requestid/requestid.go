package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"leicca/pkg/requestcontext"
)

// Header carries the caller-supplied request id, if any.
const Header = "X-Request-ID"

// RequestID assigns each request an id, honoring a caller-supplied header so
// ids correlate across services. Apply early in the chain.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
