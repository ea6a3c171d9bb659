package middleware

import (
	"net/http"

	"github.com/mssola/useragent"

	"olivecrm/pkg/requestcontext"
)

// Device parses the User-Agent header and stores a compact browser/OS
// description in the context. The employee service records it on sessions and
// login audit lines.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("User-Agent")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		ua := useragent.New(raw)
		name, version := ua.Browser()
		device := name + " " + version + " on " + ua.OS()
		if ua.Bot() {
			device = "bot: " + name
		}

		ctx := requestcontext.WithDevice(r.Context(), device)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
