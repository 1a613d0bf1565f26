package server

import (
	"fmt"
	"net/http"

	"github.com/embedplay/embedplay/internal/httputil"
)

type SecurityConfig struct {
	BaseURL string
}

// securityHeaders hardens the shell pages. The player lives inside
// producer-page iframes, so frame-ancestors stays open and there is no
// X-Frame-Options; geolocation is granted to the shell itself for the
// live player's service-area check.
func securityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	strictTransport := cfg.BaseURL != "" && hasHTTPS(cfg.BaseURL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce := httputil.GenerateNonce()
			ctx := httputil.ContextWithNonce(r.Context(), nonce)

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Permissions-Policy", "geolocation=(self), camera=(), microphone=(), autoplay=(self), fullscreen=(self)")

			csp := fmt.Sprintf(
				"default-src 'self'; img-src 'self' data: https:; media-src 'self' blob: https:; script-src 'self' 'nonce-%s'; style-src 'self' 'nonce-%s'; connect-src 'self' wss: https:; frame-ancestors *;",
				nonce, nonce,
			)
			w.Header().Set("Content-Security-Policy", csp)

			if strictTransport {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasHTTPS(baseURL string) bool {
	return len(baseURL) >= 8 && baseURL[:8] == "https://"
}
