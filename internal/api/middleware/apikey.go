package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/avdberg/fundledger/internal/api/response"
	"github.com/fernet/fernet-go"
)

// tokenTTL is the maximum age of an accepted API token.
const tokenTTL = 24 * time.Hour

// NewAPIKey returns a middleware that requires a valid fernet token in the
// X-API-Key header on every request. Tokens are verified against the given
// base64-encoded fernet key. An empty key disables the check entirely, which
// is the local-development default.
func NewAPIKey(encodedKey string) (func(http.Handler) http.Handler, error) {
	if encodedKey == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	keys, err := fernet.DecodeKeys(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("invalid fernet key: %w", err)
	}

	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-API-Key")
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
				return
			}

			if msg := fernet.VerifyAndDecrypt([]byte(token), tokenTTL, keys); msg == nil {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	return mw, nil
}
