package chi

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths are reachable without a key so health checks and scrapers keep working.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// keyring holds API keys as digests so lookups compare fixed-length values in constant time.
type keyring [][sha256.Size]byte

func newKeyring(keys []string) keyring {
	var kr keyring
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			kr = append(kr, sha256.Sum256([]byte(k)))
		}
	}
	return kr
}

func (kr keyring) allows(token string) bool {
	sum := sha256.Sum256([]byte(token))
	ok := 0
	for i := range kr {
		ok |= subtle.ConstantTimeCompare(kr[i][:], sum[:])
	}
	return ok == 1
}

// BearerAuthMiddleware requires "Authorization: Bearer <key>" on every API route.
// With no keys configured the service is open.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	kr := newKeyring(apiKeys)

	return func(next http.Handler) http.Handler {
		if len(kr) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			switch {
			case !ok:
				w.Header().Set("WWW-Authenticate", `Bearer realm="realitycheck"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "missing or malformed bearer token")
			case !kr.allows(token):
				w.Header().Set("WWW-Authenticate", `Bearer realm="realitycheck", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid api key")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
