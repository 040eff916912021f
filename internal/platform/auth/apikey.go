package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/platform/apperr"
)

// DefaultHeader is the request header carrying the shared secret.
const DefaultHeader = "X-API-Key"

const (
	msgMissingKey = "API Key is missing. Access denied."
	msgInvalidKey = "Invalid API Key. Access denied."
)

// Authenticator decides whether a request may perform a mutating operation.
type Authenticator interface {
	Authenticate(r *http.Request) error
}

// APIKeyAuthenticator accepts requests whose header value equals the configured secret exactly.
type APIKeyAuthenticator struct {
	header string
	secret []byte
}

// NewAPIKeyAuthenticator creates an APIKeyAuthenticator. An empty header name falls back to DefaultHeader.
func NewAPIKeyAuthenticator(header, secret string) *APIKeyAuthenticator {
	if header == "" {
		header = DefaultHeader
	}
	return &APIKeyAuthenticator{
		header: header,
		secret: []byte(secret),
	}
}

// Authenticate returns an Authentication failure when the key is missing or wrong.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) error {
	key := r.Header.Get(a.header)
	if key == "" {
		return apperr.Authentication(msgMissingKey)
	}
	if subtle.ConstantTimeCompare([]byte(key), a.secret) != 1 {
		return apperr.Authentication(msgInvalidKey)
	}
	return nil
}
