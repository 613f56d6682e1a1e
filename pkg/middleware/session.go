package middleware

import (
	"net/http"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

// SessionHeader names the shopper session. Cart and wishlist state is kept
// per session.
const SessionHeader = "X-Session-ID"

const maxSessionIDLen = 64

// Session resolves the session id from SessionHeader, generating one when the
// header is absent, and echoes it on the response. Ids are used inside storage
// keys, so only ASCII letters, digits, '-' and '_' are accepted.
func Session() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeader)
			if id == "" {
				id = uuid.NewString()
			} else if !validSessionID(id) {
				httputil.WriteAppError(w, apperrors.New(http.StatusBadRequest, apperrors.CodeInvalidSession,
					"session id must be 1-64 characters of [A-Za-z0-9_-]"))
				return
			}

			w.Header().Set(SessionHeader, id)
			next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), id)))
		})
	}
}

func validSessionID(id string) bool {
	if len(id) == 0 || len(id) > maxSessionIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
