package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/utils/errutil"
)

const sessionTokenTTL = 24 * time.Hour

// issueSessionToken issues a signed token bound to one session. The token
// grants access to that session only.
func issueSessionToken(secret string, sessionID model.SessionID) (string, error) {
	now := time.Now()
	token, err := jwt.NewBuilder().
		Subject(string(sessionID)).
		IssuedAt(now).
		Expiration(now.Add(sessionTokenTTL)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build session token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(secret)))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign session token")
	}

	return string(signed), nil
}

// verifySessionToken validates the signature and expiry, and checks that
// the token is bound to the given session.
func verifySessionToken(secret, raw string, sessionID model.SessionID) error {
	token, err := jwt.Parse([]byte(raw), jwt.WithKey(jwa.HS256, []byte(secret)), jwt.WithValidate(true))
	if err != nil {
		return goerr.Wrap(err, "invalid session token")
	}

	if token.Subject() != string(sessionID) {
		return goerr.New("session token does not match session",
			goerr.V("session_id", sessionID))
	}

	return nil
}

// sessionTokenMiddleware requires a bearer token bound to the session in
// the URL. Applied only when a token secret is configured.
func sessionTokenMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := model.SessionID(chi.URLParam(r, "sessionID"))

			auth := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || raw == "" {
				errutil.HandleHTTP(r.Context(), w, goerr.New("missing session token"), http.StatusUnauthorized)
				return
			}

			if err := verifySessionToken(secret, raw, id); err != nil {
				errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
