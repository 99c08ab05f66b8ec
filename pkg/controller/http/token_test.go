package http_test

import (
	"net/http"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/storyspark-lab/storyspark/pkg/controller/http"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
)

func TestSessionToken(t *testing.T) {
	const secret = "test-secret"

	t.Run("issue and verify round trip", func(t *testing.T) {
		id := model.NewSessionID()
		token, err := httpctrl.IssueSessionToken(secret, id)
		gt.NoError(t, err).Required()
		gt.NoError(t, httpctrl.VerifySessionToken(secret, token, id))
	})

	t.Run("token is bound to one session", func(t *testing.T) {
		token, err := httpctrl.IssueSessionToken(secret, model.NewSessionID())
		gt.NoError(t, err).Required()
		gt.Value(t, httpctrl.VerifySessionToken(secret, token, model.NewSessionID())).NotNil()
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		id := model.NewSessionID()
		token, err := httpctrl.IssueSessionToken(secret, id)
		gt.NoError(t, err).Required()
		gt.Value(t, httpctrl.VerifySessionToken("other-secret", token, id)).NotNil()
	})
}

func TestSessionTokenMiddleware(t *testing.T) {
	const secret = "test-secret"
	srv := newTestServer(t, &mockLLMClient{}, httpctrl.WithTokenSecret(secret))

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]string{
		"premise": "a village threatened by a flood",
	})
	gt.Value(t, rec.Code).Equal(http.StatusCreated)
	created := decodeBody[createSessionBody](t, rec)
	gt.Value(t, created.Token).NotEqual("")

	t.Run("request without token is unauthorized", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/sessions/"+created.Session.ID, nil)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("request with token succeeds", func(t *testing.T) {
		rec := doAuthJSON(t, srv, http.MethodGet, "/api/sessions/"+created.Session.ID, nil, created.Token)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("token for another session is rejected", func(t *testing.T) {
		other, err := httpctrl.IssueSessionToken(secret, model.NewSessionID())
		gt.NoError(t, err).Required()

		rec := doAuthJSON(t, srv, http.MethodGet, "/api/sessions/"+created.Session.ID, nil, other)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}
