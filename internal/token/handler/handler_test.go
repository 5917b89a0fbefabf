package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profiling/internal/audit"
	"profiling/internal/policy"
	"profiling/internal/token"
	"profiling/pkg/testutil"
)

func newRouter(t *testing.T, signer *token.Signer) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	publisher := audit.NewPublisher(16)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = audit.NewWorker(audit.NewMemoryStore(), publisher.Inbox(), logger).Run(ctx) }()

	svc := token.NewService(token.NewIssuer(30*time.Minute), signer, publisher, logger)
	h := New(svc, policy.Default(), token.NewValidator(signer), logger)

	r := chi.NewRouter()
	h.Register(r)
	return r
}

func mint(t *testing.T, signer *token.Signer, username string, roles []string) string {
	t.Helper()
	claims, err := token.NewIssuer(time.Hour).Issue(context.Background(), token.Principal{
		Username: username,
		Roles:    roles,
	})
	require.NoError(t, err)
	signed, err := signer.Sign(claims)
	require.NoError(t, err)
	return signed
}

func TestIssueToken_Unauthenticated(t *testing.T) {
	router := newRouter(t, token.NewSigner("test-key"))

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/token/issue"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestIssueToken_SignedTokenCarriesDeclaredRoleOrder(t *testing.T) {
	signer := token.NewSigner("test-key")
	router := newRouter(t, signer)

	// Roles presented out of declared order on purpose.
	req := testutil.NewRequest(t, http.MethodGet, "/token/issue")
	req = testutil.WithBearer(req, mint(t, signer, "phillip", []string{"user", "admin"}))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "text/plain", rr.Header().Get("Content-Type"))

	claims, err := signer.Verify(rr.Body.String())
	require.NoError(t, err)
	assert.Equal(t, "phillip", claims.Subject)
	assert.Equal(t, []string{"admin", "user"}, claims.Groups)
}

func TestIssueToken_UserRoleOnlyNeverGainsAdmin(t *testing.T) {
	signer := token.NewSigner("test-key")
	router := newRouter(t, signer)

	req := testutil.NewRequest(t, http.MethodGet, "/token/issue")
	req = testutil.WithBearer(req, mint(t, signer, "phillip", []string{"user"}))
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	claims, err := signer.Verify(rr.Body.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, claims.Groups)
}
