package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profiling/pkg/requestcontext"
)

func TestIssuer_EmptyUsernameIsInvalidPrincipal(t *testing.T) {
	issuer := NewIssuer(30 * time.Minute)

	_, err := issuer.Issue(context.Background(), Principal{Roles: []string{"user"}})
	assert.ErrorIs(t, err, ErrInvalidPrincipal)
}

func TestIssuer_RolesNeverFabricated(t *testing.T) {
	issuer := NewIssuer(30 * time.Minute)

	claims, err := issuer.Issue(context.Background(), Principal{
		Username: "phillip",
		Roles:    []string{"user"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, claims.Groups)
	assert.NotContains(t, claims.Groups, "admin")
}

func TestIssuer_DeclarationOrderNotInputOrder(t *testing.T) {
	issuer := NewIssuer(30 * time.Minute)

	// Principal presents roles in the "wrong" order; claims follow the
	// declared role-set order.
	claims, err := issuer.Issue(context.Background(), Principal{
		Username: "phillip",
		Roles:    []string{"user", "admin"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "user"}, claims.Groups)
}

func TestIssuer_UnknownRolesDropped(t *testing.T) {
	issuer := NewIssuer(30 * time.Minute)

	claims, err := issuer.Issue(context.Background(), Principal{
		Username: "phillip",
		Roles:    []string{"superuser", "user", " user "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"user"}, claims.Groups)
}

func TestIssuer_ValidityWindow(t *testing.T) {
	issuer := NewIssuer(30 * time.Minute)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), at)

	claims, err := issuer.Issue(ctx, Principal{Username: "phillip", Roles: []string{"user"}})
	require.NoError(t, err)
	assert.Equal(t, "phillip", claims.Subject)
	assert.Equal(t, at.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, at.Add(30*time.Minute).Unix(), claims.ExpiresAt.Unix())
}
