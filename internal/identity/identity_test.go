package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/events"
	"github.com/school-newsroom-api/internal/mocks"
	"github.com/school-newsroom-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type recordingPublisher struct {
	events []string
	err    error
}

func (r *recordingPublisher) Publish(ctx context.Context, event string, payload interface{}) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() {}

func newTestProvider(t *testing.T) (*localProvider, *mocks.MockIdentityRepository, *recordingPublisher) {
	t.Helper()
	repo := mocks.NewMockIdentityRepository()
	pub := &recordingPublisher{}
	p := NewLocalProvider(repo, pub, Options{
		Secret:     testSecret,
		SessionTTL: time.Hour,
		InviteTTL:  24 * time.Hour,
		SiteURL:    "https://zeitung.example/",
		BcryptCost: bcrypt.MinCost,
	}, zerolog.Nop()).(*localProvider)
	return p, repo, pub
}

func TestInvite_CarriesRoleAndInviter(t *testing.T) {
	p, repo, pub := newTestProvider(t)
	ctx := context.Background()

	inv, err := p.Invite(ctx, " Neu@Schule.de ", models.RoleEditor, "admin-1")
	require.NoError(t, err)

	assert.Equal(t, "neu@schule.de", inv.Email)
	assert.True(t, strings.HasPrefix(inv.Link, "https://zeitung.example/admin/invite?token="))
	assert.Equal(t, []string{events.InviteIssued}, pub.events)
	assert.Len(t, repo.Identities, 1)

	resolved, err := p.ResolveInvite(ctx, inv.Token)
	require.NoError(t, err)
	assert.Equal(t, inv.IdentityID, resolved.IdentityID)
	assert.Equal(t, models.RoleEditor, resolved.Role)
	assert.Equal(t, "admin-1", resolved.InvitedBy)
}

func TestInvite_ReusesExistingIdentity(t *testing.T) {
	p, repo, _ := newTestProvider(t)
	ctx := context.Background()

	first, err := p.Invite(ctx, "neu@schule.de", models.RoleAuthor, "admin-1")
	require.NoError(t, err)
	second, err := p.Invite(ctx, "neu@schule.de", models.RoleEditor, "admin-2")
	require.NoError(t, err)

	assert.Equal(t, first.IdentityID, second.IdentityID)
	assert.Len(t, repo.Identities, 1)
}

func TestInvite_DeliveryFailure(t *testing.T) {
	p, _, pub := newTestProvider(t)
	pub.err = errors.New("broker down")

	_, err := p.Invite(context.Background(), "neu@schule.de", models.RoleAuthor, "admin-1")
	assert.ErrorContains(t, err, "broker down")
}

func TestResolveInvite_RejectsBadTokens(t *testing.T) {
	p, _, _ := newTestProvider(t)
	ctx := context.Background()

	inv, err := p.Invite(ctx, "neu@schule.de", models.RoleAuthor, "admin-1")
	require.NoError(t, err)

	_, err = p.ResolveInvite(ctx, inv.Token+"x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = p.ResolveInvite(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// a session token is not an invite
	session, _, err := p.IssueSession(&models.Identity{ID: inv.IdentityID, Email: inv.Email})
	require.NoError(t, err)
	_, err = p.ResolveInvite(ctx, session)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// expired
	p.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = p.ResolveInvite(ctx, inv.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolveInvite_OtherSecret(t *testing.T) {
	p, _, _ := newTestProvider(t)
	other, _, _ := newTestProvider(t)
	other.opts.Secret = "ffffffffffffffffffffffffffffffff"

	inv, err := other.Invite(context.Background(), "neu@schule.de", models.RoleAuthor, "admin-1")
	require.NoError(t, err)

	_, err = p.ResolveInvite(context.Background(), inv.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateAndSession(t *testing.T) {
	p, repo, _ := newTestProvider(t)
	ctx := context.Background()

	identity, err := p.CreateAccount(ctx, "Chefin@Schule.de", "geheim123")
	require.NoError(t, err)

	_, err = p.Authenticate(ctx, "chefin@schule.de", "falsch")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = p.Authenticate(ctx, "niemand@schule.de", "geheim123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	got, err := p.Authenticate(ctx, "CHEFIN@schule.de", "geheim123")
	require.NoError(t, err)
	assert.Equal(t, identity.ID, got.ID)

	token, expires, err := p.IssueSession(got)
	require.NoError(t, err)
	assert.True(t, expires.After(time.Now()))

	session, err := p.ParseSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, session.IdentityID)

	delete(repo.Identities, identity.ID)
	_, err = p.ParseSession(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSetPassword_InvitedIdentityCanSignIn(t *testing.T) {
	p, _, _ := newTestProvider(t)
	ctx := context.Background()

	inv, err := p.Invite(ctx, "neu@schule.de", models.RoleAuthor, "admin-1")
	require.NoError(t, err)

	_, err = p.Authenticate(ctx, "neu@schule.de", "passwort1")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "no password before claim")

	require.NoError(t, p.SetPassword(ctx, inv.IdentityID, "passwort1"))
	_, err = p.Authenticate(ctx, "neu@schule.de", "passwort1")
	assert.NoError(t, err)
}
