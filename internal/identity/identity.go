// Package identity is the local identity provider: sign-in accounts,
// HS256 session tokens and invite tokens that carry role and inviter.
package identity

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/events"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	purposeSession = "session"
	purposeInvite  = "invite"
	issuer         = "school-newsroom-api"
)

var (
	// ErrInvalidToken is returned for malformed, expired or mis-purposed tokens
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidCredentials is returned when email and password do not match
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Claims are the JWT claims of session and invite tokens
type Claims struct {
	jwt.RegisteredClaims
	Email     string      `json:"email"`
	Purpose   string      `json:"purpose"`
	Role      models.Role `json:"role,omitempty"`
	InvitedBy string      `json:"invited_by,omitempty"`
}

// Session is a verified session token
type Session struct {
	IdentityID string
	Email      string
	ExpiresAt  time.Time
}

// Invite is an issued invitation
type Invite struct {
	IdentityID string      `json:"user_id"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	InvitedBy  string      `json:"invited_by"`
	Link       string      `json:"link"`
	ExpiresAt  time.Time   `json:"expires_at"`
	Token      string      `json:"-"`
}

// Provider is the identity collaborator used by the access services
type Provider interface {
	// Invite creates (or reuses) an identity for email and delivers an invite link
	Invite(ctx context.Context, email string, role models.Role, invitedBy string) (*Invite, error)
	// ResolveInvite verifies an invite token
	ResolveInvite(ctx context.Context, token string) (*Invite, error)
	// SetPassword sets the sign-in password of an identity
	SetPassword(ctx context.Context, identityID, password string) error
	// CreateAccount creates an identity with a password directly
	CreateAccount(ctx context.Context, email, password string) (*models.Identity, error)
	// Authenticate checks email and password
	Authenticate(ctx context.Context, email, password string) (*models.Identity, error)
	// IssueSession signs a session token for identity
	IssueSession(identity *models.Identity) (string, time.Time, error)
	// ParseSession verifies a session token and that its identity still exists
	ParseSession(ctx context.Context, token string) (*Session, error)
}

// Options configures the local provider
type Options struct {
	Secret     string
	SessionTTL time.Duration
	InviteTTL  time.Duration
	SiteURL    string
	BcryptCost int
}

type localProvider struct {
	identities repository.IdentityRepository
	publisher  events.Publisher
	opts       Options
	now        func() time.Time
	log        zerolog.Logger
}

// NewLocalProvider creates the database-backed provider
func NewLocalProvider(identities repository.IdentityRepository, publisher events.Publisher, opts Options, log zerolog.Logger) Provider {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &localProvider{
		identities: identities,
		publisher:  publisher,
		opts:       opts,
		now:        time.Now,
		log:        log.With().Str("component", "identity").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *localProvider) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(p.opts.Secret))
}

func (p *localProvider) parse(tokenString, purpose string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(p.opts.Secret), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(p.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (p *localProvider) registered(subject string, ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	now := p.now()
	expires := now.Add(ttl)
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        uuid.New().String(),
	}, expires
}

func (p *localProvider) Invite(ctx context.Context, email string, role models.Role, invitedBy string) (*Invite, error) {
	email = normalizeEmail(email)

	identity, err := p.identities.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		now := p.now()
		identity = &models.Identity{
			ID:          uuid.New().String(),
			Email:       email,
			InvitedRole: &role,
			InvitedBy:   &invitedBy,
			InvitedAt:   &now,
			CreatedAt:   now,
		}
		if err := p.identities.Create(ctx, identity); err != nil {
			return nil, err
		}
	}

	rc, expires := p.registered(identity.ID, p.opts.InviteTTL)
	token, err := p.sign(Claims{
		RegisteredClaims: rc,
		Email:            email,
		Purpose:          purposeInvite,
		Role:             role,
		InvitedBy:        invitedBy,
	})
	if err != nil {
		return nil, errors.Wrap(err, "sign invite token")
	}

	invite := &Invite{
		IdentityID: identity.ID,
		Email:      email,
		Role:       role,
		InvitedBy:  invitedBy,
		Link:       strings.TrimRight(p.opts.SiteURL, "/") + "/admin/invite?token=" + url.QueryEscape(token),
		ExpiresAt:  expires,
		Token:      token,
	}

	if err := p.publisher.Publish(ctx, events.InviteIssued, invite); err != nil {
		return nil, errors.Wrap(err, "deliver invite")
	}

	p.log.Info().
		Str("identity_id", identity.ID).
		Str("email", email).
		Str("role", string(role)).
		Str("link", invite.Link).
		Msg("Invite issued")

	return invite, nil
}

func (p *localProvider) ResolveInvite(ctx context.Context, token string) (*Invite, error) {
	claims, err := p.parse(token, purposeInvite)
	if err != nil {
		return nil, err
	}

	identity, err := p.identities.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrInvalidToken
	}

	role := claims.Role
	if role == "" {
		role = models.RoleAuthor
	}
	return &Invite{
		IdentityID: identity.ID,
		Email:      identity.Email,
		Role:       role,
		InvitedBy:  claims.InvitedBy,
		ExpiresAt:  claims.ExpiresAt.Time,
		Token:      token,
	}, nil
}

func (p *localProvider) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.BcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(h), nil
}

func (p *localProvider) SetPassword(ctx context.Context, identityID, password string) error {
	h, err := p.hash(password)
	if err != nil {
		return err
	}
	return p.identities.SetPassword(ctx, identityID, h)
}

func (p *localProvider) CreateAccount(ctx context.Context, email, password string) (*models.Identity, error) {
	h, err := p.hash(password)
	if err != nil {
		return nil, err
	}
	identity := &models.Identity{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(email),
		PasswordHash: &h,
		CreatedAt:    p.now(),
	}
	if err := p.identities.Create(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

func (p *localProvider) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	identity, err := p.identities.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if identity == nil || identity.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return identity, nil
}

func (p *localProvider) IssueSession(identity *models.Identity) (string, time.Time, error) {
	rc, expires := p.registered(identity.ID, p.opts.SessionTTL)
	token, err := p.sign(Claims{
		RegisteredClaims: rc,
		Email:            identity.Email,
		Purpose:          purposeSession,
	})
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign session token")
	}
	return token, expires, nil
}

func (p *localProvider) ParseSession(ctx context.Context, token string) (*Session, error) {
	claims, err := p.parse(token, purposeSession)
	if err != nil {
		return nil, err
	}

	identity, err := p.identities.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrInvalidToken
	}
	return &Session{
		IdentityID: identity.ID,
		Email:      identity.Email,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}
