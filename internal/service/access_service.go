package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/access"
	"github.com/school-newsroom-api/internal/apperr"
	"github.com/school-newsroom-api/internal/database"
	"github.com/school-newsroom-api/internal/identity"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/repository"
	"github.com/school-newsroom-api/internal/validation"
)

// Machine-readable codes for onboarding conflicts
const (
	CodeEmailHasProfile  = "email_has_profile"
	CodeAlreadyApproved  = "already_approved"
	CodeAwaitingApproval = "awaiting_approval"
	CodeInvalidInvite    = "invalid_invite"
	CodeSetupComplete    = "setup_complete"
)

// accessService is the concrete implementation of AccessService
type accessService struct {
	users     repository.UserRepository
	provider  identity.Provider
	audit     AuditService
	validator *validation.Validator
	now       func() time.Time
	log       zerolog.Logger
}

func newAccessService(repos *repository.Repositories, provider identity.Provider, audit AuditService, log zerolog.Logger) *accessService {
	return &accessService{
		users:     repos.User,
		provider:  provider,
		audit:     audit,
		validator: validation.NewValidator(),
		now:       time.Now,
		log:       log.With().Str("service", "access").Logger(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Invite sends a staff invite; approved admins only
func (s *accessService) Invite(ctx context.Context, p *access.Principal, in *models.InviteInput) (*identity.Invite, error) {
	if err := access.Require(p, access.LevelAdmin); err != nil {
		return nil, err
	}
	in.Email = normalizeEmail(in.Email)
	if errs := s.validator.ValidateInvite(in); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}
	if in.Role == "" {
		in.Role = models.RoleAuthor
	}

	exists, err := s.users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("a profile with this email already exists", nil).WithCode(CodeEmailHasProfile)
	}

	invite, err := s.provider.Invite(ctx, in.Email, in.Role, p.UserID())
	if err != nil {
		s.log.Error().Err(err).Str("email", in.Email).Msg("Failed to issue invite")
		return nil, apperr.Internal("failed to send invite", err)
	}

	s.audit.Record(ctx, p, "user.invite", "user", invite.IdentityID, map[string]interface{}{
		"email": in.Email,
		"role":  string(in.Role),
	})
	return invite, nil
}

// Claim completes an invite and creates a pending profile with the invited role
func (s *accessService) Claim(ctx context.Context, in *models.ClaimInput) (*ClaimResult, error) {
	if errs := s.validator.ValidateClaim(in); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}

	invite, err := s.provider.ResolveInvite(ctx, in.Token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, apperr.Validation("token", "invite link is invalid or has expired").WithCode(CodeInvalidInvite)
		}
		return nil, err
	}

	existing, err := s.users.GetByID(ctx, invite.IdentityID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsApproved() {
			return nil, apperr.Conflict("this account is already active, please sign in", nil).WithCode(CodeAlreadyApproved)
		}
		return nil, apperr.Conflict("this invite has already been used, an admin still has to approve the account", nil).WithCode(CodeAwaitingApproval)
	}

	if err := s.provider.SetPassword(ctx, invite.IdentityID, in.Password); err != nil {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		ID:        invite.IdentityID,
		Name:      strings.TrimSpace(in.Name),
		Email:     invite.Email,
		Role:      invite.Role,
		Status:    models.UserStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("this invite has already been used", err).WithCode(CodeAwaitingApproval)
		}
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("Invite claimed, profile pending approval")
	s.audit.Record(ctx, &access.Principal{IdentityID: user.ID, Email: user.Email, Profile: user}, "user.claim", "user", user.ID, nil)
	return &ClaimResult{User: user}, nil
}

// Setup creates the first admin. It is refused once any admin exists.
func (s *accessService) Setup(ctx context.Context, in *models.SetupInput) (*models.User, error) {
	admins, err := s.users.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if admins > 0 {
		return nil, apperr.Forbidden("setup has already been completed").WithCode(CodeSetupComplete)
	}

	in.Email = normalizeEmail(in.Email)
	if errs := s.validator.ValidateSetup(in); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}

	account, err := s.provider.CreateAccount(ctx, in.Email, in.Password)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("an account with this email already exists", err).WithCode(CodeEmailHasProfile)
		}
		return nil, err
	}

	now := s.now()
	user := &models.User{
		ID:        account.ID,
		Name:      strings.TrimSpace(in.Name),
		Email:     account.Email,
		Role:      models.RoleAdmin,
		Status:    models.UserStatusApproved,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("First admin created")
	return user, nil
}

// Login checks credentials and issues a session token
func (s *accessService) Login(ctx context.Context, in *models.LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperr.Validation("email", "email and password are required")
	}

	account, err := s.provider.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return nil, apperr.Unauthenticated("invalid email or password")
		}
		return nil, err
	}

	token, expires, err := s.provider.IssueSession(account)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("identity_id", account.ID).Msg("Signed in")
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Principal resolves a session token into the caller of this request
func (s *accessService) Principal(ctx context.Context, token string) (*access.Principal, error) {
	session, err := s.provider.ParseSession(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, apperr.Unauthenticated("session is invalid or has expired")
		}
		return nil, err
	}
	profile, err := s.users.GetByID(ctx, session.IdentityID)
	if err != nil {
		return nil, err
	}
	return &access.Principal{IdentityID: session.IdentityID, Email: session.Email, Profile: profile}, nil
}

func (s *accessService) ListUsers(ctx context.Context, p *access.Principal, status models.UserStatus) ([]*models.User, error) {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return nil, err
	}
	return s.users.List(ctx, status)
}

func (s *accessService) target(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("user")
	}
	return user, nil
}

// Approve moves a pending profile to approved; approved admins only
func (s *accessService) Approve(ctx context.Context, p *access.Principal, userID string) error {
	if err := access.Require(p, access.LevelAdmin); err != nil {
		return err
	}
	user, err := s.target(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsApproved() {
		return nil
	}
	if _, err := s.users.SetStatus(ctx, userID, models.UserStatusApproved); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Str("approved_by", p.UserID()).Msg("User approved")
	s.audit.Record(ctx, p, "user.approve", "user", userID, nil)
	return nil
}

// SetRole changes a role. Editors may move users between author and editor;
// granting or revoking admin needs an admin.
func (s *accessService) SetRole(ctx context.Context, p *access.Principal, userID string, role models.Role) error {
	if err := access.Require(p, access.LevelEditor); err != nil {
		return err
	}
	if !models.ValidRoles[role] {
		return apperr.Validation("role", "invalid role, must be one of: admin, editor, author")
	}
	user, err := s.target(ctx, userID)
	if err != nil {
		return err
	}
	if role == models.RoleAdmin || user.Role == models.RoleAdmin {
		if err := access.Require(p, access.LevelAdmin); err != nil {
			return err
		}
	}
	if user.Role == role {
		return nil
	}
	if _, err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}
	s.audit.Record(ctx, p, "user.role", "user", userID, map[string]interface{}{
		"from": string(user.Role),
		"to":   string(role),
	})
	return nil
}

// UpdateProfile edits a profile; users edit their own, admins edit anyone's
func (s *accessService) UpdateProfile(ctx context.Context, p *access.Principal, userID string, in *models.ProfileInput) (*models.User, error) {
	if err := access.RequireStaff(p); err != nil {
		return nil, err
	}
	if p.UserID() != userID {
		if err := access.Require(p, access.LevelAdmin); err != nil {
			return nil, err
		}
	}
	if errs := s.validator.ValidateProfile(in); len(errs) > 0 {
		return nil, validation.AsError(errs)
	}
	user, err := s.target(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = strings.TrimSpace(in.Name)
	user.AvatarURL = nilIfEmpty(in.AvatarURL)
	user.Bio = nilIfEmpty(in.Bio)
	user.Slug = nilIfEmpty(in.Slug)
	user.Position = in.Position
	if user.Position != nil && *user.Position == "" {
		user.Position = nil
	}
	user.Grade = nilIfEmpty(in.Grade)
	if in.Badges != nil {
		user.Badges = *in.Badges
	}
	user.UpdatedAt = s.now()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("this profile slug is already taken", err).WithCode("slug_taken")
		}
		return nil, err
	}
	s.audit.Record(ctx, p, "user.profile", "user", userID, nil)
	return user, nil
}
