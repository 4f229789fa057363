package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
	"github.com/aqui-app/aqui-api/internal/util"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmailAlreadyUsed   = errors.New("email already registered")
	ErrPasswordTooWeak    = errors.New("password does not meet requirements")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidGoogleToken = errors.New("invalid google token")
	ErrUnauthorized       = errors.New("unauthorized")
)

type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

type googleValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

type AuthService struct {
	users    ports.UserRepository
	roles    ports.RoleRepository
	sessions ports.SessionRepository
	jwt      *util.JWTManager
	audience string

	validateGoogle googleValidator
}

func NewAuthService(users ports.UserRepository, roles ports.RoleRepository, sessions ports.SessionRepository, jwtManager *util.JWTManager, googleAudience string) *AuthService {
	return &AuthService{
		users:          users,
		roles:          roles,
		sessions:       sessions,
		jwt:            jwtManager,
		audience:       strings.TrimSpace(googleAudience),
		validateGoogle: idtoken.Validate,
	}
}

func (s *AuthService) RegisterWithEmail(ctx context.Context, email, password string, fullName *string) (*AuthResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPasswordTooWeak, err)
	}

	hash, salt, err := util.DerivePassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateEmailUser(ctx, normalized, normalizeString(fullName), hash, salt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailAlreadyUsed
		}
		return nil, err
	}

	if err := s.GrantRole(ctx, user.ID, domain.RoleCustomer); err != nil {
		return nil, err
	}
	return s.issue(ctx, user.ID)
}

func (s *AuthService) LoginWithEmail(ctx context.Context, email, password string) (*AuthResult, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !util.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user.ID)
}

func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*AuthResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidGoogleToken
	}
	payload, err := s.validateGoogle(ctx, idToken, s.audience)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}

	email, _ := payload.Claims["email"].(string)
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, ErrInvalidGoogleToken
	}
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}
	var name, picture *string
	if v, ok := payload.Claims["name"].(string); ok {
		name = normalizeString(&v)
	}
	if v, ok := payload.Claims["picture"].(string); ok {
		picture = normalizeString(&v)
	}

	user, err := s.users.UpsertGoogleUser(ctx, normalized, name, picture)
	if err != nil {
		return nil, err
	}
	if err := s.GrantRole(ctx, user.ID, domain.RoleCustomer); err != nil {
		return nil, err
	}
	return s.issue(ctx, user.ID)
}

// Logout revokes the token. Revoking an already revoked token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.DeactivateSession(ctx, token); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// Authenticate resolves a bearer token to its user. The token must verify and
// still be backed by an active session row.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if _, err := s.sessions.FindActiveSession(ctx, token); err != nil {
		if isNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.loadUser(ctx, userID)
}

func (s *AuthService) GrantRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	role, err := s.roles.GetOrCreateRole(ctx, roleName, "")
	if err != nil {
		return err
	}
	return s.roles.AssignUserRole(ctx, userID, role.ID)
}

func (s *AuthService) issue(ctx context.Context, userID uuid.UUID) (*AuthResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	roleNames := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roleNames = append(roleNames, role.Name)
	}
	token, expiresAt, err := s.jwt.Generate(user.ID, user.Email, roleNames)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.CreateSession(ctx, user.ID, token, expiresAt); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) loadUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	roles, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}

func normalizeString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
