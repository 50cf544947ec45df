// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/waxlog/waxlog/internal/auth"
	"github.com/waxlog/waxlog/internal/metrics"
	"github.com/waxlog/waxlog/internal/middleware"
	"github.com/waxlog/waxlog/internal/model"
	"github.com/waxlog/waxlog/internal/repository"
)

// Service errors.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrGoogleOnlyAccount  = errors.New("account uses Google sign-in")
	ErrGoogleDisabled     = errors.New("google sign-in is not configured")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles registration, login and OAuth sign-in.
type AuthService struct {
	repo    *repository.Repository
	tokens  *auth.TokenIssuer
	google  *GoogleOAuth
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService. google may be nil when OAuth is
// not configured.
func NewAuthService(repo *repository.Repository, tokens *auth.TokenIssuer, google *GoogleOAuth, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		repo:    repo,
		tokens:  tokens,
		google:  google,
		metrics: recorder,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates an account and returns the user with a signed token.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	if err := middleware.ValidateUsername(input.Username); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		ID:           newUUID(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Username:     input.Username,
		PasswordHash: hash,
		AvatarURL:    defaultAvatarURL(input.Username),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return nil, "", ErrEmailTaken
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, "", ErrUsernameTaken
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncRegistration()

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login authenticates with email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLogin("failed")
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	// Accounts created through Google have no password to check.
	if user.PasswordHash == "" {
		if user.HasGoogleLogin() {
			s.metrics.IncLogin("failed")
			return nil, "", ErrGoogleOnlyAccount
		}
		s.metrics.IncLogin("failed")
		return nil, "", ErrInvalidCredentials
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.metrics.IncLogin("failed")
		return nil, "", ErrInvalidCredentials
	}

	s.metrics.IncLogin("success")

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Refresh issues a fresh token for an already-authenticated account.
// Tokens are stateless, so the old one stays valid until it expires.
func (s *AuthService) Refresh(ctx context.Context, userID string) (*model.User, string, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// CurrentUser loads the account behind an auth context.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GoogleAuthURL returns the Google consent page URL for the given state.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", ErrGoogleDisabled
	}
	return s.google.AuthCodeURL(state), nil
}

// HandleGoogleCallback exchanges the OAuth code, then finds or creates the
// matching account. Existing accounts with the same email get linked.
func (s *AuthService) HandleGoogleCallback(ctx context.Context, code string) (*model.User, string, error) {
	if s.google == nil {
		return nil, "", ErrGoogleDisabled
	}

	gu, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("google exchange: %w", err)
	}

	user, err := s.repo.GetUserByGoogleID(ctx, gu.Sub)
	if err == nil {
		token, err := s.tokens.Issue(user.ID)
		return user, token, err
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", err
	}

	// Link by email if the account already exists.
	user, err = s.repo.GetUserByEmail(ctx, gu.Email)
	if err == nil {
		user.GoogleID = &gu.Sub
		if user.AvatarURL == "" {
			user.AvatarURL = gu.Picture
		}
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return nil, "", fmt.Errorf("link google account: %w", err)
		}
		token, err := s.tokens.Issue(user.ID)
		return user, token, err
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", err
	}

	username, err := s.deriveUsername(ctx, gu)
	if err != nil {
		return nil, "", err
	}

	avatar := gu.Picture
	if avatar == "" {
		avatar = defaultAvatarURL(username)
	}

	user = &model.User{
		ID:        newUUID(),
		Email:     strings.ToLower(gu.Email),
		Username:  username,
		GoogleID:  &gu.Sub,
		AvatarURL: avatar,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create google user: %w", err)
	}

	s.metrics.IncRegistration()

	token, err := s.tokens.Issue(user.ID)
	return user, token, err
}

// deriveUsername builds a unique username from the Google profile.
func (s *AuthService) deriveUsername(ctx context.Context, gu *GoogleUser) (string, error) {
	base := sanitizeUsername(gu.Name)
	if base == "" {
		base = sanitizeUsername(strings.SplitN(gu.Email, "@", 2)[0])
	}
	if base == "" || len(base) < middleware.MinUsernameLength {
		base = "listener"
	}
	if len(base) > middleware.MaxUsernameLength-4 {
		base = base[:middleware.MaxUsernameLength-4]
	}

	candidate := base
	for i := 0; i < 50; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", base, i)
		}
		if middleware.ValidateUsername(candidate) != nil {
			continue
		}
		_, err := s.repo.GetUserByUsername(ctx, candidate)
		if errors.Is(err, repository.ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not derive a unique username")
}

// sanitizeUsername keeps only characters valid in usernames.
func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '.':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_-")
}

// defaultAvatarURL builds a generated-initials avatar for new accounts.
func defaultAvatarURL(username string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(username) + "&background=random"
}
