// Package auth registers users, manages their sessions and resets passwords.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"finance-tracker-backend/internal/apperr"
	"finance-tracker-backend/internal/mail"
	"finance-tracker-backend/internal/model"
	"finance-tracker-backend/internal/session"
	"finance-tracker-backend/internal/store"
	"finance-tracker-backend/internal/validate"
)

const (
	// ResetTokenTTL is how long an emailed reset link stays valid.
	ResetTokenTTL = 15 * time.Minute

	// ForgotPasswordMessage is returned whether or not the email is known.
	ForgotPasswordMessage = "If that email exists, a reset link has been sent"
	// ResetPasswordMessage confirms a successful reset.
	ResetPasswordMessage = "Password reset successful"
)

// Service implements the identity boundary: registration, sessions and the
// reset-token flow.
type Service struct {
	store    store.Store
	sessions session.Store
	mailer   mail.Mailer
	secret   []byte
	baseURL  string
	logger   *slog.Logger

	cost int
	now  func() time.Time
	// dummyHash is compared against for unknown emails so that login
	// timing does not reveal whether an account exists.
	dummyHash string
}

func NewService(st store.Store, sessions session.Store, mailer mail.Mailer, secret, baseURL string, logger *slog.Logger) *Service {
	s := &Service{
		store:    st,
		sessions: sessions,
		mailer:   mailer,
		secret:   []byte(secret),
		baseURL:  baseURL,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
	s.dummyHash, _ = hashPassword("not a real password", s.cost)
	return s
}

// Register creates the user and its default categories in one transaction.
func (s *Service) Register(ctx context.Context, in validate.RegisterInput) (model.UserSummary, error) {
	if err := validate.Struct(&in); err != nil {
		return model.UserSummary{}, err
	}
	if _, err := s.store.UserByEmail(ctx, in.Email); err == nil {
		return model.UserSummary{}, apperr.Duplicate("Email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.UserSummary{}, fmt.Errorf("look up email: %w", err)
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return model.UserSummary{}, err
	}

	now := s.now()
	user := model.User{
		ID:           uuid.New(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	defaults := model.DefaultCategories()
	categories := make([]model.Category, 0, len(defaults))
	for _, d := range defaults {
		categories = append(categories, model.Category{
			ID:        uuid.New(),
			UserID:    user.ID,
			Name:      d.Name,
			Type:      d.Type,
			Color:     d.Color,
			IsDefault: true,
			CreatedAt: now,
		})
	}

	if err := s.store.CreateUser(ctx, user, categories); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return model.UserSummary{}, apperr.Duplicate("Email already registered")
		}
		return model.UserSummary{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user.Summary(), nil
}

// Login checks the credentials and opens a session.
func (s *Service) Login(ctx context.Context, in validate.LoginInput) (string, model.UserSummary, error) {
	if err := validate.Struct(&in); err != nil {
		return "", model.UserSummary{}, err
	}
	invalid := apperr.Unauthenticated("Invalid email or password")

	user, err := s.store.UserByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		CheckPassword(s.dummyHash, in.Password)
		return "", model.UserSummary{}, invalid
	}
	if err != nil {
		return "", model.UserSummary{}, fmt.Errorf("look up email: %w", err)
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		return "", model.UserSummary{}, invalid
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", model.UserSummary{}, fmt.Errorf("create session: %w", err)
	}
	return token, user.Summary(), nil
}

// Logout revokes token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, apperr.Unauthenticated("Unauthorized")
	}
	userID, err := s.sessions.Lookup(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return model.User{}, apperr.Unauthenticated("Unauthorized")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("lookup session: %w", err)
	}
	user, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, apperr.Unauthenticated("Unauthorized")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// ForgotPassword issues a reset token and mails the link. It returns nil for
// unknown emails; the caller answers with ForgotPasswordMessage either way.
func (s *Service) ForgotPassword(ctx context.Context, in validate.ForgotPasswordInput) error {
	if err := validate.Struct(&in); err != nil {
		return err
	}
	user, err := s.store.UserByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up email: %w", err)
	}

	token, err := session.NewToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(ResetTokenTTL)
	if err := s.store.SetResetToken(ctx, user.ID, TokenHash(s.secret, token), expires); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, s.ResetLink(token)); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}
	return nil
}

// ResetLink is the URL mailed to the user.
func (s *Service) ResetLink(token string) string {
	return s.baseURL + "/reset-password/" + token
}

// ResetPassword consumes a valid token and sets the new password. The token
// cannot be used twice.
func (s *Service) ResetPassword(ctx context.Context, in validate.ResetPasswordInput) error {
	if err := validate.Struct(&in); err != nil {
		return err
	}
	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return err
	}
	userID, err := s.store.ConsumeResetToken(ctx, TokenHash(s.secret, in.Token), s.now(), hash)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Invalid("Invalid or expired reset token")
	}
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	s.logger.InfoContext(ctx, "Password reset", "user_id", userID)
	return nil
}

// CreateUser registers a user outside of HTTP, for the CLI.
func (s *Service) CreateUser(ctx context.Context, name, email, password string) (model.UserSummary, error) {
	return s.Register(ctx, validate.RegisterInput{Name: name, Email: email, Password: password, ConfirmPassword: password})
}

type userKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the authenticated user stored in ctx.
func UserFrom(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey{}).(model.User)
	return user, ok
}
