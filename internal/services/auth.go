package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/olegkuprianov/webapp-starter/internal/events"
	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/mailer"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/repositories"
	"github.com/olegkuprianov/webapp-starter/internal/secrets"
)

// ResetTokenWindow is how long a password reset link stays valid.
const ResetTokenWindow = 7 * 24 * time.Hour

// Error variables
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email address already registered")
	ErrUnknownEmail       = errors.New("unknown email address")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// AuthReader defines the read operations authentication needs.
type AuthReader interface {
	ByEmail(ctx context.Context, email string) (*models.UserDB, error)
	ByResetToken(ctx context.Context, email, token string, since time.Time) (*models.UserDB, error)
}

// AuthWriter defines the write operations authentication needs.
type AuthWriter interface {
	Create(ctx context.Context, p repositories.CreateParams) (*models.UserDB, error)
	SetLastLogin(ctx context.Context, id int64, at time.Time) error
	SetResetToken(ctx context.Context, id int64, token string, sent time.Time) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
}

// AuthService handles login, registration and password recovery.
type AuthService struct {
	reader    AuthReader
	writer    AuthWriter
	mailer    mailer.Mailer
	publisher events.Publisher
	baseURL   string
}

// NewAuthService creates a new AuthService instance. baseURL is the
// externally reachable root used to build password reset links.
func NewAuthService(
	reader AuthReader,
	writer AuthWriter,
	m mailer.Mailer,
	publisher events.Publisher,
	baseURL string,
) *AuthService {
	return &AuthService{
		reader:    reader,
		writer:    writer,
		mailer:    m,
		publisher: publisher,
		baseURL:   baseURL,
	}
}

// Login checks the email and password pair. Unknown email and wrong
// password both come back as ErrInvalidCredentials so the response
// cannot be used to probe for registered addresses.
func (svc *AuthService) Login(ctx context.Context, email, password string) (*models.UserDB, error) {
	user, err := svc.reader.ByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to look up user", "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := svc.writer.SetLastLogin(ctx, user.ID, now); err != nil {
		logger.Log.Errorw("failed to record last login", "user_id", user.ID, "err", err)
	} else {
		user.LastLogin = sql.NullTime{Time: now, Valid: true}
	}
	return user, nil
}

// Register creates a regular user account and logs it in.
func (svc *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.UserDB, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	token := secrets.GenerateToken()

	user, err := svc.writer.Create(ctx, repositories.CreateParams{
		Email:        email,
		PasswordHash: string(hashed),
		Role:         models.RoleUser,
		APIToken:     token,
		FirstName:    firstName,
		LastName:     lastName,
	})
	if repositories.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		logger.Log.Errorw("failed to create user", "err", err)
		return nil, err
	}

	now := time.Now().UTC()
	if err := svc.writer.SetLastLogin(ctx, user.ID, now); err != nil {
		logger.Log.Errorw("failed to record last login", "user_id", user.ID, "err", err)
	} else {
		user.LastLogin = sql.NullTime{Time: now, Valid: true}
	}

	svc.publisher.Publish(ctx, events.UserRegistered, models.NewUserJSON(user))
	return user, nil
}

// ForgotPassword issues a fresh reset token and mails the reset link.
func (svc *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := svc.reader.ByEmail(ctx, email)
	if err != nil {
		logger.Log.Errorw("failed to look up user", "err", err)
		return err
	}
	if user == nil {
		return ErrUnknownEmail
	}

	token := secrets.GenerateToken()

	if err := svc.writer.SetResetToken(ctx, user.ID, token, time.Now().UTC()); err != nil {
		logger.Log.Errorw("failed to store reset token", "user_id", user.ID, "err", err)
		return err
	}

	link := svc.resetLink(user.Email, token)
	msg := mailer.Message{
		To:      user.Email,
		Subject: "Password reset request",
		Body: fmt.Sprintf(
			"Someone requested a password reset for this address.\n\n"+
				"Follow the link below to choose a new password. The link is valid for 7 days.\n\n%s\n\n"+
				"If you did not request a reset, you can ignore this mail.\n",
			link,
		),
	}

	// Mail delivery must not hold up or fail the request.
	go func(msg mailer.Message) {
		if err := svc.mailer.Send(context.WithoutCancel(ctx), msg); err != nil {
			logger.Log.Errorw("failed to send reset mail", "to", msg.To, "err", err)
		}
	}(msg)

	return nil
}

// ResetPassword sets a new password for the account matching the
// email and reset token, provided the token was issued within
// ResetTokenWindow. The token is cleared on success.
func (svc *AuthService) ResetPassword(ctx context.Context, email, token, password string) error {
	user, err := svc.reader.ByResetToken(ctx, email, token, time.Now().UTC().Add(-ResetTokenWindow))
	if err != nil {
		logger.Log.Errorw("failed to look up reset token", "err", err)
		return err
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return err
	}

	if err := svc.writer.SetPassword(ctx, user.ID, string(hashed)); err != nil {
		logger.Log.Errorw("failed to set password", "user_id", user.ID, "err", err)
		return err
	}

	svc.publisher.Publish(ctx, events.PasswordReset, models.NewUserJSON(user))
	return nil
}

func (svc *AuthService) resetLink(email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return svc.baseURL + "/users/reset_password?" + q.Encode()
}
