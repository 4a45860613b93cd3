package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegkuprianov/webapp-starter/internal/events"
	"github.com/olegkuprianov/webapp-starter/internal/mailer"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/repositories"
)

type fakeAuthReader struct {
	user      *models.UserDB
	resetSent time.Time
	err       error
}

func (f *fakeAuthReader) ByEmail(_ context.Context, email string) (*models.UserDB, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.Email == models.NormalizeEmail(email) {
		return f.user, nil
	}
	return nil, nil
}

func (f *fakeAuthReader) ByResetToken(_ context.Context, email, token string, since time.Time) (*models.UserDB, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user == nil || f.user.Email != models.NormalizeEmail(email) {
		return nil, nil
	}
	if !f.user.PasswordResetToken.Valid || f.user.PasswordResetToken.String != token {
		return nil, nil
	}
	if f.resetSent.Before(since) {
		return nil, nil
	}
	return f.user, nil
}

type fakeAuthWriter struct {
	created      *repositories.CreateParams
	createErr    error
	lastLogin    time.Time
	resetToken   string
	passwordHash string
}

func (f *fakeAuthWriter) Create(_ context.Context, p repositories.CreateParams) (*models.UserDB, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &p
	return &models.UserDB{ID: 1, Email: models.NormalizeEmail(p.Email), Role: p.Role, APIToken: p.APIToken}, nil
}

func (f *fakeAuthWriter) SetLastLogin(_ context.Context, _ int64, at time.Time) error {
	f.lastLogin = at
	return nil
}

func (f *fakeAuthWriter) SetResetToken(_ context.Context, _ int64, token string, _ time.Time) error {
	f.resetToken = token
	return nil
}

func (f *fakeAuthWriter) SetPassword(_ context.Context, _ int64, hash string) error {
	f.passwordHash = hash
	return nil
}

type fakeMailer struct {
	sent chan mailer.Message
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{sent: make(chan mailer.Message, 1)}
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.sent <- msg
	return nil
}

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) Publish(_ context.Context, event string, _ any) {
	f.events = append(f.events, event)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthService_Login(t *testing.T) {
	user := &models.UserDB{ID: 1, Email: "user@example.com", PasswordHash: hashPassword(t, "secret"), Role: models.RoleUser}
	reader := &fakeAuthReader{user: user}
	writer := &fakeAuthWriter{}
	svc := NewAuthService(reader, writer, newFakeMailer(), &fakePublisher{}, "http://localhost:8080")

	got, err := svc.Login(context.Background(), "User@Example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.False(t, writer.lastLogin.IsZero(), "successful login records last_login")
	require.True(t, got.LastLogin.Valid, "returned record carries the fresh login time")
	assert.Equal(t, writer.lastLogin, got.LastLogin.Time)
}

func TestAuthService_Login_Invalid(t *testing.T) {
	user := &models.UserDB{ID: 1, Email: "user@example.com", PasswordHash: hashPassword(t, "secret")}
	svc := NewAuthService(&fakeAuthReader{user: user}, &fakeAuthWriter{}, newFakeMailer(), &fakePublisher{}, "")

	_, unknownErr := svc.Login(context.Background(), "nobody@example.com", "secret")
	_, wrongErr := svc.Login(context.Background(), "user@example.com", "nope")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr, "unknown email and wrong password are indistinguishable")
}

func TestAuthService_Register(t *testing.T) {
	writer := &fakeAuthWriter{}
	pub := &fakePublisher{}
	svc := NewAuthService(&fakeAuthReader{}, writer, newFakeMailer(), pub, "")

	user, err := svc.Register(context.Background(), "New@Example.com", "secret", "John", "Smith")
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, user.Role)
	require.NotNil(t, writer.created)
	assert.Len(t, writer.created.APIToken, 40)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(writer.created.PasswordHash), []byte("secret")))
	assert.False(t, writer.lastLogin.IsZero(), "registration logs the user in")
	require.True(t, user.LastLogin.Valid, "returned record carries the fresh login time")
	assert.Equal(t, writer.lastLogin, user.LastLogin.Time)
	assert.Equal(t, []string{events.UserRegistered}, pub.events)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	writer := &fakeAuthWriter{createErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}}
	svc := NewAuthService(&fakeAuthReader{}, writer, newFakeMailer(), &fakePublisher{}, "")

	_, err := svc.Register(context.Background(), "dup@example.com", "secret", "John", "Smith")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthService_ForgotPassword(t *testing.T) {
	user := &models.UserDB{ID: 1, Email: "user@example.com"}
	writer := &fakeAuthWriter{}
	m := newFakeMailer()
	svc := NewAuthService(&fakeAuthReader{user: user}, writer, m, &fakePublisher{}, "http://localhost:8080")

	require.NoError(t, svc.ForgotPassword(context.Background(), "user@example.com"))
	assert.Len(t, writer.resetToken, 40)

	select {
	case msg := <-m.sent:
		assert.Equal(t, "user@example.com", msg.To)
		assert.Contains(t, msg.Body, "http://localhost:8080/users/reset_password?email=user%40example.com&token="+writer.resetToken)
	case <-time.After(time.Second):
		t.Fatal("reset mail was never sent")
	}
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	svc := NewAuthService(&fakeAuthReader{}, &fakeAuthWriter{}, newFakeMailer(), &fakePublisher{}, "")

	err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUnknownEmail)
}

func TestAuthService_ResetPassword_Window(t *testing.T) {
	tests := []struct {
		name    string
		sentAgo time.Duration
		wantErr error
	}{
		{name: "three days old token works", sentAgo: 3 * 24 * time.Hour},
		{name: "eight days old token is expired", sentAgo: 8 * 24 * time.Hour, wantErr: ErrInvalidResetToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.UserDB{
				ID:                 1,
				Email:              "user@example.com",
				PasswordResetToken: sql.NullString{String: "resettoken", Valid: true},
			}
			reader := &fakeAuthReader{user: user, resetSent: time.Now().Add(-tt.sentAgo)}
			writer := &fakeAuthWriter{}
			svc := NewAuthService(reader, writer, newFakeMailer(), &fakePublisher{}, "")

			err := svc.ResetPassword(context.Background(), "user@example.com", "resettoken", "newsecret")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, writer.passwordHash)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(writer.passwordHash), []byte("newsecret")))
		})
	}
}

func TestAuthService_ResetPassword_WrongToken(t *testing.T) {
	user := &models.UserDB{ID: 1, Email: "user@example.com", PasswordResetToken: sql.NullString{String: "resettoken", Valid: true}}
	reader := &fakeAuthReader{user: user, resetSent: time.Now()}
	svc := NewAuthService(reader, &fakeAuthWriter{}, newFakeMailer(), &fakePublisher{}, "")

	err := svc.ResetPassword(context.Background(), "user@example.com", "othertoken", "newsecret")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestAuthService_Login_ReaderError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewAuthService(&fakeAuthReader{err: boom}, &fakeAuthWriter{}, newFakeMailer(), &fakePublisher{}, "")

	_, err := svc.Login(context.Background(), "user@example.com", "secret")
	assert.ErrorIs(t, err, boom)
}
