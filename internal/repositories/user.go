package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/middlewares"
	"github.com/olegkuprianov/webapp-starter/internal/models"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx public surfaces so
// repositories transparently join the per-request transaction.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

func logQuery(query string, args []any, err error) {
	logger.Log.Infow("query",
		"sql", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)
}

// IsUniqueViolation reports whether err is a uniqueness-constraint
// violation. Under pgx the SQLSTATE is checked; for other drivers the
// constraint name set is small enough that substring matching on the
// error text is reliable.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// UserReadRepository reads user records.
type UserReadRepository struct {
	db *sqlx.DB
}

// NewUserReadRepository creates a UserReadRepository.
func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

func (r *UserReadRepository) q(ctx context.Context) queryer {
	if tx := middlewares.GetTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

const userColumns = `id, email, password, role, api_token, password_reset_token, password_reset_sent, last_login, updated, created`

// Find returns the user with the given id, or nil.
func (r *UserReadRepository) Find(ctx context.Context, id int64) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user models.UserDB
	err := r.q(ctx).GetContext(ctx, &user, query, id)
	logQuery(query, []any{id}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.attachProfile(ctx, &user)
}

// ByEmail returns the user with the given normalized email, or nil.
func (r *UserReadRepository) ByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user models.UserDB
	err := r.q(ctx).GetContext(ctx, &user, query, models.NormalizeEmail(email))
	logQuery(query, []any{email}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.attachProfile(ctx, &user)
}

// ByEmailAndToken returns the user matching both the normalized email
// and the exact API token, or nil. Used by header authentication.
func (r *UserReadRepository) ByEmailAndToken(ctx context.Context, email, token string) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND api_token = $2`

	var user models.UserDB
	err := r.q(ctx).GetContext(ctx, &user, query, models.NormalizeEmail(email), token)
	logQuery(query, []any{email, "<token>"}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.attachProfile(ctx, &user)
}

// ByResetToken returns the user matching the normalized email and reset
// token whose reset request is no older than since, or nil.
func (r *UserReadRepository) ByResetToken(ctx context.Context, email, token string, since time.Time) (*models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE email = $1 AND password_reset_token = $2 AND password_reset_sent >= $3`

	var user models.UserDB
	err := r.q(ctx).GetContext(ctx, &user, query, models.NormalizeEmail(email), token, since)
	logQuery(query, []any{email, "<token>", since}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.attachProfile(ctx, &user)
}

// List returns one page of users ordered by id, profiles attached.
func (r *UserReadRepository) List(ctx context.Context, limit, offset int) ([]models.UserDB, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`

	var users []models.UserDB
	err := r.q(ctx).SelectContext(ctx, &users, query, limit, offset)
	logQuery(query, []any{limit, offset}, err)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return users, nil
	}

	ids := make([]int64, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}

	profileQuery, args, err := sqlx.In(
		`SELECT id, user_id, first_name, last_name, updated, created FROM users_profiles WHERE user_id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	profileQuery = r.db.Rebind(profileQuery)

	var profiles []models.UserProfileDB
	err = r.q(ctx).SelectContext(ctx, &profiles, profileQuery, args...)
	logQuery(profileQuery, args, err)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int64]*models.UserProfileDB, len(profiles))
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}
	for i := range users {
		users[i].Profile = byUser[users[i].ID]
	}
	return users, nil
}

// Count returns the total number of users.
func (r *UserReadRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM users`

	var count int
	err := r.q(ctx).GetContext(ctx, &count, query)
	logQuery(query, nil, err)
	return count, err
}

func (r *UserReadRepository) attachProfile(ctx context.Context, user *models.UserDB) (*models.UserDB, error) {
	query := `SELECT id, user_id, first_name, last_name, updated, created FROM users_profiles WHERE user_id = $1`

	var profile models.UserProfileDB
	err := r.q(ctx).GetContext(ctx, &profile, query, user.ID)
	logQuery(query, []any{user.ID}, err)

	if errors.Is(err, sql.ErrNoRows) {
		return user, nil
	}
	if err != nil {
		return nil, err
	}
	user.Profile = &profile
	return user, nil
}

// UserWriteRepository mutates user records.
type UserWriteRepository struct {
	db *sqlx.DB
}

// NewUserWriteRepository creates a UserWriteRepository.
func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

func (r *UserWriteRepository) q(ctx context.Context) queryer {
	if tx := middlewares.GetTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// CreateParams carries everything needed to insert a user with profile.
type CreateParams struct {
	Email        string
	PasswordHash string
	Role         string
	APIToken     string
	FirstName    string
	LastName     string
}

// Create inserts a user and its profile, returning the stored record.
func (r *UserWriteRepository) Create(ctx context.Context, p CreateParams) (*models.UserDB, error) {
	query := `
		INSERT INTO users (email, password, role, api_token, updated, created)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + userColumns
	args := []any{models.NormalizeEmail(p.Email), p.PasswordHash, p.Role, p.APIToken}

	var user models.UserDB
	err := r.q(ctx).GetContext(ctx, &user, query, args...)
	logQuery(query, []any{p.Email, "<password>", p.Role, "<token>"}, err)
	if err != nil {
		return nil, err
	}

	profileQuery := `
		INSERT INTO users_profiles (user_id, first_name, last_name, updated, created)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, user_id, first_name, last_name, updated, created`

	var profile models.UserProfileDB
	err = r.q(ctx).GetContext(ctx, &profile, profileQuery, user.ID, p.FirstName, p.LastName)
	logQuery(profileQuery, []any{user.ID, p.FirstName, p.LastName}, err)
	if err != nil {
		return nil, err
	}

	user.Profile = &profile
	return &user, nil
}

// UpdateParams carries the sparse field set of an update; empty strings
// leave the column untouched.
type UpdateParams struct {
	Email        string
	PasswordHash string
	Role         string
}

// Update applies the non-empty fields to the user row and refreshes its
// updated timestamp. Returns the number of affected rows.
func (r *UserWriteRepository) Update(ctx context.Context, id int64, p UpdateParams) (int64, error) {
	sets := []string{"updated = NOW()"}
	args := []any{}
	logArgs := []any{}
	n := 1

	appendSet := func(column, value, logged string) {
		n++
		sets = append(sets, column+" = $"+strconv.Itoa(n))
		args = append(args, value)
		logArgs = append(logArgs, logged)
	}
	if p.Email != "" {
		appendSet("email", models.NormalizeEmail(p.Email), p.Email)
	}
	if p.PasswordHash != "" {
		appendSet("password", p.PasswordHash, "<password>")
	}
	if p.Role != "" {
		appendSet("role", p.Role, p.Role)
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	args = append([]any{id}, args...)

	res, err := r.q(ctx).ExecContext(ctx, query, args...)
	var affected int64
	if res != nil {
		affected, _ = res.RowsAffected()
	}
	logQuery(query, append([]any{id}, logArgs...), err)
	return affected, err
}

// ProfileParams carries the sparse field set of a profile update.
type ProfileParams struct {
	FirstName string
	LastName  string
}

// UpdateProfile applies the non-empty fields to the user's profile.
func (r *UserWriteRepository) UpdateProfile(ctx context.Context, userID int64, p ProfileParams) (int64, error) {
	sets := []string{"updated = NOW()"}
	args := []any{}
	n := 1

	if p.FirstName != "" {
		n++
		sets = append(sets, "first_name = $"+strconv.Itoa(n))
		args = append(args, p.FirstName)
	}
	if p.LastName != "" {
		n++
		sets = append(sets, "last_name = $"+strconv.Itoa(n))
		args = append(args, p.LastName)
	}

	query := `UPDATE users_profiles SET ` + strings.Join(sets, ", ") + ` WHERE user_id = $1`
	args = append([]any{userID}, args...)

	res, err := r.q(ctx).ExecContext(ctx, query, args...)
	var affected int64
	if res != nil {
		affected, _ = res.RowsAffected()
	}
	logQuery(query, args, err)
	return affected, err
}

// Delete removes the user; the profile row goes with it via the
// cascading foreign key. Returns the number of affected rows.
func (r *UserWriteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	query := `DELETE FROM users WHERE id = $1`

	res, err := r.q(ctx).ExecContext(ctx, query, id)
	var affected int64
	if res != nil {
		affected, _ = res.RowsAffected()
	}
	logQuery(query, []any{id}, err)
	return affected, err
}

// SetLastLogin records a successful login.
func (r *UserWriteRepository) SetLastLogin(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE users SET last_login = $2, updated = NOW() WHERE id = $1`

	_, err := r.q(ctx).ExecContext(ctx, query, id, at)
	logQuery(query, []any{id, at}, err)
	return err
}

// SetResetToken stores a fresh password-reset token and its issuance time.
func (r *UserWriteRepository) SetResetToken(ctx context.Context, id int64, token string, sent time.Time) error {
	query := `UPDATE users SET password_reset_token = $2, password_reset_sent = $3, updated = NOW() WHERE id = $1`

	_, err := r.q(ctx).ExecContext(ctx, query, id, token, sent)
	logQuery(query, []any{id, "<token>", sent}, err)
	return err
}

// SetPassword stores a new password hash and clears the reset token so
// it cannot be replayed.
func (r *UserWriteRepository) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE users SET password = $2, password_reset_token = NULL, updated = NOW() WHERE id = $1`

	_, err := r.q(ctx).ExecContext(ctx, query, id, passwordHash)
	logQuery(query, []any{id, "<password>"}, err)
	return err
}
