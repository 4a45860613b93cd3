package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/olegkuprianov/webapp-starter/internal/events"
	"github.com/olegkuprianov/webapp-starter/internal/logger"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/pagination"
	"github.com/olegkuprianov/webapp-starter/internal/repositories"
	"github.com/olegkuprianov/webapp-starter/internal/secrets"
)

// Error variables
var (
	ErrNotFound    = errors.New("user does not exist")
	ErrEmptyUpdate = errors.New("no fields to update")
)

// UserReader defines read-only operations for user management.
type UserReader interface {
	Find(ctx context.Context, id int64) (*models.UserDB, error)
	List(ctx context.Context, limit, offset int) ([]models.UserDB, error)
	Count(ctx context.Context) (int, error)
}

// UserWriter defines write operations for user management.
type UserWriter interface {
	Create(ctx context.Context, p repositories.CreateParams) (*models.UserDB, error)
	Update(ctx context.Context, id int64, p repositories.UpdateParams) (int64, error)
	UpdateProfile(ctx context.Context, userID int64, p repositories.ProfileParams) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// UserService implements administrative user management.
type UserService struct {
	reader    UserReader
	writer    UserWriter
	publisher events.Publisher
	perPage   int
}

// NewUserService creates a new UserService instance. perPage is the
// fixed page size for listings.
func NewUserService(reader UserReader, writer UserWriter, publisher events.Publisher, perPage int) *UserService {
	return &UserService{
		reader:    reader,
		writer:    writer,
		publisher: publisher,
		perPage:   perPage,
	}
}

// List returns one page of users together with paging metadata.
func (svc *UserService) List(ctx context.Context, page int) ([]models.UserDB, pagination.Page, error) {
	count, err := svc.reader.Count(ctx)
	if err != nil {
		logger.Log.Errorw("failed to count users", "err", err)
		return nil, pagination.Page{}, err
	}

	pg := pagination.New(page, svc.perPage, count)
	users, err := svc.reader.List(ctx, pg.Limit(), pg.Offset())
	if err != nil {
		logger.Log.Errorw("failed to list users", "err", err)
		return nil, pagination.Page{}, err
	}
	return users, pg, nil
}

// Get returns a single user or ErrNotFound.
func (svc *UserService) Get(ctx context.Context, id int64) (*models.UserDB, error) {
	user, err := svc.reader.Find(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to load user", "user_id", id, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// CreateInput carries the fields of an administrative create.
type CreateInput struct {
	Email     string
	Password  string
	Role      string
	FirstName string
	LastName  string
}

// Create adds a user account with the given role. A duplicate email
// comes back as ErrEmailTaken.
func (svc *UserService) Create(ctx context.Context, in CreateInput) (*models.UserDB, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return nil, err
	}

	token := secrets.GenerateToken()

	user, err := svc.writer.Create(ctx, repositories.CreateParams{
		Email:        in.Email,
		PasswordHash: string(hashed),
		Role:         in.Role,
		APIToken:     token,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	if repositories.IsUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		logger.Log.Errorw("failed to create user", "err", err)
		return nil, err
	}

	svc.publisher.Publish(ctx, events.UserCreated, models.NewUserJSON(user))
	return user, nil
}

// UpdateInput carries the sparse field set of an update; empty strings
// leave the field untouched.
type UpdateInput struct {
	Email     string
	Password  string
	Role      string
	FirstName string
	LastName  string
}

func (in UpdateInput) empty() bool {
	return in == UpdateInput{}
}

// Update applies the non-empty fields to the user and returns the
// updated record. An update with no fields is ErrEmptyUpdate; an
// unknown id is ErrNotFound; a duplicate email is ErrEmailTaken.
func (svc *UserService) Update(ctx context.Context, id int64, in UpdateInput) (*models.UserDB, error) {
	if in.empty() {
		return nil, ErrEmptyUpdate
	}

	user, err := svc.reader.Find(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to load user", "user_id", id, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	params := repositories.UpdateParams{Email: in.Email, Role: in.Role}
	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Log.Errorw("failed to hash password", "err", err)
			return nil, err
		}
		params.PasswordHash = string(hashed)
	}

	if params != (repositories.UpdateParams{}) {
		_, err := svc.writer.Update(ctx, id, params)
		if repositories.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		if err != nil {
			logger.Log.Errorw("failed to update user", "user_id", id, "err", err)
			return nil, err
		}
	}

	if in.FirstName != "" || in.LastName != "" {
		_, err := svc.writer.UpdateProfile(ctx, id, repositories.ProfileParams{
			FirstName: in.FirstName,
			LastName:  in.LastName,
		})
		if err != nil {
			logger.Log.Errorw("failed to update profile", "user_id", id, "err", err)
			return nil, err
		}
	}

	updated, err := svc.reader.Find(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to reload user", "user_id", id, "err", err)
		return nil, err
	}

	svc.publisher.Publish(ctx, events.UserUpdated, models.NewUserJSON(updated))
	return updated, nil
}

// Delete removes the user and its profile. An unknown id is ErrNotFound.
func (svc *UserService) Delete(ctx context.Context, id int64) error {
	affected, err := svc.writer.Delete(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to delete user", "user_id", id, "err", err)
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	svc.publisher.Publish(ctx, events.UserDeleted, map[string]int64{"id": id})
	return nil
}
