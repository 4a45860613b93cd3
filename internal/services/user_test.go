package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegkuprianov/webapp-starter/internal/events"
	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/repositories"
)

type fakeUserReader struct {
	users map[int64]*models.UserDB
	count int

	listLimit  int
	listOffset int
}

func (f *fakeUserReader) Find(_ context.Context, id int64) (*models.UserDB, error) {
	return f.users[id], nil
}

func (f *fakeUserReader) List(_ context.Context, limit, offset int) ([]models.UserDB, error) {
	f.listLimit = limit
	f.listOffset = offset
	return []models.UserDB{{ID: 1, Email: "a@example.com"}}, nil
}

func (f *fakeUserReader) Count(context.Context) (int, error) {
	return f.count, nil
}

type fakeUserWriter struct {
	created       *repositories.CreateParams
	createErr     error
	updated       *repositories.UpdateParams
	updateErr     error
	profile       *repositories.ProfileParams
	deleteRows    int64
	updateCalled  bool
	profileCalled bool
}

func (f *fakeUserWriter) Create(_ context.Context, p repositories.CreateParams) (*models.UserDB, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &p
	return &models.UserDB{ID: 1, Email: models.NormalizeEmail(p.Email), Role: p.Role}, nil
}

func (f *fakeUserWriter) Update(_ context.Context, _ int64, p repositories.UpdateParams) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	f.updateCalled = true
	f.updated = &p
	return 1, nil
}

func (f *fakeUserWriter) UpdateProfile(_ context.Context, _ int64, p repositories.ProfileParams) (int64, error) {
	f.profileCalled = true
	f.profile = &p
	return 1, nil
}

func (f *fakeUserWriter) Delete(context.Context, int64) (int64, error) {
	return f.deleteRows, nil
}

func TestUserService_List_Pagination(t *testing.T) {
	reader := &fakeUserReader{count: 102}
	svc := NewUserService(reader, &fakeUserWriter{}, &fakePublisher{}, 100)

	_, pg, err := svc.List(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, pg.Page)
	assert.Equal(t, 2, pg.PageCount)
	assert.Equal(t, 102, pg.ItemCount)
	assert.Equal(t, 100, reader.listLimit)
	assert.Equal(t, 100, reader.listOffset)
}

func TestUserService_Get(t *testing.T) {
	reader := &fakeUserReader{users: map[int64]*models.UserDB{7: {ID: 7, Email: "u@example.com"}}}
	svc := NewUserService(reader, &fakeUserWriter{}, &fakePublisher{}, 100)

	user, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)

	_, err = svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Create(t *testing.T) {
	writer := &fakeUserWriter{}
	pub := &fakePublisher{}
	svc := NewUserService(&fakeUserReader{}, writer, pub, 100)

	user, err := svc.Create(context.Background(), CreateInput{
		Email:     "admin@example.com",
		Password:  "secret",
		Role:      models.RoleAdmin,
		FirstName: "Ada",
		LastName:  "Admin",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdmin, user.Role)
	require.NotNil(t, writer.created)
	assert.Len(t, writer.created.APIToken, 40)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(writer.created.PasswordHash), []byte("secret")))
	assert.Equal(t, []string{events.UserCreated}, pub.events)
}

func TestUserService_Create_EmailTaken(t *testing.T) {
	writer := &fakeUserWriter{createErr: &pgconn.PgError{Code: "23505"}}
	svc := NewUserService(&fakeUserReader{}, writer, &fakePublisher{}, 100)

	_, err := svc.Create(context.Background(), CreateInput{Email: "dup@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_Update(t *testing.T) {
	reader := &fakeUserReader{users: map[int64]*models.UserDB{7: {ID: 7, Email: "u@example.com"}}}
	writer := &fakeUserWriter{}
	pub := &fakePublisher{}
	svc := NewUserService(reader, writer, pub, 100)

	_, err := svc.Update(context.Background(), 7, UpdateInput{Email: "new@example.com", FirstName: "Jane"})
	require.NoError(t, err)

	require.NotNil(t, writer.updated)
	assert.Equal(t, "new@example.com", writer.updated.Email)
	assert.Empty(t, writer.updated.PasswordHash)
	require.NotNil(t, writer.profile)
	assert.Equal(t, "Jane", writer.profile.FirstName)
	assert.Equal(t, []string{events.UserUpdated}, pub.events)
}

func TestUserService_Update_ProfileOnly(t *testing.T) {
	reader := &fakeUserReader{users: map[int64]*models.UserDB{7: {ID: 7}}}
	writer := &fakeUserWriter{}
	svc := NewUserService(reader, writer, &fakePublisher{}, 100)

	_, err := svc.Update(context.Background(), 7, UpdateInput{LastName: "Smith"})
	require.NoError(t, err)

	assert.False(t, writer.updateCalled, "no user columns touched")
	assert.True(t, writer.profileCalled)
}

func TestUserService_Update_Empty(t *testing.T) {
	svc := NewUserService(&fakeUserReader{}, &fakeUserWriter{}, &fakePublisher{}, 100)

	_, err := svc.Update(context.Background(), 7, UpdateInput{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)
}

func TestUserService_Update_NotFound(t *testing.T) {
	svc := NewUserService(&fakeUserReader{}, &fakeUserWriter{}, &fakePublisher{}, 100)

	_, err := svc.Update(context.Background(), 404, UpdateInput{Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_Update_EmailTaken(t *testing.T) {
	reader := &fakeUserReader{users: map[int64]*models.UserDB{7: {ID: 7}}}
	writer := &fakeUserWriter{updateErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}}
	svc := NewUserService(reader, writer, &fakePublisher{}, 100)

	_, err := svc.Update(context.Background(), 7, UpdateInput{Email: "taken@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_Delete(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewUserService(&fakeUserReader{}, &fakeUserWriter{deleteRows: 1}, pub, 100)

	require.NoError(t, svc.Delete(context.Background(), 7))
	assert.Equal(t, []string{events.UserDeleted}, pub.events)

	svc = NewUserService(&fakeUserReader{}, &fakeUserWriter{}, &fakePublisher{}, 100)
	assert.ErrorIs(t, svc.Delete(context.Background(), 404), ErrNotFound)
}
