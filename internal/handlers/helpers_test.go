package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegkuprianov/webapp-starter/internal/models"
	"github.com/olegkuprianov/webapp-starter/internal/pagination"
	"github.com/olegkuprianov/webapp-starter/internal/services"
)

type fakeUserService struct {
	users     map[int64]*models.UserDB
	list      []models.UserDB
	page      pagination.Page
	listedFor int

	created   *services.CreateInput
	updated   *services.UpdateInput
	updatedID int64
	deleted   []int64

	createErr error
	updateErr error
	deleteErr error
}

func (f *fakeUserService) List(_ context.Context, page int) ([]models.UserDB, pagination.Page, error) {
	f.listedFor = page
	return f.list, f.page, nil
}

func (f *fakeUserService) Get(_ context.Context, id int64) (*models.UserDB, error) {
	if u := f.users[id]; u != nil {
		return u, nil
	}
	return nil, services.ErrNotFound
}

func (f *fakeUserService) Create(_ context.Context, in services.CreateInput) (*models.UserDB, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = &in
	return &models.UserDB{ID: 1, Email: models.NormalizeEmail(in.Email), Role: in.Role}, nil
}

func (f *fakeUserService) Update(_ context.Context, id int64, in services.UpdateInput) (*models.UserDB, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updatedID = id
	f.updated = &in
	return &models.UserDB{ID: id, Email: "updated@example.com"}, nil
}

func (f *fakeUserService) Delete(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}
