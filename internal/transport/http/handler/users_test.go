package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sparkmeet/sparkmeet-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDirectory) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockDirectory) Create(ctx context.Context, u *domain.User) (string, error) {
	args := m.Called(ctx, u)
	return args.String(0), args.Error(1)
}

func getFindUser(h *UserHandler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.FindUser(rec, req)
	return rec
}

func TestFindUser_ByMobile(t *testing.T) {
	d := &mockDirectory{}
	d.On("GetByPhone", mock.Anything, "13800001111").
		Return(&domain.User{UserID: "u1", Phone: "13800001111", PasswordHash: "h"}, nil)

	rec := getFindUser(NewUserHandler(d), "/user/findUser?mobile=13800001111")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"u1"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestFindUser_ByID(t *testing.T) {
	d := &mockDirectory{}
	d.On("Get", mock.Anything, "u1").
		Return(&domain.User{UserID: "u1", Phone: "13800001111"}, nil)

	rec := getFindUser(NewUserHandler(d), "/user/findUser?id=u1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mobile":"13800001111"`)
	d.AssertNotCalled(t, "GetByPhone", mock.Anything, mock.Anything)
}

func TestFindUser_MissingParams(t *testing.T) {
	d := &mockDirectory{}
	rec := getFindUser(NewUserHandler(d), "/user/findUser")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	d.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	d.AssertNotCalled(t, "GetByPhone", mock.Anything, mock.Anything)
}

func TestFindUser_UnknownID(t *testing.T) {
	d := &mockDirectory{}
	d.On("Get", mock.Anything, "nope").
		Return(nil, fmt.Errorf("user not found: %w", domain.ErrNotFound))

	rec := getFindUser(NewUserHandler(d), "/user/findUser?id=nope")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveUser_Created(t *testing.T) {
	d := &mockDirectory{}
	d.On("GetByPhone", mock.Anything, "13800001111").
		Return(nil, fmt.Errorf("user not found: %w", domain.ErrNotFound))
	d.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Phone == "13800001111" && u.PasswordHash != "" && u.PasswordHash != "secret1"
	})).Return("u1", nil)

	rec := postJSON(t, NewUserHandler(d).SaveUser, `{"mobile":"13800001111","password":"secret1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"u1"`)
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestSaveUser_PhoneTaken(t *testing.T) {
	d := &mockDirectory{}
	d.On("GetByPhone", mock.Anything, "13800001111").
		Return(&domain.User{UserID: "u1", Phone: "13800001111"}, nil)

	rec := postJSON(t, NewUserHandler(d).SaveUser, `{"mobile":"13800001111","password":"secret1"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	d.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
