package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shop/internal/domain/model"
	"shop/internal/middleware"
	"shop/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type mwErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) error {
	args := m.Called(ctx, id, firstName, lastName)
	return args.Error(0)
}

func (m *mockUserRepo) SetAccountType(ctx context.Context, id uuid.UUID, t model.AccountType) error {
	args := m.Called(ctx, id, t)
	return args.Error(0)
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func mustMakeJWT(t *testing.T, key string, sub any, tv int, method jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": sub,
		"tv":  tv,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Minute).Unix(),
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func runRequest(t *testing.T, e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&r))
	return r
}

func jwtOnly() *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"user_id": c.Get(middleware.CtxUserIDKey).(uuid.UUID).String(),
			"tv":      c.Get(middleware.CtxTokenVersionKey).(int),
		})
	}, middleware.AuthJWT(secret))
	return e
}

func TestAuthJWT_Rejects(t *testing.T) {
	id := uuid.New()

	cases := map[string]string{
		"no header":     "",
		"bad scheme":    "Token abc.def.ghi",
		"empty bearer":  "Bearer ",
		"bad signature": "Bearer " + mustMakeJWT(t, "wrong-secret", id.String(), 0, jwt.SigningMethodHS256),
		"wrong alg":     "Bearer " + mustMakeJWT(t, secret, id.String(), 0, jwt.SigningMethodHS512),
		"numeric sub":   "Bearer " + mustMakeJWT(t, secret, 123, 0, jwt.SigningMethodHS256),
		"nil uuid sub":  "Bearer " + mustMakeJWT(t, secret, uuid.Nil.String(), 0, jwt.SigningMethodHS256),
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec := runRequest(t, jwtOnly(), header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeError(t, rec).Code)
		})
	}
}

func TestAuthJWT_Expired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": uuid.NewString(),
		"tv":  0,
		"iat": time.Now().Add(-time.Hour).Unix(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	rec := runRequest(t, jwtOnly(), "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_SetsContext(t *testing.T) {
	id := uuid.New()
	raw := mustMakeJWT(t, secret, id.String(), 7, jwt.SigningMethodHS256)

	rec := runRequest(t, jwtOnly(), "Bearer "+raw)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		UserID string `json:"user_id"`
		TV     int    `json:"tv"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, id.String(), body.UserID)
	assert.Equal(t, 7, body.TV)
}

func loadUserEcho(repo repository.UserRepository, extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	mws := append([]echo.MiddlewareFunc{middleware.AuthJWT(secret), middleware.LoadUser(repo)}, extra...)
	e.GET("/protected", func(c echo.Context) error {
		u, ok := middleware.CurrentUser(c)
		if !ok {
			return c.NoContent(http.StatusTeapot)
		}
		return c.JSON(http.StatusOK, map[string]string{"email": u.Email})
	}, mws...)
	return e
}

func TestLoadUser(t *testing.T) {
	id := uuid.New()

	t.Run("stores user", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", mock.Anything, id).Return(&model.User{BaseModel: model.BaseModel{ID: id}, Email: "a@x.io", IsActive: true, TokenVersion: 2}, nil)

		rec := runRequest(t, loadUserEcho(repo), "Bearer "+mustMakeJWT(t, secret, id.String(), 2, jwt.SigningMethodHS256))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "a@x.io")
		repo.AssertExpectations(t)
	})

	t.Run("token version mismatch", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", mock.Anything, id).Return(&model.User{BaseModel: model.BaseModel{ID: id}, IsActive: true, TokenVersion: 3}, nil)

		rec := runRequest(t, loadUserEcho(repo), "Bearer "+mustMakeJWT(t, secret, id.String(), 2, jwt.SigningMethodHS256))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "token revoked", decodeError(t, rec).Error)
	})

	t.Run("inactive user", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", mock.Anything, id).Return(&model.User{BaseModel: model.BaseModel{ID: id}, IsActive: false}, nil)

		rec := runRequest(t, loadUserEcho(repo), "Bearer "+mustMakeJWT(t, secret, id.String(), 0, jwt.SigningMethodHS256))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "forbidden", decodeError(t, rec).Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", mock.Anything, id).Return(nil, repository.ErrUserNotFound)

		rec := runRequest(t, loadUserEcho(repo), "Bearer "+mustMakeJWT(t, secret, id.String(), 0, jwt.SigningMethodHS256))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSellerGuard(t *testing.T) {
	id := uuid.New()
	token := "Bearer " + mustMakeJWT(t, secret, id.String(), 0, jwt.SigningMethodHS256)

	cases := []struct {
		name string
		user model.User
		want int
	}{
		{"buyer", model.User{AccountType: model.AccountTypeBuyer}, http.StatusForbidden},
		{"seller", model.User{AccountType: model.AccountTypeSeller}, http.StatusOK},
		{"staff buyer", model.User{AccountType: model.AccountTypeBuyer, IsStaff: true}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := tc.user
			u.ID = id
			u.IsActive = true

			repo := new(mockUserRepo)
			repo.On("FindByID", mock.Anything, id).Return(&u, nil)

			rec := runRequest(t, loadUserEcho(repo, middleware.SellerGuard()), token)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
