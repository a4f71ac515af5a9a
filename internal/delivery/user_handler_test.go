package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"user_admin/internal/auth"
	"user_admin/internal/domain"
	"user_admin/internal/repository"
	"user_admin/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *gin.Engine
	tokens *auth.TokenManager
	repo   domain.UserRepository
}

type responseBody struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repo := repository.NewMemoryUserRepository(logger)
	tokens, err := auth.NewTokenManager("handler-test-secret", time.Hour)
	require.NoError(t, err)

	router := NewRouter(
		NewUserHandler(usecase.NewUserUseCase(repo, nil, logger), logger),
		NewAuthHandler(usecase.NewAuthUseCase(repo, tokens, logger), logger),
		tokens,
		logger,
	)
	return &testServer{router: router, tokens: tokens, repo: repo}
}

func (s *testServer) seed(t *testing.T, name string, roles ...domain.RoleName) *domain.User {
	t.Helper()
	user := &domain.User{UserName: name, Password: "password123", Email: name + "@example.com"}
	for _, r := range roles {
		user.Roles = append(user.Roles, domain.Role{Name: r})
	}
	created, err := s.repo.CreateUser(context.Background(), user)
	require.NoError(t, err)
	return created
}

func (s *testServer) bearer(t *testing.T, id string, roles ...domain.RoleName) string {
	t.Helper()
	token, err := s.tokens.Issue(id, roles)
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *testServer) do(t *testing.T, method, path, authHeader string, body interface{}) (*httptest.ResponseRecorder, responseBody) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp responseBody
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestAddUser_ByUserRole(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodPost, "/user/add", s.bearer(t, "1", domain.RoleUser), UserRequest{
		UserName: "newUser",
		Password: "password123",
		Email:    "newuser@gmail.com",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Success", resp.Status)
	assert.Equal(t, "User added successfully", resp.Message)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "newUser", created["userName"])
	assert.NotContains(t, created, "password")

	stored, err := s.repo.GetUserByName(context.Background(), "newUser")
	require.NoError(t, err)
	assert.Equal(t, []domain.RoleName{domain.RoleUser}, stored.RoleNames())
}

func TestAddUser_ValidationFailure(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodPost, "/user/add", s.bearer(t, "1", domain.RoleAdmin), UserRequest{
		UserName: "",
		Password: "password123",
		Email:    "not-an-email",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Fail", resp.Status)
	assert.Contains(t, resp.Errors, "userName")
	assert.Contains(t, resp.Errors, "email")
	assert.NotContains(t, resp.Errors, "password")

	users, err := s.repo.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestAddUser_UserCannotGrantAdmin(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodPost, "/user/add", s.bearer(t, "1", domain.RoleUser), UserRequest{
		UserName: "sneaky",
		Password: "password123",
		Email:    "sneaky@example.com",
		Roles:    []string{"ADMIN"},
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Fail", resp.Status)
}

func TestAddUser_Duplicate(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "tal", domain.RoleUser)

	w, _ := s.do(t, http.MethodPost, "/user/add", s.bearer(t, "1", domain.RoleAdmin), UserRequest{
		UserName: "tal",
		Password: "password123",
		Email:    "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddUser_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/user/add", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", s.bearer(t, "1", domain.RoleAdmin))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUser_ByAdmin(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "victim", domain.RoleUser)

	w, resp := s.do(t, http.MethodGet, "/user/delete/1", s.bearer(t, "99", domain.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User deleted successfully", resp.Message)

	w, _ = s.do(t, http.MethodDelete, "/user/delete/1", s.bearer(t, "99", domain.RoleAdmin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteUser_ByUserIsForbidden(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "victim", domain.RoleUser)

	w, resp := s.do(t, http.MethodGet, "/user/delete/1", s.bearer(t, "2", domain.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Fail", resp.Status)
	assert.NotEmpty(t, resp.Message)

	_, err := s.repo.GetUserByID(context.Background(), 1)
	assert.NoError(t, err, "user must still exist")
}

func TestDeleteUser_InvalidID(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodGet, "/user/delete/abc", s.bearer(t, "1", domain.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid user ID format", resp.Message)
}

func TestListUsers(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodGet, "/user/list", s.bearer(t, "1", domain.RoleUser), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Users retrieved successfully", resp.Message)
	assert.JSONEq(t, "[]", string(resp.Data))

	s.seed(t, "a", domain.RoleUser)
	s.seed(t, "b", domain.RoleManager)

	w, resp = s.do(t, http.MethodGet, "/user/list", s.bearer(t, "1", domain.RoleManager), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &users))
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0]["userName"])
	assert.Equal(t, "b", users[1]["userName"])
}

func TestEditUser_Form(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "tal", domain.RoleUser)

	w, resp := s.do(t, http.MethodGet, "/user/edit/1", s.bearer(t, "9", domain.RoleManager), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User retrieved successfully", resp.Message)

	var form struct {
		UserForm map[string]interface{} `json:"userForm"`
		Roles    []domain.Role          `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &form))
	assert.Equal(t, "tal", form.UserForm["userName"])
	assert.Equal(t, repository.DefaultRoles, form.Roles)

	w, _ = s.do(t, http.MethodGet, "/user/edit/1", s.bearer(t, "9", domain.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodGet, "/user/edit/42", s.bearer(t, "9", domain.RoleAdmin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateUser(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "tal", domain.RoleUser)

	w, resp := s.do(t, http.MethodPost, "/user/edit/1", s.bearer(t, "9", domain.RoleAdmin), UserRequest{
		UserName: "tal",
		Password: "changed123",
		Email:    "tal@new.example.com",
		Roles:    []string{"MANAGER"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User updated successfully", resp.Message)

	stored, err := s.repo.GetUserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "tal@new.example.com", stored.Email)
	assert.Equal(t, []domain.RoleName{domain.RoleManager}, stored.RoleNames())
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t)

	w, resp := s.do(t, http.MethodGet, "/user/list", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authorization header required", resp.Message)

	w, resp = s.do(t, http.MethodGet, "/user/list", "Bearer garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", resp.Message)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "admin", domain.RoleAdmin)

	w, _ := s.do(t, http.MethodPost, "/login", "", LoginRequest{UserName: "admin", Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)

	principal, err := s.tokens.PrincipalFromHeader("Bearer " + login.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", principal.ID)
	assert.True(t, principal.HasElevatedRole())

	w, _ = s.do(t, http.MethodGet, "/user/delete/1", "Bearer "+login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, "admin", domain.RoleAdmin)

	w, resp := s.do(t, http.MethodPost, "/login", "", LoginRequest{UserName: "admin", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", resp.Message)

	w, _ = s.do(t, http.MethodPost, "/login", "", map[string]string{"userName": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth_RequestID(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
