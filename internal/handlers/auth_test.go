package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskminder/taskminder/internal/auth"
	"github.com/taskminder/taskminder/internal/database"
	"github.com/taskminder/taskminder/internal/dto"
	"github.com/taskminder/taskminder/internal/middleware"
	"github.com/taskminder/taskminder/internal/models"
	"github.com/taskminder/taskminder/internal/repository"
	"github.com/taskminder/taskminder/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupAuthTestEnv wires a router with the auth routes against an
// in-memory database, the same shape main() builds.
func setupAuthTestEnv(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))
	database.SetDB(db)

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		SecretKey:     "test-secret",
		TokenDuration: time.Hour,
		Issuer:        "taskminder-test",
	})
	authService := services.NewAuthService(repository.NewUserRepository(db))
	handler := NewAuthHandler(authService, jwtManager)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/auth/signup", handler.Signup)
	r.POST("/api/auth/login", handler.Login)
	r.GET("/api/auth/me", middleware.RequireAuth(jwtManager), handler.GetCurrentUser)
	return r
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSignup_Success(t *testing.T) {
	r := setupAuthTestEnv(t)

	w := postJSON(r, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var user dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotZero(t, user.ID)
	// The password hash must never appear in a response
	assert.NotContains(t, w.Body.String(), "password")
}

func TestSignup_ShortPassword(t *testing.T) {
	r := setupAuthTestEnv(t)

	w := postJSON(r, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	r := setupAuthTestEnv(t)

	payload := map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}
	require.Equal(t, http.StatusCreated, postJSON(r, "/api/auth/signup", payload).Code)

	payload["username"] = "alice2"
	w := postJSON(r, "/api/auth/signup", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	r := setupAuthTestEnv(t)

	require.Equal(t, http.StatusCreated, postJSON(r, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}).Code)

	w := postJSON(r, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := setupAuthTestEnv(t)

	require.Equal(t, http.StatusCreated, postJSON(r, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}).Code)

	w := postJSON(r, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	r := setupAuthTestEnv(t)

	w := postJSON(r, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCurrentUser_WithToken(t *testing.T) {
	r := setupAuthTestEnv(t)

	require.Equal(t, http.StatusCreated, postJSON(r, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}).Code)

	login := postJSON(r, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &resp))

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var user dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "alice", user.Username)
}

func TestGetCurrentUser_MissingToken(t *testing.T) {
	r := setupAuthTestEnv(t)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetCurrentUser_MalformedHeader(t *testing.T) {
	r := setupAuthTestEnv(t)

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Token abcdef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
