package handler

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
	"golang.org/x/crypto/bcrypt"

	"github.com/proavijit/projectpulse-api/internal/middleware"
	"github.com/proavijit/projectpulse-api/internal/models"
	"github.com/proavijit/projectpulse-api/internal/repository"
	"github.com/proavijit/projectpulse-api/internal/service"
	"github.com/proavijit/projectpulse-api/internal/store"
)

func newAuthTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	st := store.New(store.Options{
		Backend: store.NewMemoryBackend(),
		Seed: func(time.Time) (store.Blob, error) {
			return store.Blob{
				store.Users: {{
					store.FieldID: "u1",
					"name":       "Admin User",
					"email":      "admin@projectpulse.com",
					"password":   string(hash),
					"role":       "Admin",
				}},
			}, nil
		},
	})

	authService := service.NewAuthService(repository.NewUserRepository(st), nil, nil, service.AuthConfig{
		TokenSecret: "test_secret",
		TokenExpiry: time.Hour,
		Issuer:      "projectpulse-test",
	})
	authHandler := NewAuthHandler(authService)

	r := gin.New()
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/me", middleware.JWT(authService), authHandler.Me)
	return r
}

func TestLoginEndpoint(t *testing.T) {
	router := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "admin@projectpulse.com", "password": "admin123"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Token)
	assert.Equal(t, models.RoleAdmin, envelope.Data.User.Role)
}

func TestLoginEndpointRejectsBadPassword(t *testing.T) {
	router := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "admin@projectpulse.com", "password": "wrong"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeEndpointRoundTrip(t *testing.T) {
	router := newAuthTestRouter(t)

	body, _ := json.Marshal(gin.H{"email": "admin@projectpulse.com", "password": "admin123"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Data models.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Data.Token)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Data models.UserInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "u1", me.Data.ID)
}

func TestMeEndpointRequiresToken(t *testing.T) {
	router := newAuthTestRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
