package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"collab-service/internal/auth"
	"collab-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &stubUserRepo{users: map[string]*models.User{}}
	tokens := auth.NewTokenService("test-secret", time.Hour)
	h := NewAuthHandler(auth.NewAuthService(users, tokens))

	engine := gin.New()
	engine.POST("/api/auth/register", h.Register)
	engine.POST("/api/auth/login", h.Login)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()

	res, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer res.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&decoded))
	return res, decoded
}

func TestRegisterAndLogin(t *testing.T) {
	server := newAuthTestServer(t)

	res, body := postJSON(t, server.URL+"/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "alice@example.com", body["email"])

	res, body = postJSON(t, server.URL+"/api/auth/login",
		`{"email":"alice@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotEmpty(t, body["token"])
}

func TestRegisterRejectsInvalidPayload(t *testing.T) {
	server := newAuthTestServer(t)

	res, _ := postJSON(t, server.URL+"/api/auth/register",
		`{"username":"alice","password":"hunter22"}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	server := newAuthTestServer(t)

	res, _ := postJSON(t, server.URL+"/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)

	res, _ = postJSON(t, server.URL+"/api/auth/login",
		`{"email":"alice@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	server := newAuthTestServer(t)

	res, _ := postJSON(t, server.URL+"/api/auth/login",
		`{"email":"nobody@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
