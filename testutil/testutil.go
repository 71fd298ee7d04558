// Package testutil provides helpers shared by the service tests: a
// throwaway sqlite database with the full schema, seeded users and a
// small HTTP request harness.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/paisatrack/paisa-server/cmd/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewTestDB opens a fresh sqlite database in a temp directory and
// migrates the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.AuthToken{},
		&models.PasswordResetToken{},
		&models.Category{},
		&models.Transaction{},
	)
	require.NoError(t, err)

	return db
}

// CreateUser inserts a user with a bcrypt hash of password. MinCost keeps
// the tests fast.
func CreateUser(t *testing.T, db *gorm.DB, username, password string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Request performs a request against the handler and returns the
// recorded response. A non-empty token is sent as a bearer credential.
func Request(t *testing.T, handler http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// DecodeBody unmarshals a JSON response body into a generic map.
func DecodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body
}

// Login authenticates against the login endpoint and returns the token.
func Login(t *testing.T, handler http.Handler, username, password string) string {
	t.Helper()

	rec := Request(t, handler, http.MethodPost, "/api/login/", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	token, ok := DecodeBody(t, rec)["token"].(string)
	require.True(t, ok, "no token in login response")
	return token
}
