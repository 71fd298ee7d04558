package utils

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/paisatrack/paisa-server/cmd/models"
	"gorm.io/gorm"
)

type contextKey string

const UserKey contextKey = "currentUser"

// CurrentUser returns the authenticated user that RequireAuth stored in
// the request context.
func CurrentUser(r *http.Request) (*models.User, error) {
	user, ok := r.Context().Value(UserKey).(*models.User)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

// RequireAuth wraps a handler so it only runs for requests carrying a
// valid bearer token. The token key must both verify as a JWT signed with
// SECRET_KEY and still exist in the auth_tokens table; logout deletes the
// row, which revokes the key even though the signature stays valid.
func RequireAuth(db *gorm.DB, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		// Accept both "Bearer <key>" and DRF-style "Token <key>"
		tokenString := authHeader
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && (strings.EqualFold(parts[0], "Bearer") || strings.EqualFold(parts[0], "Token")) {
			tokenString = parts[1]
		}

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("SECRET_KEY")), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		var stored models.AuthToken
		if err := db.Where("key = ?", tokenString).First(&stored).Error; err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		var user models.User
		if err := db.First(&user, stored.UserID).Error; err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, &user)
		next(w, r.WithContext(ctx))
	}
}
