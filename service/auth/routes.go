package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/paisatrack/paisa-server/cmd/models"
	"github.com/paisatrack/paisa-server/cmd/utils"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"
)

const resetTokenTTL = 15 * time.Minute

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes sets up all authentication routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/login/", h.handleLogin).Methods("POST")
	router.HandleFunc("/logout/", utils.RequireAuth(h.db, h.handleLogout)).Methods("POST")
	router.HandleFunc("/register/", h.handleRegister).Methods("POST")
	router.HandleFunc("/reset-password/", h.handlePasswordResetRequest).Methods("POST")
	router.HandleFunc("/reset-password/confirm/", h.handlePasswordReset).Methods("POST")
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&loginRequest); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request body",
		})
		return
	}

	if loginRequest.Username == "" || loginRequest.Password == "" {
		utils.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "Please provide both username and password",
		})
		return
	}

	var user models.User
	result := h.db.Where("username = ?", loginRequest.Username).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			utils.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"error": "Invalid credentials",
			})
			return
		}
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(loginRequest.Password)); err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"error": "Invalid credentials",
		})
		return
	}

	token, err := h.getOrCreateToken(user.ID)
	if err != nil {
		http.Error(w, "Error issuing token", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token.Key,
	})
}

// getOrCreateToken returns the user's persisted bearer token, creating
// one on first login. Repeated logins hand back the same key.
func (h *Handler) getOrCreateToken(userID uint) (*models.AuthToken, error) {
	var token models.AuthToken
	err := h.db.Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	key, err := generateTokenKey(userID)
	if err != nil {
		return nil, err
	}

	token = models.AuthToken{UserID: userID, Key: key}
	if err := h.db.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// generateTokenKey signs a JWT carrying the user ID. The key has no
// expiry claim; it stays valid until logout removes it from the database.
func generateTokenKey(userID uint) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatUint(uint64(userID), 10),
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("SECRET_KEY")))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	user, err := utils.CurrentUser(r)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	if err := h.db.Where("user_id = ?", user.ID).Delete(&models.AuthToken{}).Error; err != nil {
		http.Error(w, "Error logging out", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Logout successful",
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var registerRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&registerRequest); err != nil {
		http.Error(w, "Invalid JSON input", http.StatusBadRequest)
		return
	}

	if registerRequest.Username == "" || registerRequest.Password == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	var existingUser models.User
	if result := h.db.Where("username = ?", registerRequest.Username).First(&existingUser); !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if result.Error != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		log.Printf("Registration attempt with duplicate username %q", registerRequest.Username)
		http.Error(w, "Username is already in use", http.StatusConflict)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(registerRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Username:     registerRequest.Username,
		Email:        registerRequest.Email,
		PasswordHash: string(passwordHash),
	}
	if err := h.db.Create(&user).Error; err != nil {
		http.Error(w, "Error registering user", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

func (h *Handler) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var resetRequest struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&resetRequest); err != nil || resetRequest.Email == "" {
		http.Error(w, "Email is required", http.StatusBadRequest)
		return
	}

	// Same response whether or not the email exists, so the endpoint
	// can't be used to enumerate accounts.
	response := map[string]interface{}{
		"message": "If the email is registered, a reset token has been sent",
	}

	var user models.User
	if err := h.db.Where("email = ?", resetRequest.Email).First(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusOK, response)
		return
	}

	resetToken := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := h.db.Create(&resetToken).Error; err != nil {
		http.Error(w, "Error creating reset token", http.StatusInternalServerError)
		return
	}

	go func() {
		if err := sendResetEmail(user.Email, resetToken.Token); err != nil {
			log.Printf("Error sending reset email: %v", err)
		}
	}()

	utils.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var confirmRequest struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&confirmRequest); err != nil || confirmRequest.Token == "" || confirmRequest.NewPassword == "" {
		http.Error(w, "Token and new password are required", http.StatusBadRequest)
		return
	}

	var resetToken models.PasswordResetToken
	if err := h.db.Where("token = ?", confirmRequest.Token).First(&resetToken).Error; err != nil {
		http.Error(w, "Invalid or expired reset token", http.StatusBadRequest)
		return
	}
	if time.Now().After(resetToken.ExpiresAt) {
		h.db.Delete(&resetToken)
		http.Error(w, "Invalid or expired reset token", http.StatusBadRequest)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(confirmRequest.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", resetToken.UserID).
		Update("password_hash", string(passwordHash)).Error; err != nil {
		http.Error(w, "Error updating password", http.StatusInternalServerError)
		return
	}

	// Invalidate the reset token and any live session
	h.db.Where("user_id = ?", resetToken.UserID).Delete(&models.PasswordResetToken{})
	h.db.Where("user_id = ?", resetToken.UserID).Delete(&models.AuthToken{})

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Password reset successful",
	})
}

// sendResetEmail delivers the reset token over SMTP configured via
// environment variables.
func sendResetEmail(email, token string) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Password Reset")
	m.SetBody("text/plain", fmt.Sprintf("Your password reset token is: %s. It expires in 15 minutes. Ignore this email if you did not request a password reset.", token))

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}
	d := gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)

	return d.DialAndSend(m)
}
