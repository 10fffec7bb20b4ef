package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/xavierca1/artisan-crm/internal/entity"
	"github.com/xavierca1/artisan-crm/internal/infra/auth"
)

type AuthHandler struct {
	Users  entity.UserRepositoryInterface
	Tokens *auth.TokenManager
}

func NewAuthHandler(users entity.UserRepositoryInterface, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{Users: users, Tokens: tokens}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserOut struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        UserOut `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	log.Printf("auth handler: login attempt for %q", req.Username)

	user, err := h.Users.FindByUsername(r.Context(), req.Username)
	if errors.Is(err, entity.ErrUserNotFound) {
		loginRejected(w)
		return
	}
	if err != nil {
		log.Printf("auth handler: user lookup failed: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if !auth.VerifyPassword(req.Password, user.HashedPassword) {
		loginRejected(w)
		return
	}

	token, err := h.Tokens.CreateAccessToken(user)
	if err != nil {
		log.Printf("auth handler: token creation failed: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: UserOut{
			ID:       user.ID,
			Username: user.Username,
			Name:     user.Name,
		},
	})
}

// loginRejected answers identically for unknown users and bad passwords so
// the two cannot be told apart.
func loginRejected(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
}
