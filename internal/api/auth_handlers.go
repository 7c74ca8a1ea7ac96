package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/user"
)

type AuthHandlers struct {
	users *user.Service
	jwt   *auth.JWTService
}

func NewAuthHandlers(users *user.Service, jwt *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{users: users, jwt: jwt}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
}

func userResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a customer account. Admin accounts are only created via
// the bootstrap path at startup.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Name, req.Password, user.RoleCustomer)
	if err != nil {
		respondError(w, err)
		return
	}

	token := h.issueToken(w, r, u)
	respondJSON(w, http.StatusCreated, AuthResponse{User: userResponse(u), AccessToken: token})
}

// Login authenticates and issues an access token.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondErrorCode(w, http.StatusBadRequest, CodeInvalidArgument, "invalid request body")
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	token := h.issueToken(w, r, u)
	respondJSON(w, http.StatusOK, AuthResponse{User: userResponse(u), AccessToken: token})
}

// Logout clears the access token cookie.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated user's claims.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondErrorCode(w, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"id":    claims.UserID,
		"email": claims.Email,
		"role":  claims.Role,
	})
}

func (h *AuthHandlers) issueToken(w http.ResponseWriter, r *http.Request, u *user.User) string {
	token, expiresAt, err := h.jwt.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}
