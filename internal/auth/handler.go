package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"konkan-properties/internal/middleware"
	"konkan-properties/internal/models"
	"konkan-properties/internal/response"
	"konkan-properties/internal/store"
	"konkan-properties/internal/token"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, hashedPassword, phone, address string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users    UserStore
	tokens   *token.Service
	validate *validator.Validate
}

func NewHandler(users UserStore, tokens *token.Service) *Handler {
	return &Handler{users: users, tokens: tokens, validate: validator.New()}
}

// Register creates a new user and returns a bearer token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "All fields are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("bcrypt error: %v", err)
		response.ServerError(w)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Name, req.Email, string(hashed), req.Phone, req.Address)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			response.Message(w, http.StatusBadRequest, "User already exists")
			return
		}
		log.Printf("create user error: %v", err)
		response.ServerError(w)
		return
	}

	h.respondWithToken(w, user)
}

// Login authenticates a user and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Message(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("get user error: %v", err)
		response.ServerError(w)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		response.Message(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.respondWithToken(w, user)
}

// Me returns the currently authenticated user sans password.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Message(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("get user error: %v", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, user *models.User) {
	signed, err := h.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		log.Printf("issue token error: %v", err)
		response.ServerError(w)
		return
	}
	response.JSON(w, http.StatusOK, models.AuthResponse{
		Token: signed,
		User: models.AuthUser{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			IsAdmin: user.IsAdmin,
		},
	})
}
