package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/familyfinance/finchat/internal/auth"
	"github.com/familyfinance/finchat/internal/core"
	"github.com/familyfinance/finchat/internal/store"
)

type contextKey string

const userIDKey contextKey = "userID"

type APIHandler struct {
	store       store.Store
	chatService *core.ChatService
}

func NewAPIHandler(st store.Store, cs *core.ChatService) *APIHandler {
	return &APIHandler{store: st, chatService: cs}
}

// UserIDFromContext returns the authenticated user id set by JWTAuthMiddleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// "<scheme> <token>"; the scheme itself is not checked.
		_, tokenString, _ := strings.Cut(r.Header.Get("Authorization"), " ")
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			respondError(w, http.StatusUnauthorized, "Token não fornecido")
			return
		}

		claims, err := auth.ValidateJWT(tokenString)
		if err != nil {
			slog.Debug("Rejected token", "error", err)
			respondError(w, http.StatusForbidden, "Token inválido")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Nome, email e senha são obrigatórios")
		return
	}
	if req.Role != "" && req.Role != "user" && req.Role != "admin" {
		respondError(w, http.StatusBadRequest, "Role inválido")
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("Error hashing password", "email", req.Email, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user := &store.User{Name: req.Name, Email: req.Email, PasswordHash: hashedPassword, Role: req.Role}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondError(w, http.StatusBadRequest, "Email já cadastrado")
			return
		}
		slog.Error("Error creating user", "email", req.Email, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email e senha são obrigatórios")
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Error("Error getting user", "email", req.Email, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Role)
	if err != nil {
		slog.Error("Error generating JWT", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

type ChatRequest struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

// ChatHandler runs one assistant turn. Every handled path answers 200 with a
// reply; only collaborator failures become a 500.
func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	tokenUserID, _ := UserIDFromContext(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, ChatResponse{Reply: "Mensagem inválida."})
		return
	}

	userID := tokenUserID
	if req.UserID != 0 && req.UserID != tokenUserID {
		respondJSON(w, http.StatusForbidden, ChatResponse{Reply: "Acesso não autorizado."})
		return
	}

	reply, err := h.chatService.HandleMessage(r.Context(), userID, req.Message)
	if err != nil {
		slog.Error("Error handling chat message", "user_id", userID, "error", err)
		respondJSON(w, http.StatusInternalServerError, ChatResponse{Reply: core.ReplyInternalError})
		return
	}

	respondJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
