package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"maintplane/internal/auth"
	"maintplane/internal/logger"
	"maintplane/internal/store"
	"maintplane/pkg/api"

	"github.com/google/uuid"
)

// InternalCreateUser handles POST /internal/users.
// It provisions a user with job roles and returns a freshly generated API key.
// The plain key is only ever returned here.
func (h *Handlers) InternalCreateUser(w http.ResponseWriter, r *http.Request) {
	var req api.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.httpError(w, "Name is required", http.StatusBadRequest)
		return
	}
	roles := make([]string, 0, len(req.Roles))
	for _, role := range req.Roles {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}

	apiKey, err := auth.GenerateKey()
	if err != nil {
		h.httpError(w, "Failed to generate API key", http.StatusInternalServerError)
		return
	}

	user := &store.User{
		ID:        uuid.New(),
		Name:      req.Name,
		IsAdmin:   req.IsAdmin,
		CreatedAt: time.Now().UTC(),
	}

	ctx := r.Context()
	tx, err := h.store.BeginTx(ctx)
	if err != nil {
		h.httpError(w, "Failed to begin transaction", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	if err := h.store.CreateUser(ctx, tx, user, auth.HashKey(apiKey), roles); err != nil {
		logger.FromContext(ctx, h.logger).Error("create user failed", "error", err)
		h.httpError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}
	if err := tx.Commit(); err != nil {
		h.httpError(w, "Failed to commit transaction", http.StatusInternalServerError)
		return
	}

	logger.FromContext(ctx, h.logger).Info("user created", "user_id", user.ID, "roles", roles, "is_admin", user.IsAdmin)
	h.respondJson(w, http.StatusCreated, api.CreateUserResponse{
		ID:     user.ID.String(),
		Name:   user.Name,
		Roles:  roles,
		ApiKey: apiKey,
	})
}
