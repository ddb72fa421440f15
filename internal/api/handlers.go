package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/userboard/userboard-backend/internal/config"
	"github.com/userboard/userboard-backend/internal/pagination"
	"github.com/userboard/userboard-backend/internal/repository"
	"go.uber.org/zap"
)

// UserStore is the slice of the user repository the handlers consume.
type UserStore interface {
	List(ctx context.Context, page, limit int) (*pagination.Result[repository.User], error)
	ListWithAddresses(ctx context.Context, page, limit int) (*pagination.Result[repository.User], error)
	GetByID(ctx context.Context, id string) (*repository.User, error)
	Create(ctx context.Context, params repository.CreateUserParams) (*repository.User, error)
	Update(ctx context.Context, id string, params repository.UpdateUserParams) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// PostStore is the slice of the post repository the handlers consume.
type PostStore interface {
	List(ctx context.Context, page, limit int) (*pagination.Result[repository.Post], error)
	ListByUser(ctx context.Context, userID string, page, limit int) (*repository.FeedResult, error)
	GetByID(ctx context.Context, id string) (*repository.Post, error)
	Create(ctx context.Context, params repository.CreatePostParams) (*repository.CreatedPost, error)
	Update(ctx context.Context, id string, params repository.UpdatePostParams) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// Pinger reports store liveness for the readiness endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	users  UserStore
	posts  PostStore
	db     Pinger
	config *config.Config
	logger *zap.SugaredLogger
}

func NewHandler(users UserStore, posts PostStore, db Pinger, cfg *config.Config, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		users:  users,
		posts:  posts,
		db:     db,
		config: cfg,
		logger: logger,
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// pageParams reads page and limit leniently: missing or non-numeric values
// fall back to the defaults rather than erroring, and limit is capped.
func (h *Handler) pageParams(r *http.Request) (page, limit int) {
	page = 1
	limit = h.config.Pagination.DefaultPageSize

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v >= 1 {
		limit = v
	}
	if limit > h.config.Pagination.MaxPageSize {
		limit = h.config.Pagination.MaxPageSize
	}
	return page, limit
}

// Health endpoints

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", h.storeMessage(err))
		return
	}
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}

// User endpoints

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := h.pageParams(r)

	result, err := h.users.List(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ListUsersWithAddresses(w http.ResponseWriter, r *http.Request) {
	page, limit := h.pageParams(r)

	result, err := h.users.ListWithAddresses(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var params repository.CreateUserParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	if params.Name == "" || params.Username == "" || params.Email == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELDS",
			"Missing required fields: name, username, and email are required")
		return
	}
	if !emailPattern.MatchString(params.Email) {
		h.writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email format")
		return
	}

	user, err := h.users.Create(r.Context(), params)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			h.writeError(w, http.StatusConflict, "DUPLICATE_USER", "Username or email already exists")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")

	var params repository.UpdateUserParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	if params.Email != nil && !emailPattern.MatchString(*params.Email) {
		h.writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email format")
		return
	}

	changes, err := h.users.Update(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			h.writeError(w, http.StatusConflict, "DUPLICATE_USER", "Username or email already exists")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	if changes == 0 {
		h.writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}
	h.writeJSON(w, http.StatusOK, UpdateResponse{Message: "User updated successfully", Changes: changes})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")

	deleted, err := h.users.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	if deleted == 0 {
		h.writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}
	h.writeJSON(w, http.StatusOK, DeleteResponse{Message: "User deleted successfully", Deleted: deleted})
}

// Post endpoints

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, limit := h.pageParams(r)

	result, err := h.posts.List(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ListUserPosts(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	page, limit := h.pageParams(r)

	result, err := h.posts.ListByUser(r.Context(), userID, page, limit)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	h.writeJSON(w, http.StatusOK, post)
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var params repository.CreatePostParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	if params.UserID == "" || params.Title == "" || params.Body == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELDS",
			"Missing required fields: user_id, title, and body are required")
		return
	}

	post, err := h.posts.Create(r.Context(), params)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	h.writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")

	var params repository.UpdatePostParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	if params.Title == nil && params.Body == nil {
		h.writeError(w, http.StatusBadRequest, "MISSING_FIELDS",
			"At least one field (title or body) must be provided for update")
		return
	}

	changes, err := h.posts.Update(r.Context(), id, params)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	if changes == 0 {
		h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
		return
	}
	h.writeJSON(w, http.StatusOK, UpdateResponse{Message: "Post updated successfully", Changes: changes})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")

	deleted, err := h.posts.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "STORE_ERROR", h.storeMessage(err))
		return
	}
	if deleted == 0 {
		h.writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
		return
	}
	h.writeJSON(w, http.StatusOK, DeleteResponse{Message: "Post deleted successfully", Deleted: deleted})
}

// storeMessage hides store error detail in production responses.
func (h *Handler) storeMessage(err error) string {
	if h.config != nil && h.config.IsProd() {
		return "internal error"
	}
	return err.Error()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.logger.Errorw("API error", "code", code, "message", message, "status", status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := ErrorResponse{
		Code:    code,
		Message: message,
	}
	json.NewEncoder(w).Encode(err)
}
