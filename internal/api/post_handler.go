package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/usecase"
)

// PostHandler exposes the post use cases over REST.
type PostHandler struct {
	useCases *usecase.UseCases
}

func NewPostHandler(useCases *usecase.UseCases) *PostHandler {
	return &PostHandler{useCases: useCases}
}

func (h *PostHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreatePost)
	r.Get("/", h.ListPosts)
	r.Delete("/{id}", h.DeletePost)
	r.Post("/{id}/confirm", h.ConfirmPost)
	r.Post("/{id}/regenerate", h.RegeneratePost)
	r.Post("/{id}/publish", h.PublishPost)
	return r
}

type CreatePostRequest struct {
	UserID         int64    `json:"user_id"`
	Topic          string   `json:"topic"`
	TargetPlatform string   `json:"target_platform,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}

type UserRequest struct {
	UserID int64 `json:"user_id"`
}

type RegenerateRequest struct {
	UserID         int64  `json:"user_id"`
	TargetPlatform string `json:"target_platform,omitempty"`
}

type PublishRequest struct {
	UserID    int64    `json:"user_id"`
	Platforms []string `json:"platforms,omitempty"`
}

type ContentResponse struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Topic string   `json:"topic"`
	Tags  []string `json:"tags"`
}

type PublicationResponse struct {
	Platform       string     `json:"platform"`
	Success        bool       `json:"success"`
	PlatformPostID string     `json:"platform_post_id,omitempty"`
	URL            string     `json:"url,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
}

type PostResponse struct {
	ID           string                `json:"id"`
	UserID       int64                 `json:"user_id"`
	Status       string                `json:"status"`
	Content      ContentResponse       `json:"content"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Publications []PublicationResponse `json:"publications"`
}

type CreatePostResponse struct {
	ID      string          `json:"id"`
	Content ContentResponse `json:"content"`
}

type PublishResponse struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error,omitempty"`
	Results []PublicationResponse `json:"results"`
}

func toContentResponse(c domain.PostContent) ContentResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	return ContentResponse{Title: c.Title, Body: c.Body, Topic: c.Topic, Tags: tags}
}

func toPublicationResponses(results []domain.PublicationResult) []PublicationResponse {
	out := make([]PublicationResponse, 0, len(results))
	for _, r := range results {
		out = append(out, PublicationResponse{
			Platform:       string(r.Platform),
			Success:        r.Success,
			PlatformPostID: r.PlatformPostID,
			URL:            r.URL,
			ErrorMessage:   r.ErrorMessage,
			PublishedAt:    r.PublishedAt,
		})
	}
	return out
}

func toPostResponse(p *domain.Post) PostResponse {
	return PostResponse{
		ID:           p.ID().String(),
		UserID:       p.UserID(),
		Status:       string(p.Status()),
		Content:      toContentResponse(p.Content()),
		CreatedAt:    p.CreatedAt(),
		UpdatedAt:    p.UpdatedAt(),
		Publications: toPublicationResponses(p.Publications()),
	}
}

func parsePostID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid post ID")
		return uuid.Nil, false
	}
	return id, true
}

func parseUserQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return userID, true
}

func parseOptionalPlatform(name string) (domain.Platform, error) {
	if name == "" {
		return "", nil
	}
	return domain.ParsePlatform(name)
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	platform, err := parseOptionalPlatform(req.TargetPlatform)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res := h.useCases.CreatePost.Execute(r.Context(), usecase.CreatePostCommand{
		UserID:   req.UserID,
		Topic:    req.Topic,
		Platform: platform,
		Tags:     req.Tags,
	})
	if !res.Success {
		renderResultError(w, r, res.Result)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreatePostResponse{ID: res.PostID.String(), Content: toContentResponse(res.Content)})
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserQuery(w, r)
	if !ok {
		return
	}
	res := h.useCases.ListPosts.Execute(r.Context(), userID)
	if !res.Success {
		renderResultError(w, r, res.Result)
		return
	}
	out := make([]PostResponse, 0, len(res.Posts))
	for _, p := range res.Posts {
		out = append(out, toPostResponse(p))
	}
	render.JSON(w, r, out)
}

func (h *PostHandler) ConfirmPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePostID(w, r)
	if !ok {
		return
	}
	var req UserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res := h.useCases.ConfirmPost.Execute(r.Context(), usecase.ConfirmPostCommand{PostID: id, UserID: req.UserID})
	if !res.Success {
		renderResultError(w, r, res)
		return
	}
	render.JSON(w, r, map[string]string{"id": id.String(), "status": string(domain.StatusConfirmed)})
}

func (h *PostHandler) RegeneratePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePostID(w, r)
	if !ok {
		return
	}
	var req RegenerateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	platform, err := parseOptionalPlatform(req.TargetPlatform)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	res := h.useCases.RegenerateContent.Execute(r.Context(), usecase.RegenerateContentCommand{PostID: id, UserID: req.UserID, Platform: platform})
	if !res.Success {
		renderResultError(w, r, res.Result)
		return
	}
	render.JSON(w, r, CreatePostResponse{ID: id.String(), Content: toContentResponse(res.Content)})
}

// PublishPost answers 200 whenever publishing was attempted, including when
// every platform failed; the per-platform results carry the details.
func (h *PostHandler) PublishPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePostID(w, r)
	if !ok {
		return
	}
	var req PublishRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	platforms, err := domain.ParsePlatforms(req.Platforms)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res := h.useCases.PublishPost.Execute(r.Context(), usecase.PublishPostCommand{PostID: id, Platforms: platforms, UserID: req.UserID})
	if !res.Success && !errors.Is(res.Err, usecase.ErrPublishFailed) {
		renderResultError(w, r, res.Result)
		return
	}
	render.JSON(w, r, PublishResponse{
		Success: res.Success,
		Error:   res.ErrorMessage(),
		Results: toPublicationResponses(res.Results),
	})
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePostID(w, r)
	if !ok {
		return
	}
	userID, ok := parseUserQuery(w, r)
	if !ok {
		return
	}
	res := h.useCases.DeletePost.Execute(r.Context(), usecase.DeletePostCommand{PostID: id, UserID: userID})
	if !res.Success {
		renderResultError(w, r, res)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
