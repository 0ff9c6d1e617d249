package memories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/2beens/cyclingcoach/internal/telemetry/metrics"
	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=memories_test

type memoriesRepo interface {
	Create(ctx context.Context, userID uuid.UUID, title *string, content string) (uuid.UUID, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Memory, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type CreateMemoryRequest struct {
	Content string  `json:"content" validate:"required"`
	Title   *string `json:"title"`
}

type IDResponse struct {
	ID uuid.UUID `json:"id"`
}

type ListResponse struct {
	Memories []Memory `json:"memories"`
}

type Handler struct {
	repo           memoriesRepo
	validate       *validator.Validate
	metricsManager *metrics.Manager
}

func NewHandler(repo memoriesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		validate:       pkg.NewValidator(),
		metricsManager: metricsManager,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.memories.create")
	defer span.End()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("create memory, read body: %s", err)
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	req, err := decodeCreateRequest(raw)
	if err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		pkg.WriteValidationErrors(w, err)
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if err := h.validate.Struct(req); err != nil {
		pkg.WriteValidationErrors(w, err)
		return
	}

	id, err := h.repo.Create(ctx, FixedUserID, req.Title, req.Content)
	if err != nil {
		log.Errorf("create memory: %s", err)
		http.Error(w, "failed to create memory", http.StatusInternalServerError)
		return
	}

	if h.metricsManager != nil {
		h.metricsManager.CounterMemoriesCreated.Inc()
	}

	resp, err := json.Marshal(IDResponse{ID: id})
	if err != nil {
		log.Errorf("marshal create memory response: %s", err)
		http.Error(w, "failed to create memory", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

// decodeCreateRequest accepts a plain object or one wrapped as {"body": {...}}.
func decodeCreateRequest(raw []byte) (CreateMemoryRequest, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return CreateMemoryRequest{}, err
	}

	if inner, ok := payload["body"]; ok {
		trimmed := bytes.TrimSpace(inner)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			raw = trimmed
		}
	}

	var req CreateMemoryRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return CreateMemoryRequest{}, errors.New("content: must be a string")
	}
	return req, nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.memories.list")
	defer span.End()

	query := r.URL.Query()
	userID, err := uuid.Parse(query.Get("userId"))
	if err != nil {
		http.Error(w, "userId must be a UUID", http.StatusBadRequest)
		return
	}

	limit := defaultListLimit
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxListLimit {
			http.Error(w, "limit must be between 1 and 200", http.StatusBadRequest)
			return
		}
	}

	offset := 0
	if raw := query.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			http.Error(w, "offset must be >= 0", http.StatusBadRequest)
			return
		}
	}

	memories, err := h.repo.List(ctx, userID, limit, offset)
	if err != nil {
		log.Errorf("list memories for %s: %s", userID, err)
		http.Error(w, "failed to list memories", http.StatusInternalServerError)
		return
	}
	if memories == nil {
		memories = []Memory{}
	}

	resp, err := json.Marshal(ListResponse{Memories: memories})
	if err != nil {
		log.Errorf("marshal memories: %s", err)
		http.Error(w, "failed to list memories", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.memories.delete")
	defer span.End()

	query := r.URL.Query()
	id, err := uuid.Parse(query.Get("id"))
	if err != nil {
		http.Error(w, "id must be a UUID", http.StatusBadRequest)
		return
	}
	userID, err := uuid.Parse(query.Get("userId"))
	if err != nil {
		http.Error(w, "userId must be a UUID", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, ErrMemoryNotFound) {
			http.Error(w, "Memory not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete memory %s: %s", id, err)
		http.Error(w, "failed to delete memory", http.StatusInternalServerError)
		return
	}

	resp, err := json.Marshal(IDResponse{ID: id})
	if err != nil {
		log.Errorf("marshal delete memory response: %s", err)
		http.Error(w, "failed to delete memory", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}
