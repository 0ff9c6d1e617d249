package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=schedule_test

type intervalsRepo interface {
	List(ctx context.Context, params ListParams) ([]Interval, error)
	Create(ctx context.Context, interval NewInterval) (uuid.UUID, error)
	Update(ctx context.Context, update IntervalUpdate) (*Interval, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateIntervalRequest struct {
	UserID      string  `json:"userId"`
	Type        string  `json:"type"`
	StartIso    string  `json:"startIso"`
	EndIso      string  `json:"endIso"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type UpdateIntervalRequest struct {
	ID          string  `json:"id"`
	NewStartIso *string `json:"newStartIso"`
	NewEndIso   *string `json:"newEndIso"`
	Type        *string `json:"type"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Snap        *bool   `json:"snap"`
}

type ListResponse struct {
	Intervals []Interval `json:"intervals"`
}

type IntervalResponse struct {
	Interval *Interval `json:"interval"`
}

type IDResponse struct {
	ID uuid.UUID `json:"id"`
}

type Handler struct {
	repo intervalsRepo
}

func NewHandler(repo intervalsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.list")
	defer span.End()

	query := r.URL.Query()
	start, err := pkg.ParseISOTime(query.Get("startDateIso"))
	if err != nil {
		http.Error(w, "startDateIso: "+err.Error(), http.StatusBadRequest)
		return
	}
	end, err := pkg.ParseISOTime(query.Get("endDateIso"))
	if err != nil {
		http.Error(w, "endDateIso: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := ListParams{
		Start: start,
		End:   end,
	}
	if rawUserID := query.Get("userId"); rawUserID != "" {
		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			http.Error(w, "Invalid UUID provided", http.StatusBadRequest)
			return
		}
		params.UserID = &userID
	}
	if params.Types, err = ParseTypesCSV(query.Get("types")); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	intervals, err := h.repo.List(ctx, params)
	if err != nil {
		log.Errorf("list schedule intervals: %s", err)
		http.Error(w, "failed to list schedule intervals", http.StatusInternalServerError)
		return
	}
	if intervals == nil {
		intervals = []Interval{}
	}

	respond(w, ListResponse{Intervals: intervals})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.create")
	defer span.End()

	var req CreateIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.Type == "" || req.StartIso == "" || req.EndIso == "" {
		http.Error(w, "userId, type, startIso, endIso are required", http.StatusBadRequest)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		http.Error(w, "Invalid UUID provided", http.StatusBadRequest)
		return
	}
	typ, err := ParseType(req.Type)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start, err := pkg.ParseZonedISOTime(req.StartIso)
	if err != nil {
		http.Error(w, "startIso: "+err.Error(), http.StatusBadRequest)
		return
	}
	end, err := pkg.ParseZonedISOTime(req.EndIso)
	if err != nil {
		http.Error(w, "endIso: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.repo.Create(ctx, NewInterval{
		UserID:      userID,
		Type:        typ,
		Start:       start,
		End:         end,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		if pkg.IsCheckViolationError(err) || pkg.IsInvalidInputError(err) {
			http.Error(w, "interval rejected: check type and times", http.StatusBadRequest)
			return
		}
		log.Errorf("create schedule interval: %s", err)
		http.Error(w, "failed to create schedule interval", http.StatusInternalServerError)
		return
	}

	respond(w, IDResponse{ID: id})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.update")
	defer span.End()

	var req UpdateIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.ID) == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		http.Error(w, "id must be a UUID", http.StatusBadRequest)
		return
	}

	update := IntervalUpdate{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Snap:        true,
	}
	if req.Snap != nil {
		update.Snap = *req.Snap
	}
	if req.NewStartIso != nil {
		start, err := pkg.ParseZonedISOTime(*req.NewStartIso)
		if err != nil {
			http.Error(w, "newStartIso: "+err.Error(), http.StatusBadRequest)
			return
		}
		update.NewStart = &start
	}
	if req.NewEndIso != nil {
		end, err := pkg.ParseZonedISOTime(*req.NewEndIso)
		if err != nil {
			http.Error(w, "newEndIso: "+err.Error(), http.StatusBadRequest)
			return
		}
		update.NewEnd = &end
	}
	if req.Type != nil {
		typ, err := ParseType(*req.Type)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		update.Type = &typ
	}

	interval, err := h.repo.Update(ctx, update)
	if err != nil {
		if errors.Is(err, ErrIntervalNotFound) {
			http.Error(w, "Interval not found", http.StatusNotFound)
			return
		}
		if pkg.IsCheckViolationError(err) || pkg.IsInvalidInputError(err) {
			http.Error(w, "interval rejected: check type and times", http.StatusBadRequest)
			return
		}
		log.Errorf("update schedule interval %s: %s", id, err)
		http.Error(w, "failed to update schedule interval", http.StatusInternalServerError)
		return
	}

	respond(w, IntervalResponse{Interval: interval})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.schedule.delete")
	defer span.End()

	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		http.Error(w, "id must be a UUID", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrIntervalNotFound) {
			http.Error(w, "Interval not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete schedule interval %s: %s", id, err)
		http.Error(w, "failed to delete schedule interval", http.StatusInternalServerError)
		return
	}

	respond(w, IDResponse{ID: id})
}

func respond(w http.ResponseWriter, payload any) {
	resp, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal schedule response: %s", err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}
