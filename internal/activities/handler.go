package activities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/2beens/cyclingcoach/internal/telemetry/metrics"
	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=activities_test

type activitiesRepo interface {
	List(ctx context.Context, params ListParams) ([]Activity, error)
	Create(ctx context.Context, activity NewActivity) (uuid.UUID, error)
}

type LoadActivitiesRequest struct {
	StartDateIso string  `json:"start_date_iso" validate:"required"`
	EndDateIso   string  `json:"end_date_iso" validate:"required"`
	UserID       *string `json:"user_id" validate:"omitempty,uuid"`
}

type LoadActivitiesResponse struct {
	Activities []Activity `json:"activities"`
}

type CreateActivityRequest struct {
	UserID           string   `json:"user_id" validate:"required,uuid"`
	StartTime        string   `json:"start_time" validate:"required"`
	EndTime          string   `json:"end_time" validate:"required"`
	DurationSeconds  *int     `json:"duration_seconds" validate:"required,gte=0"`
	DistanceKm       *float64 `json:"distance_km" validate:"required,gte=0"`
	AvgSpeedKmh      *float64 `json:"avg_speed_kmh" validate:"omitempty,gte=0"`
	ActiveEnergyKcal *float64 `json:"active_energy_kcal" validate:"omitempty,gte=0"`
	ElevationGainM   *float64 `json:"elevation_gain_m" validate:"omitempty,gte=0"`
	AvgHrBpm         *float64 `json:"avg_hr_bpm" validate:"omitempty,gte=0"`
	MaxHrBpm         *float64 `json:"max_hr_bpm" validate:"omitempty,gte=0"`
	Vo2max           *float64 `json:"vo2max" validate:"omitempty,gte=0"`
}

type CreateActivityResponse struct {
	ID uuid.UUID `json:"id"`
}

type Handler struct {
	repo           activitiesRepo
	validate       *validator.Validate
	metricsManager *metrics.Manager
}

func NewHandler(repo activitiesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		validate:       pkg.NewValidator(),
		metricsManager: metricsManager,
	}
}

func (h *Handler) HandleLoadActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tools.load_cycling_activities")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req LoadActivitiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("load activities, unmarshal json params: %s", err)
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		pkg.WriteValidationErrors(w, err)
		return
	}

	start, err := pkg.ParseISOTime(req.StartDateIso)
	if err != nil {
		pkg.WriteValidationErrors(w, fmt.Errorf("start_date_iso: %w", err))
		return
	}
	end, err := pkg.ParseISOTime(req.EndDateIso)
	if err != nil {
		pkg.WriteValidationErrors(w, fmt.Errorf("end_date_iso: %w", err))
		return
	}

	params := ListParams{Start: start, End: end}
	if req.UserID != nil {
		userID := uuid.MustParse(*req.UserID)
		params.UserID = &userID
	}

	acts, err := h.repo.List(ctx, params)
	if err != nil {
		log.Errorf("load activities [%s - %s]: %s", req.StartDateIso, req.EndDateIso, err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	if acts == nil {
		acts = []Activity{}
	}

	resp, err := json.Marshal(LoadActivitiesResponse{Activities: acts})
	if err != nil {
		log.Errorf("marshal activities: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func (h *Handler) HandleCreateActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.tools.create_cycling_activity")
	defer span.End()

	if !pkg.IsJSONRequest(r) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("create activity, unmarshal json params: %s", err)
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	newActivity, err := h.toNewActivity(req)
	if err != nil {
		pkg.WriteValidationErrors(w, err)
		return
	}

	id, err := h.repo.Create(ctx, newActivity)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			http.Error(w, "activity already exists", http.StatusConflict)
			return
		}
		if pkg.IsCheckViolationError(err) || pkg.IsInvalidInputError(err) {
			log.Warnf("create activity rejected: %s", err)
			pkg.WriteValidationErrors(w, errors.New("activity rejected: check times and values"))
			return
		}
		log.Errorf("create activity for user %s: %s", newActivity.UserID, err)
		http.Error(w, "failed to create activity", http.StatusInternalServerError)
		return
	}

	if h.metricsManager != nil {
		h.metricsManager.CounterActivitiesCreated.Inc()
	}

	resp, err := json.Marshal(CreateActivityResponse{ID: id})
	if err != nil {
		log.Errorf("marshal create activity response: %s", err)
		http.Error(w, "failed to create activity", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resp, http.StatusCreated)
}

func (h *Handler) toNewActivity(req CreateActivityRequest) (NewActivity, error) {
	if err := h.validate.Struct(req); err != nil {
		return NewActivity{}, err
	}

	startTime, err := pkg.ParseISOTime(req.StartTime)
	if err != nil {
		return NewActivity{}, fmt.Errorf("start_time: %w", err)
	}
	endTime, err := pkg.ParseISOTime(req.EndTime)
	if err != nil {
		return NewActivity{}, fmt.Errorf("end_time: %w", err)
	}

	return NewActivity{
		UserID:           uuid.MustParse(req.UserID),
		StartTime:        startTime,
		EndTime:          endTime,
		DurationSeconds:  *req.DurationSeconds,
		DistanceKm:       *req.DistanceKm,
		AvgSpeedKmh:      req.AvgSpeedKmh,
		ActiveEnergyKcal: req.ActiveEnergyKcal,
		ElevationGainM:   req.ElevationGainM,
		AvgHrBpm:         roundHeartRate(req.AvgHrBpm),
		MaxHrBpm:         roundHeartRate(req.MaxHrBpm),
		Vo2max:           req.Vo2max,
	}, nil
}

// roundHeartRate rounds half to even, so 150.5 is stored as 150.
func roundHeartRate(hr *float64) *int {
	if hr == nil {
		return nil
	}
	rounded := int(math.RoundToEven(*hr))
	return &rounded
}
