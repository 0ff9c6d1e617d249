package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type WeeklyResponse struct {
	Weeks []WeeklyBucket `json:"weeks"`
}

type DailyResponse struct {
	Days []DailyBucket `json:"days"`
}

type TopRidesResponse struct {
	Rides []Ride `json:"rides"`
}

type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.summary")
	defer span.End()

	window, err := parseWindow(r.URL.Query(), "startDateIso", "endDateIso")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.analyzer.Summary(ctx, window)
	if err != nil {
		log.Errorf("stats summary: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	respond(w, "summary", summary)
}

func (h *Handler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.weekly")
	defer span.End()

	window, err := parseWindow(r.URL.Query(), "startDate", "endDate")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	weeks, err := h.analyzer.Weekly(ctx, window)
	if err != nil {
		log.Errorf("stats weekly: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	respond(w, "weekly", WeeklyResponse{Weeks: weeks})
}

func (h *Handler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.daily")
	defer span.End()

	window, err := parseWindow(r.URL.Query(), "startDate", "endDate")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	days, err := h.analyzer.Daily(ctx, window)
	if err != nil {
		log.Errorf("stats daily: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	respond(w, "daily", DailyResponse{Days: days})
}

func (h *Handler) HandleOvertraining(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.overtraining")
	defer span.End()

	query := r.URL.Query()
	window, err := parseWindow(query, "startDateIso", "endDateIso")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var hr HeartRateParams
	if hr.HrMax, err = intParam(query, "hrMax", 100, 230); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if hr.HrRest, err = intParam(query, "hrRest", 30, 120); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ctlDays, err := intParamOrDefault(query, "ctl_days", 7, 180, DefaultCtlDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	atlDays, err := intParamOrDefault(query, "atl_days", 3, 28, DefaultAtlDays)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snapshot, err := h.analyzer.Overtraining(ctx, window, hr, ctlDays, atlDays)
	if err != nil {
		log.Errorf("stats overtraining: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	respond(w, "overtraining", snapshot)
}

func (h *Handler) HandleWorkloadScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.workload-score")
	defer span.End()

	window, err := parseWindow(r.URL.Query(), "startDateIso", "endDateIso")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workload, err := h.analyzer.WorkloadScore(ctx, window)
	if err != nil {
		log.Errorf("stats workload score: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	respond(w, "workload score", workload)
}

func (h *Handler) HandleVo2maxTrend(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.vo2max-trend")
	defer span.End()

	window, err := parseWindow(r.URL.Query(), "startDateIso", "endDateIso")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	trend, err := h.analyzer.Vo2maxTrend(ctx, window)
	if err != nil {
		log.Errorf("stats vo2max trend: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	respond(w, "vo2max trend", trend)
}

func (h *Handler) HandleClimbMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.climb-metrics")
	defer span.End()

	query := r.URL.Query()
	window, err := parseWindow(query, "startDateIso", "endDateIso")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := intParamOrDefault(query, "limit", 1, 100, DefaultRankingLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	climb, err := h.analyzer.ClimbMetrics(ctx, window, limit)
	if err != nil {
		log.Errorf("stats climb metrics: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	respond(w, "climb metrics", climb)
}

func (h *Handler) HandleTopRides(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.top-rides")
	defer span.End()

	query := r.URL.Query()
	window, err := parseWindow(query, "startDateIso", "endDateIso")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := intParamOrDefault(query, "limit", 1, 100, DefaultRankingLimit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	orderBy, err := ParseOrderBy(query.Get("orderBy"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rides, err := h.analyzer.TopRides(ctx, window, orderBy, limit)
	if err != nil {
		if errors.Is(err, ErrInvalidOrderBy) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("stats top rides: %s", err)
		http.Error(w, "failed to load activities", http.StatusInternalServerError)
		return
	}

	respond(w, "top rides", TopRidesResponse{Rides: rides})
}

func respond(w http.ResponseWriter, name string, v any) {
	resp, err := json.Marshal(v)
	if err != nil {
		log.Errorf("marshal %s response: %s", name, err)
		http.Error(w, "failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}

func parseWindow(query url.Values, startKey, endKey string) (Window, error) {
	startRaw, endRaw := query.Get(startKey), query.Get(endKey)
	if startRaw == "" || endRaw == "" {
		return Window{}, fmt.Errorf("%s and %s are required", startKey, endKey)
	}

	start, err := pkg.ParseISOTime(startRaw)
	if err != nil {
		return Window{}, fmt.Errorf("invalid %s", startKey)
	}
	end, err := pkg.ParseISOTime(endRaw)
	if err != nil {
		return Window{}, fmt.Errorf("invalid %s", endKey)
	}

	window := Window{Start: start, End: end}
	if err := window.Validate(); err != nil {
		return Window{}, err
	}
	if userIDRaw := query.Get("userId"); userIDRaw != "" {
		userID, err := uuid.Parse(userIDRaw)
		if err != nil {
			return Window{}, errors.New("invalid userId")
		}
		window.UserID = &userID
	}

	return window, nil
}

func intParam(query url.Values, key string, lo, hi int) (*int, error) {
	raw := query.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	if v < lo || v > hi {
		return nil, fmt.Errorf("%s must be between %d and %d", key, lo, hi)
	}
	return &v, nil
}

func intParamOrDefault(query url.Values, key string, lo, hi, def int) (int, error) {
	v, err := intParam(query, key, lo, hi)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return def, nil
	}
	return *v, nil
}
