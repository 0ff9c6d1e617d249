package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/2beens/cyclingcoach/internal/geoip"
	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=weather_test

type locator interface {
	GetRequestLocation(ctx context.Context, r *http.Request) (*geoip.Location, error)
}

type Handler struct {
	api     *Api
	locator locator
}

func NewHandler(api *Api, locator locator) *Handler {
	return &Handler{
		api:     api,
		locator: locator,
	}
}

func (handler *Handler) HandleByTime(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "weather.handleByTime")
	defer span.End()

	query := r.URL.Query()
	lat, lon, err := parseLatLon(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	at, err := pkg.ParseISOTime(query.Get("datetimeIso"))
	if err != nil {
		http.Error(w, "datetimeIso must be ISO-8601 (e.g. 2025-08-10T09:00:00Z)", http.StatusBadRequest)
		return
	}

	variables := pkg.SplitCSV(query.Get("variables"))

	hourly, err := handler.api.HourlyAt(ctx, lat, lon, at, variables)
	if err != nil {
		writeUpstreamError(w, "failed to fetch weather", err)
		return
	}

	respond(w, hourly)
}

func (handler *Handler) HandleDaylight(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "weather.handleDaylight")
	defer span.End()

	query := r.URL.Query()
	lat, lon, err := parseLatLon(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	date := query.Get("dateIso")
	if date == "" {
		date = time.Now().UTC().Format(pkg.DateLayout)
	} else if _, err := time.Parse(pkg.DateLayout, date); err != nil {
		http.Error(w, "dateIso must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	daylight, err := handler.api.Daylight(ctx, lat, lon, date)
	if err != nil {
		writeUpstreamError(w, "failed to fetch daylight", err)
		return
	}

	respond(w, daylight)
}

func (handler *Handler) HandleAirQuality(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "weather.handleAirQuality")
	defer span.End()

	query := r.URL.Query()
	lat, lon, err := parseLatLon(query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	radius, err := boundedInt(query, "radius_m", 1000, 50000, 10000)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := boundedInt(query, "limit", 1, 50, 10)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	airQuality, err := handler.api.AirQuality(ctx, lat, lon, radius, limit)
	if err != nil {
		writeUpstreamError(w, "failed to fetch air quality", err)
		return
	}

	respond(w, airQuality)
}

func (handler *Handler) HandleLocation(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "weather.handleLocation")
	defer span.End()

	location, err := handler.locator.GetRequestLocation(ctx, r)
	if err != nil {
		log.Errorf("get request location: %s", err)
		if errors.Is(err, geoip.ErrNoLocation) {
			http.Error(w, "location not found", http.StatusNotFound)
			return
		}
		http.Error(w, "geo ip info error", http.StatusBadGateway)
		return
	}

	span.SetAttributes(attribute.String("city", location.City))
	span.SetAttributes(attribute.String("country", location.Country))

	respond(w, location)
}

func parseLatLon(query url.Values) (float64, float64, error) {
	lat, err := strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return 0, 0, errors.New("lat must be a number between -90 and 90")
	}
	lon, err := strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return 0, 0, errors.New("lon must be a number between -180 and 180")
	}
	return lat, lon, nil
}

func boundedInt(query url.Values, name string, lo, hi, def int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, lo, hi)
	}
	return v, nil
}

func writeUpstreamError(w http.ResponseWriter, msg string, err error) {
	log.Errorf("%s: %s", msg, err)
	if errors.Is(err, ErrUpstream) {
		http.Error(w, fmt.Sprintf("%s: %s", msg, err), http.StatusBadGateway)
		return
	}
	http.Error(w, msg, http.StatusInternalServerError)
}

func respond(w http.ResponseWriter, payload any) {
	resp, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal weather response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, resp)
}
