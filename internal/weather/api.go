package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/cyclingcoach/internal/telemetry/metrics"
	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	hourlyCacheExpire     = 30 * 60
	daylightCacheExpire   = 12 * 60 * 60
	airQualityCacheExpire = 15 * 60

	openMeteoHourLayout = "2006-01-02T15:04"
)

var DefaultVariables = []string{
	"temperature_2m",
	"windspeed_10m",
	"winddirection_10m",
	"precipitation",
	"cloudcover",
}

type NewApiParams struct {
	OpenMeteoBaseURL     string
	SunriseSunsetBaseURL string
	OpenAQBaseURL        string
	HTTPClient           *http.Client
	Backoff              BackoffConfig
	MetricsManager       *metrics.Manager
}

type Api struct {
	cache         *freecache.Cache
	openMeteo     *upstream
	sunriseSunset *upstream
	openAQ        *upstream
}

func NewApi(params NewApiParams) *Api {
	megabyte := 1024 * 1024
	cacheSize := 20 * megabyte

	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Api{
		cache:         freecache.NewCache(cacheSize),
		openMeteo:     newUpstream("open-meteo", strings.TrimSuffix(params.OpenMeteoBaseURL, "/"), httpClient, params.Backoff, params.MetricsManager),
		sunriseSunset: newUpstream("sunrise-sunset", strings.TrimSuffix(params.SunriseSunsetBaseURL, "/"), httpClient, params.Backoff, params.MetricsManager),
		openAQ:        newUpstream("openaq", strings.TrimSuffix(params.OpenAQBaseURL, "/"), httpClient, params.Backoff, params.MetricsManager),
	}
}

// HourlyAt returns the requested Open-Meteo hourly variables for the hour containing at.
func (a *Api) HourlyAt(ctx context.Context, lat, lon float64, at time.Time, variables []string) (_ *HourlyWeather, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "weatherApi.hourlyAt")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if len(variables) == 0 {
		variables = DefaultVariables
	}
	hour := at.UTC().Truncate(time.Hour)
	span.SetAttributes(attribute.String("hour", hour.Format(time.RFC3339)))

	query := url.Values{}
	query.Set("latitude", formatCoord(lat))
	query.Set("longitude", formatCoord(lon))
	query.Set("hourly", strings.Join(variables, ","))
	query.Set("timezone", "UTC")
	query.Set("start_hour", hour.Format(openMeteoHourLayout))
	query.Set("end_hour", hour.Format(openMeteoHourLayout))

	body, err := a.cachedGet(ctx, a.openMeteo, "/v1/forecast?"+query.Encode(), hourlyCacheExpire)
	if err != nil {
		return nil, err
	}

	var forecast openMeteoForecast
	if err := json.Unmarshal(body, &forecast); err != nil {
		return nil, fmt.Errorf("%w: unmarshal open-meteo response: %w", ErrUpstream, err)
	}

	result := &HourlyWeather{
		Time:      hour.Format(time.RFC3339),
		Latitude:  lat,
		Longitude: lon,
		Values:    map[string]any{},
	}

	times := forecast.Hourly["time"]
	if len(times) == 0 {
		return result, nil
	}

	idx := 0
	for i, raw := range times {
		s, ok := raw.(string)
		if !ok {
			continue
		}
		if t, err := time.Parse(openMeteoHourLayout, s); err == nil && t.Equal(hour) {
			idx = i
			break
		}
	}

	for _, v := range variables {
		if series, ok := forecast.Hourly[v]; ok && len(series) > idx {
			result.Values[v] = series[idx]
		}
	}

	return result, nil
}

// Daylight returns sunrise and sunset data for the given date (YYYY-MM-DD, UTC).
func (a *Api) Daylight(ctx context.Context, lat, lon float64, date string) (_ *Daylight, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "weatherApi.daylight")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	span.SetAttributes(attribute.String("date", date))

	query := url.Values{}
	query.Set("lat", formatCoord(lat))
	query.Set("lng", formatCoord(lon))
	query.Set("date", date)
	query.Set("formatted", "0")

	body, err := a.cachedGet(ctx, a.sunriseSunset, "/json?"+query.Encode(), daylightCacheExpire)
	if err != nil {
		return nil, err
	}

	var resp sunriseSunsetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal sunrise-sunset response: %w", ErrUpstream, err)
	}
	if resp.Status != "OK" {
		a.cache.Del([]byte(a.sunriseSunset.baseURL + "/json?" + query.Encode()))
		return nil, fmt.Errorf("%w: daylight api status: %s", ErrUpstream, resp.Status)
	}

	return &Daylight{
		Date:               date,
		Latitude:           lat,
		Longitude:          lon,
		Sunrise:            resp.Results.Sunrise,
		Sunset:             resp.Results.Sunset,
		SolarNoon:          resp.Results.SolarNoon,
		DayLength:          resp.Results.DayLength,
		CivilTwilightBegin: resp.Results.CivilTwilightBegin,
		CivilTwilightEnd:   resp.Results.CivilTwilightEnd,
	}, nil
}

// AirQuality returns the latest value per pollutant from the nearest OpenAQ stations.
func (a *Api) AirQuality(ctx context.Context, lat, lon float64, radiusM, limit int) (_ *AirQuality, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "weatherApi.airQuality")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	query := url.Values{}
	query.Set("coordinates", formatCoord(lat)+","+formatCoord(lon))
	query.Set("radius", strconv.Itoa(radiusM))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("order_by", "distance")
	query.Set("sort", "asc")

	body, err := a.cachedGet(ctx, a.openAQ, "/v2/latest?"+query.Encode(), airQualityCacheExpire)
	if err != nil {
		return nil, err
	}

	var resp openAQLatestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal openaq response: %w", ErrUpstream, err)
	}

	// results are ordered by distance, so the first value seen per pollutant is the nearest
	pollutants := map[string]Pollutant{}
	for _, site := range resp.Results {
		for _, m := range site.Measurements {
			param := strings.ToLower(m.Parameter)
			if _, seen := pollutants[param]; seen || m.Value == nil {
				continue
			}
			pollutants[param] = Pollutant{Value: *m.Value, Unit: m.Unit}
		}
	}

	return &AirQuality{
		Latitude:   lat,
		Longitude:  lon,
		RadiusM:    radiusM,
		Pollutants: pollutants,
		Source:     "OpenAQ",
	}, nil
}

func (a *Api) cachedGet(ctx context.Context, u *upstream, path string, expireSeconds int) ([]byte, error) {
	cacheKey := []byte(u.baseURL + path)
	if cached, err := a.cache.Get(cacheKey); err == nil {
		log.Tracef("found %s response in cache: %s", u.name, path)
		return cached, nil
	}

	body, err := u.get(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Set(cacheKey, body, expireSeconds); err != nil {
		log.Errorf("failed to cache %s response: %s", u.name, err)
	}

	return body, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
