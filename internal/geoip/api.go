package geoip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2beens/cyclingcoach/internal/telemetry/tracing"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/ipinfo/go/v2/ipinfo"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const locationCacheTTL = 24 * time.Hour

var ErrNoLocation = errors.New("no location for ip")

type Location struct {
	IP        string  `json:"ip"`
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

var devLocation = Location{
	IP:        "127.0.0.1",
	City:      "Berlin",
	Region:    "Berlin",
	Country:   "DE",
	Latitude:  52.52,
	Longitude: 13.405,
	Timezone:  "Europe/Berlin",
}

type Api struct {
	mu           sync.Mutex
	ipinfoClient *ipinfo.Client
	redisClient  *redis.Client
}

func NewApi(ipinfoClient *ipinfo.Client, redisClient *redis.Client) *Api {
	return &Api{
		ipinfoClient: ipinfoClient,
		redisClient:  redisClient,
	}
}

func (gi *Api) GetRequestLocation(ctx context.Context, r *http.Request) (*Location, error) {
	userIp, err := pkg.ReadUserIP(r)
	if err != nil {
		return nil, fmt.Errorf("get user ip: %w", err)
	}
	return gi.GetIPLocation(ctx, userIp)
}

func (gi *Api) GetIPLocation(ctx context.Context, userIp string) (_ *Location, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "geoIp.getIPLocation")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	span.SetAttributes(attribute.String("user.ip", userIp))

	// used for development
	if userIp == "localhost" {
		log.Debugf("request location: returning development localhost / Berlin")
		loc := devLocation
		return &loc, nil
	}

	// clients usually ask for the location once per page, but concurrent requests
	// from the same ip should still hit ipinfo only once
	gi.mu.Lock()
	defer gi.mu.Unlock()

	cacheKey := fmt.Sprintf("ip-location::%s", userIp)
	cached, err := gi.redisClient.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		loc := &Location{}
		if err := json.Unmarshal(cached, loc); err == nil {
			span.SetAttributes(attribute.Bool("user.ip.from-cache", true))
			return loc, nil
		}
		log.Errorf("failed to unmarshal cached location for %s: %s", userIp, err)
	case errors.Is(err, redis.Nil):
		log.Debugf("location for [%s] not cached", userIp)
	default:
		log.Errorf("failed to get cached location for [%s]: %s", userIp, err)
	}
	span.SetAttributes(attribute.Bool("user.ip.from-cache", false))

	ip := net.ParseIP(userIp)
	if ip == nil {
		return nil, fmt.Errorf("invalid ip: %s", userIp)
	}

	core, err := gi.ipinfoClient.GetIPInfo(ip)
	if err != nil {
		return nil, fmt.Errorf("ipinfo lookup: %w", err)
	}

	loc, err := locationFromCore(userIp, core)
	if err != nil {
		return nil, err
	}

	locBytes, err := json.Marshal(loc)
	if err != nil {
		return nil, fmt.Errorf("marshal location: %w", err)
	}
	if err := gi.redisClient.Set(ctx, cacheKey, locBytes, locationCacheTTL).Err(); err != nil {
		log.Errorf("failed to cache location for %s: %s", userIp, err)
	}

	return loc, nil
}

func locationFromCore(userIp string, core *ipinfo.Core) (*Location, error) {
	if core == nil || core.Bogon || core.Location == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoLocation, userIp)
	}

	lat, lon, err := parseLatLon(core.Location)
	if err != nil {
		return nil, err
	}

	return &Location{
		IP:        userIp,
		City:      core.City,
		Region:    core.Region,
		Country:   core.Country,
		Latitude:  lat,
		Longitude: lon,
		Timezone:  core.Timezone,
	}, nil
}

// parseLatLon parses ipinfo's "lat,lon" loc field.
func parseLatLon(loc string) (float64, float64, error) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid loc: %s", loc)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid loc latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid loc longitude: %w", err)
	}
	return lat, lon, nil
}
