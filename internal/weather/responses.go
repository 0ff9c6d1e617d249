package weather

type HourlyWeather struct {
	Time      string         `json:"time"`
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Values    map[string]any `json:"values"`
}

type Daylight struct {
	Date               string  `json:"date"`
	Latitude           float64 `json:"latitude"`
	Longitude          float64 `json:"longitude"`
	Sunrise            *string `json:"sunrise"`
	Sunset             *string `json:"sunset"`
	SolarNoon          *string `json:"solar_noon"`
	DayLength          *int64  `json:"day_length"`
	CivilTwilightBegin *string `json:"civil_twilight_begin"`
	CivilTwilightEnd   *string `json:"civil_twilight_end"`
}

type Pollutant struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type AirQuality struct {
	Latitude   float64              `json:"latitude"`
	Longitude  float64              `json:"longitude"`
	RadiusM    int                  `json:"radius_m"`
	Pollutants map[string]Pollutant `json:"pollutants"`
	Source     string               `json:"source"`
}

// upstream payloads

type openMeteoForecast struct {
	Hourly map[string][]any `json:"hourly"`
}

type sunriseSunsetResponse struct {
	Status  string `json:"status"`
	Results struct {
		Sunrise            *string `json:"sunrise"`
		Sunset             *string `json:"sunset"`
		SolarNoon          *string `json:"solar_noon"`
		DayLength          *int64  `json:"day_length"`
		CivilTwilightBegin *string `json:"civil_twilight_begin"`
		CivilTwilightEnd   *string `json:"civil_twilight_end"`
	} `json:"results"`
}

type openAQLatestResponse struct {
	Results []struct {
		Location     string `json:"location"`
		Measurements []struct {
			Parameter string   `json:"parameter"`
			Value     *float64 `json:"value"`
			Unit      string   `json:"unit"`
		} `json:"measurements"`
	} `json:"results"`
}
