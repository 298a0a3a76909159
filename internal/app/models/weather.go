package models

import "time"

// WeatherData is the current conditions snapshot used by the insight rules.
type WeatherData struct {
	Temperature   float64   `json:"temperature"`
	Humidity      float64   `json:"humidity"`
	Precipitation float64   `json:"precipitation"`
	WindSpeed     float64   `json:"windSpeed"`
	Pressure      float64   `json:"pressure"`
	UVIndex       float64   `json:"uvIndex"`
	Visibility    float64   `json:"visibility"`
	Condition     string    `json:"condition"`
	Timestamp     time.Time `json:"timestamp"`
}

type WeatherForecastDay struct {
	Date                time.Time `json:"date"`
	High                float64   `json:"high"`
	Low                 float64   `json:"low"`
	Precipitation       float64   `json:"precipitation"`
	PrecipitationChance float64   `json:"precipitationChance"`
	Humidity            float64   `json:"humidity"`
	Condition           string    `json:"condition"`
}

const (
	WeatherAlertWarning  = "warning"
	WeatherAlertAdvisory = "advisory"
	WeatherAlertWatch    = "watch"
)

type WeatherAlert struct {
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	ValidUntil  time.Time `json:"validUntil"`
}

// WeatherReport bundles everything the weather endpoint and the weather
// insight generator consume.
type WeatherReport struct {
	Current  WeatherData          `json:"currentConditions"`
	Forecast []WeatherForecastDay `json:"forecast"`
	Alerts   []WeatherAlert       `json:"alerts"`
}
