package models

import "time"

// ImagesResponse is the image search result
type ImagesResponse struct {
	Query  string   `json:"query"`
	Images []string `json:"images"`
}

// CountryInfo is the reshaped country metadata
type CountryInfo struct {
	Name       string    `json:"name"`
	Capital    string    `json:"capital"`
	Flag       string    `json:"flag"`
	Currency   string    `json:"currency"`
	Languages  []string  `json:"languages"`
	LatLng     []float64 `json:"latlng"`
	Region     string    `json:"region"`
	Population int64     `json:"population"`
}

// CurrentWeather is the reshaped current conditions
type CurrentWeather struct {
	Temperature   float64   `json:"temperature"`
	WindSpeed     float64   `json:"windspeed"`
	WindDirection float64   `json:"winddirection"`
	ObservedAt    time.Time `json:"time"`
	WeatherCode   int       `json:"weathercode"`
}

// WeatherResponse wraps current conditions with the requested coordinates
type WeatherResponse struct {
	Latitude  float64        `json:"latitude"`
	Longitude float64        `json:"longitude"`
	Weather   CurrentWeather `json:"weather"`
}
