package config

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds application configuration, read from the process
// environment. Endpoint URLs are overridable so tests and self-hosted
// gateways can point the clients elsewhere.
type Config struct {
	Port        int           `env:"PORT" envDefault:"8080"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"20s"`

	// Vision model. Gemini is used when GEMINI_API_KEY is set; otherwise
	// the OpenAI-compatible gateway configured below.
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	VisionGatewayURL string `env:"VISION_GATEWAY_URL"`
	VisionAPIKey     string `env:"VISION_API_KEY"`
	VisionModel      string `env:"VISION_MODEL" envDefault:"google/gemini-2.5-flash"`

	// Shopping search (SerpAPI google_shopping engine).
	ShoppingSearchURL string `env:"SERPAPI_URL" envDefault:"https://serpapi.com"`
	ShoppingSearchKey string `env:"SERPAPI_KEY"`

	// Reverse geocoding (Nominatim-compatible).
	GeocodeURL string `env:"GEOCODE_URL" envDefault:"https://nominatim.openstreetmap.org"`

	// Optional secondary product database (API Ninjas price search).
	// Enrichment is skipped when the key is empty.
	ProductDBURL string `env:"PRODUCT_DB_URL" envDefault:"https://api.api-ninjas.com"`
	ProductDBKey string `env:"PRODUCT_DB_API_KEY"`
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present; errors are ignored since
// the file may not exist.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Missing returns the names of required settings that are not set.
// The vision model and shopping search credentials are hard requirements;
// everything else has a usable default or degrades gracefully.
func (c Config) Missing() []string {
	var missing []string
	if c.GeminiAPIKey == "" && (c.VisionGatewayURL == "" || c.VisionAPIKey == "") {
		missing = append(missing, "GEMINI_API_KEY or VISION_GATEWAY_URL+VISION_API_KEY")
	}
	if c.ShoppingSearchKey == "" {
		missing = append(missing, "SERPAPI_KEY")
	}
	return missing
}
