package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pricehunt/pricehunt/config"
	"github.com/pricehunt/pricehunt/internal/fusion"
	"github.com/pricehunt/pricehunt/internal/geo"
	"github.com/pricehunt/pricehunt/internal/pipeline"
	"github.com/pricehunt/pricehunt/internal/pricing"
	"github.com/pricehunt/pricehunt/internal/productdb"
	"github.com/pricehunt/pricehunt/internal/vision"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Runs the full scan pipeline against a local image file, without the
// HTTP server. Useful for trying prompts and locations quickly.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <image-path> [lat lon]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required for vision and fusion\n")
		fmt.Fprintf(os.Stderr, "  SERPAPI_KEY    - Required for price search\n")
		os.Exit(1)
	}

	imagePath := os.Args[1]
	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "Missing required config: %s\n", strings.Join(missing, ", "))
		os.Exit(1)
	}

	req := pipeline.ScanRequest{ImageData: imageData, MimeType: getMimeType(imagePath)}
	if len(os.Args) >= 4 {
		lat, latErr := strconv.ParseFloat(os.Args[2], 64)
		lon, lonErr := strconv.ParseFloat(os.Args[3], 64)
		if latErr != nil || lonErr != nil {
			fmt.Fprintf(os.Stderr, "Invalid coordinates: %s %s\n", os.Args[2], os.Args[3])
			os.Exit(1)
		}
		req.Coordinates = &geo.Coordinates{Latitude: lat, Longitude: lon}
	}

	ctx := context.Background()

	var identifier vision.Identifier
	var merger pipeline.Merger
	if cfg.GeminiAPIKey != "" {
		gemini, err := vision.NewGeminiIdentifier(ctx, cfg.GeminiAPIKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize Gemini: %v\n", err)
			os.Exit(1)
		}
		identifier = gemini

		m, err := fusion.NewMerger(ctx, cfg.GeminiAPIKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize fusion model: %v\n", err)
			os.Exit(1)
		}
		merger = m
	} else {
		identifier = vision.NewGatewayIdentifier(cfg.VisionGatewayURL, cfg.VisionAPIKey, cfg.VisionModel)
	}

	scanner := pipeline.NewScanner(
		geo.NewClient(geo.ClientOpts{BaseURL: cfg.GeocodeURL}),
		identifier,
		pricing.NewClient(pricing.ClientOpts{BaseURL: cfg.ShoppingSearchURL, APIKey: cfg.ShoppingSearchKey}),
		productdb.NewClient(productdb.ClientOpts{BaseURL: cfg.ProductDBURL, APIKey: cfg.ProductDBKey}),
		merger,
	)

	rec, err := scanner.Scan(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func getMimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
