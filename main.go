package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pricehunt/pricehunt/config"
	"github.com/pricehunt/pricehunt/internal/fusion"
	"github.com/pricehunt/pricehunt/internal/geo"
	"github.com/pricehunt/pricehunt/internal/pipeline"
	"github.com/pricehunt/pricehunt/internal/pricing"
	"github.com/pricehunt/pricehunt/internal/productdb"
	"github.com/pricehunt/pricehunt/internal/server"
	"github.com/pricehunt/pricehunt/internal/vision"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		log.Fatal().Msgf("missing required config: %s", strings.Join(missing, ", "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	identifier, err := buildIdentifier(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vision model")
	}

	geocoder := geo.NewClient(geo.ClientOpts{BaseURL: cfg.GeocodeURL})
	prices := pricing.NewClient(pricing.ClientOpts{
		BaseURL: cfg.ShoppingSearchURL,
		APIKey:  cfg.ShoppingSearchKey,
	})
	products := productdb.NewClient(productdb.ClientOpts{
		BaseURL: cfg.ProductDBURL,
		APIKey:  cfg.ProductDBKey,
	})

	// The merger needs Gemini directly; gateway-only deployments run
	// without fusion and question answering.
	var merger pipeline.Merger
	var answerer server.Answerer
	if cfg.GeminiAPIKey != "" {
		m, err := fusion.NewMerger(ctx, cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize fusion model")
		}
		merger = m
		answerer = m
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, fusion and question answering disabled")
	}

	scanner := pipeline.NewScanner(geocoder, identifier, prices, products, merger)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.New(scanner, answerer).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func buildIdentifier(ctx context.Context, cfg config.Config) (vision.Identifier, error) {
	if cfg.GeminiAPIKey != "" {
		return vision.NewGeminiIdentifier(ctx, cfg.GeminiAPIKey)
	}
	log.Info().Str("model", cfg.VisionModel).Msg("using OpenAI-compatible vision gateway")
	return vision.NewGatewayIdentifier(cfg.VisionGatewayURL, cfg.VisionAPIKey, cfg.VisionModel), nil
}
