package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pricehunt/pricehunt/internal/fusion"
	"github.com/pricehunt/pricehunt/internal/geo"
	"github.com/pricehunt/pricehunt/internal/pipeline"
	"github.com/pricehunt/pricehunt/internal/pricing"
	"github.com/rs/zerolog/log"
)

// ScanPayload is the inbound scan request. ImageData is a base64 string,
// optionally wrapped as a data URL.
type ScanPayload struct {
	ImageData string        `json:"imageData"`
	Location  *ScanLocation `json:"location,omitempty"`
}

// ScanLocation carries either device coordinates or a place hint.
type ScanLocation struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var payload ScanPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if payload.ImageData == "" {
		s.respondError(w, http.StatusBadRequest, "imageData is required", "")
		return
	}

	imageData, mimeType, err := decodeImage(payload.ImageData)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	req := pipeline.ScanRequest{ImageData: imageData, MimeType: mimeType}
	if loc := payload.Location; loc != nil {
		if loc.Latitude != nil && loc.Longitude != nil {
			req.Coordinates = &geo.Coordinates{Latitude: *loc.Latitude, Longitude: *loc.Longitude}
		} else if loc.City != "" || loc.Country != "" {
			req.LocationHint = &geo.Hint{City: loc.City, Country: loc.Country}
		}
	}

	rec, err := s.scanner.Scan(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("scan failed")
		s.respondError(w, http.StatusInternalServerError, err.Error(), "Failed to analyze product image")
		return
	}

	s.respondJSON(w, http.StatusOK, rec)
}

type translatePayload struct {
	ProductData *pipeline.ProductRecord `json:"productData"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var payload translatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ProductData == nil {
		s.respondError(w, http.StatusBadRequest, "productData is required", "")
		return
	}

	rec, err := s.scanner.Translate(r.Context(), payload.ProductData)
	if err != nil {
		log.Error().Err(err).Msg("translation failed")
		s.respondError(w, http.StatusInternalServerError, err.Error(), "Failed to translate product data")
		return
	}

	s.respondJSON(w, http.StatusOK, rec)
}

type widenPayload struct {
	ProductName string `json:"product_name"`
	Country     string `json:"country"`
}

func (s *Server) handleWidenSearch(w http.ResponseWriter, r *http.Request) {
	var payload widenPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ProductName == "" {
		s.respondError(w, http.StatusBadRequest, "product_name is required", "")
		return
	}

	sum, err := s.scanner.WidenSearch(r.Context(), payload.ProductName, payload.Country)
	if err != nil {
		log.Error().Err(err).Msg("widened price search failed")
		s.respondError(w, http.StatusBadGateway, "Failed to fetch pricing data", "")
		return
	}

	if sum.Availability == pricing.NoLocalResults {
		s.respondJSON(w, http.StatusNotFound, map[string]string{
			"error":   "no_results",
			"message": "No offers found for this product",
		})
		return
	}

	s.respondJSON(w, http.StatusOK, sum)
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	if s.answerer == nil {
		s.respondError(w, http.StatusServiceUnavailable, "question answering is not configured", "")
		return
	}

	var q fusion.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil || q.Question == "" || q.ProductName == "" {
		s.respondError(w, http.StatusBadRequest, "question and productName are required", "")
		return
	}

	points, err := s.answerer.AnswerQuestion(r.Context(), q)
	if err != nil {
		log.Error().Err(err).Msg("question answering failed")
		s.respondError(w, http.StatusInternalServerError, err.Error(), "Failed to answer product question")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string][]string{"bulletPoints": points})
}

// decodeImage accepts a bare base64 string or a data URL and returns the
// image bytes and MIME type.
func decodeImage(data string) ([]byte, string, error) {
	mimeType := "image/jpeg"
	if strings.HasPrefix(data, "data:") {
		rest, ok := strings.CutPrefix(data, "data:")
		if !ok {
			return nil, "", fmt.Errorf("invalid data URL")
		}
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, "", fmt.Errorf("invalid data URL")
		}
		if mt, _, _ := strings.Cut(meta, ";"); mt != "" {
			mimeType = mt
		}
		data = payload
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("invalid image data: %w", err)
	}
	return decoded, mimeType, nil
}
