package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"lrukv/internal/models"
	"lrukv/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// handleGetEntry handles GET /entry/{key} requests
func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	key := strings.TrimSpace(r.PathValue("key"))
	if key == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "Key cannot be empty", "")
		return
	}

	entry, err := s.service.GetEntry(r.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			s.writeErrorResponse(w, http.StatusNotFound, "Entry not found", key)
			return
		}

		s.logger.Error().
			Err(err).
			Str("key", key).
			Str("remote_addr", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("Failed to get entry")

		s.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, entry)
}

// handlePutEntry handles PUT /entry/{key} requests. The body is the JSON value
func (s *Server) handlePutEntry(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PathValue("key"))
	if key == "" {
		s.writeErrorResponse(w, http.StatusBadRequest, "Key cannot be empty", "")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large", "")
		return
	}

	entry := &models.Entry{Key: key, Value: json.RawMessage(body)}
	if err := s.service.ProcessEntry(r.Context(), entry); err != nil {
		var vErr models.ValidationError
		if errors.As(err, &vErr) {
			s.writeErrorResponse(w, http.StatusBadRequest, "Invalid entry", vErr.Error())
			return
		}

		s.logger.Error().Err(err).Str("key", key).Msg("Failed to put entry")
		s.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", "")
		return
	}

	s.writeJSONResponse(w, http.StatusOK, entry)
}

// handleStats handles GET /stats requests
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, http.StatusOK, s.service.Stats())
}

// handleHealth handles GET /health requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}

	s.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response in JSON format
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message, details string) {
	errorResp := ErrorResponse{
		Error:   message,
		Message: details,
	}

	s.writeJSONResponse(w, statusCode, errorResp)
}
