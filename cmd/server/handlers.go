package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/costcalc/internal/export"
	"github.com/Simplici0/costcalc/internal/model"
	"github.com/Simplici0/costcalc/internal/pricing"
	"github.com/Simplici0/costcalc/internal/store"
)

const (
	msgNotFound    = "Configuration not found"
	msgSaved       = "Configuration saved"
	msgSaveFailed  = "Error saving configuration"
	msgDeleted     = "Configuration deleted"
	msgInvalidJSON = "Invalid JSON body"
	msgNotFinite   = "Amounts are too large to calculate"
	maxBodyBytes   = 1 << 20
)

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	state, err := decodeFormState(w, r)
	if err != nil {
		logRequestError(r, "decode calculation request", err)
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: msgInvalidJSON})
		return
	}

	result, err := pricing.Calculate(state)
	if errors.Is(err, pricing.ErrNotFinite) {
		logRequestError(r, "calculate", err)
		writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{Error: msgNotFinite})
		return
	}
	if err != nil {
		logRequestError(r, "calculate", err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "failed to calculate"})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleConfigurationsList(w http.ResponseWriter, r *http.Request) {
	configs, err := s.store.List(r.Context())
	if err != nil {
		logRequestError(r, "list configurations", err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "failed to load configurations"})
		return
	}

	writeJSON(w, http.StatusOK, configs)
}

func (s *server) handleConfigurationCreate(w http.ResponseWriter, r *http.Request) {
	state, err := decodeFormState(w, r)
	if err != nil {
		logRequestError(r, "decode configuration", err)
		writeJSON(w, http.StatusBadRequest, model.StatusResponse{Success: false, Message: msgInvalidJSON})
		return
	}

	if _, err := s.store.Create(r.Context(), state); err != nil {
		logRequestError(r, "save configuration", err)
		writeJSON(w, http.StatusInternalServerError, model.StatusResponse{Success: false, Message: msgSaveFailed})
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: msgSaved})
}

func (s *server) handleConfigurationGet(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.loadConfiguration(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleConfigurationDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: msgNotFound})
		return
	}

	if _, err := s.store.Delete(r.Context(), id); err != nil {
		logRequestError(r, "delete configuration", err)
		writeJSON(w, http.StatusInternalServerError, model.StatusResponse{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, model.StatusResponse{Success: true, Message: msgDeleted})
}

func (s *server) handleConfigurationExport(w http.ResponseWriter, r *http.Request) {
	cfg, ok := s.loadConfiguration(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, cfg); err != nil {
		logRequestError(r, "export configuration", err)
		if errors.Is(err, pricing.ErrNotFinite) {
			writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{Error: msgNotFinite})
			return
		}
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "failed to export configuration"})
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="configuration-%d.xlsx"`, cfg.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logRequestError(r, "write export", err)
	}
}

// loadConfiguration resolves the {id} URL parameter. It writes the error
// response itself and reports false when the handler should stop.
func (s *server) loadConfiguration(w http.ResponseWriter, r *http.Request) (model.SavedConfiguration, bool) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: msgNotFound})
		return model.SavedConfiguration{}, false
	}

	cfg, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: msgNotFound})
		return model.SavedConfiguration{}, false
	}
	if err != nil {
		logRequestError(r, "get configuration", err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "failed to load configuration"})
		return model.SavedConfiguration{}, false
	}
	return cfg, true
}

func decodeFormState(w http.ResponseWriter, r *http.Request) (model.FormState, error) {
	var state model.FormState
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&state); err != nil {
		return model.FormState{}, err
	}
	if state.Items == nil {
		state.Items = make(map[model.Category][]model.LineItem)
	}
	return state, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// writeJSON encodes body before anything is sent so that an encoding
// failure still produces a well-formed 500.
func writeJSON(w http.ResponseWriter, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		log.Printf("error encoding response: %v", err)
		status = http.StatusInternalServerError
		buf.Reset()
		buf.WriteString(`{"error":"failed to encode response"}` + "\n")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("error writing response: %v", err)
	}
}

func logRequestError(r *http.Request, action string, err error) {
	log.Printf("[%s] %s: %v", middleware.GetReqID(r.Context()), action, err)
}
