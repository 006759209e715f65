package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/username/ustax/src/jurisdictions"
	"github.com/username/ustax/src/logger"
	"github.com/username/ustax/src/models"
	"github.com/username/ustax/src/rules"
	"github.com/username/ustax/src/services"
	"github.com/username/ustax/src/utils"
	"github.com/username/ustax/src/validation"
)

type TaxHandler struct {
	taxService services.TaxService
}

func NewTaxHandler(service services.TaxService) *TaxHandler {
	return &TaxHandler{
		taxService: service,
	}
}

type compareRequest struct {
	Codes []string `json:"codes"`
	services.JurisdictionRequest
}

type yearsResponse struct {
	Years []int `json:"years"`
}

type jurisdictionsResponse struct {
	Year          int                    `json:"year"`
	Jurisdictions []jurisdictions.Config `json:"jurisdictions"`
}

type compareResponse struct {
	Year    int                         `json:"year"`
	Results []models.JurisdictionResult `json:"results"`
}

func (h *TaxHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TaxHandler) HandleListYears(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONWithETag(w, r, yearsResponse{Years: h.taxService.Years()})
}

func (h *TaxHandler) HandleListJurisdictions(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	configs, err := h.taxService.ListJurisdictions(year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSONWithETag(w, r, jurisdictionsResponse{Year: year, Jurisdictions: configs})
}

func (h *TaxHandler) HandleComputeFederal(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var in models.FederalInput
	if !decodeBody(w, r, &in) {
		return
	}
	res, err := h.taxService.ComputeFederal(r.Context(), year, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSONWithETag(w, r, res)
}

func (h *TaxHandler) HandleComputeJurisdiction(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req services.JurisdictionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := h.taxService.ComputeJurisdiction(r.Context(), year, chi.URLParam(r, "code"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSONWithETag(w, r, res)
}

func (h *TaxHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	var req compareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	results, err := h.taxService.CompareJurisdictions(r.Context(), year, req.Codes, req.JurisdictionRequest)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSONWithETag(w, r, compareResponse{Year: year, Results: results})
}

func (h *TaxHandler) HandleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	owner, _ := GetOwnerFromContext(r.Context())
	var req services.SnapshotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	snap, err := h.taxService.SaveSnapshot(r.Context(), owner, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/snapshots/"+snap.ID)
	utils.WriteJSON(w, http.StatusCreated, snap)
}

func (h *TaxHandler) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	owner, _ := GetOwnerFromContext(r.Context())
	view, err := h.taxService.LoadSnapshot(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSONWithETag(w, r, view)
}

// HandleDeleteSnapshot removes one of the caller's snapshots. Another owner's id is a 404.
func (h *TaxHandler) HandleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	owner, _ := GetOwnerFromContext(r.Context())
	if err := h.taxService.DeleteSnapshot(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaxHandler) HandleListSnapshots(w http.ResponseWriter, r *http.Request) {
	owner, _ := GetOwnerFromContext(r.Context())
	list, err := h.taxService.ListSnapshots(r.Context(), owner)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		utils.SendJSONError(w, fmt.Sprintf("invalid tax year %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return year, true
}

// decodeBody reads exactly one JSON value into dst. Unknown fields are rejected so a
// misspelled amount is not silently taken as zero.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil && dec.Decode(&struct{}{}) != io.EOF {
		err = errors.New("request body must contain a single JSON object")
	}
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		utils.SendJSONError(w, fmt.Sprintf("request body too large (max %d bytes)", maxErr.Limit), http.StatusRequestEntityTooLarge)
		return false
	}
	logger.FromContext(r.Context()).Warn("Failed to decode request body", "path", r.URL.Path, "error", err)
	utils.SendJSONError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
	return false
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	var inputErr *validation.InputValidationError
	switch {
	case errors.As(err, &inputErr):
		log.Info("Input rejected", "path", r.URL.Path, "problems", len(inputErr.Fields))
		utils.SendJSONErrorWithDetails(w, "input validation failed", inputErr.Diagnostics(), http.StatusUnprocessableEntity)
	case errors.Is(err, rules.ErrUnknownYear),
		errors.Is(err, jurisdictions.ErrUnsupportedJurisdiction),
		errors.Is(err, services.ErrSnapshotNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidSnapshot):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrSnapshotStoreUnavailable):
		utils.SendJSONError(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		log.Warn("Request abandoned", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "request cancelled", http.StatusServiceUnavailable)
	default:
		log.Error("Internal error", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "An internal error occurred. Please try again later.", http.StatusInternalServerError)
	}
}
