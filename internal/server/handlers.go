package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

var indexTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"money":   func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"nav":     func(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) },
	"percent": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + "%" },
	"sign": func(v float64) string {
		switch {
		case v > 0:
			return "up"
		case v < 0:
			return "down"
		}
		return "flat"
	},
}).ParseFS(templateFS, "templates/index.html"))

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexString(n.String())
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexFloat(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected number, got %s", b)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("expected number, got %q", s)
	}
	*f = flexFloat(v)
	return nil
}

type addFundRequest struct {
	Code   flexString `json:"code"`
	Name   string     `json:"name"`
	Shares flexFloat  `json:"shares"`
	Cost   flexFloat  `json:"cost"`
}

type deleteFundRequest struct {
	Code flexString `json:"code"`
}

// handleHoldings handles GET /api/holdings.
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	holdings, err := s.app.Store.Load(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"data": holdings})
}

// handleAddFund handles POST /api/add_fund.
func (s *Server) handleAddFund(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req addFundRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	h := models.Holding{
		Code:   strings.TrimSpace(string(req.Code)),
		Name:   strings.TrimSpace(req.Name),
		Shares: float64(req.Shares),
		Cost:   float64(req.Cost),
	}
	if err := s.app.Store.Upsert(r.Context(), h); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info().Str("code", h.Code).Float64("shares", h.Shares).Float64("cost", h.Cost).Msg("Fund saved")
	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleDeleteFund handles POST /api/delete_fund.
func (s *Server) handleDeleteFund(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req deleteFundRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	code := strings.TrimSpace(string(req.Code))
	if err := s.app.Store.Delete(r.Context(), code); err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.logger.Info().Str("code", code).Msg("Fund deleted")
	WriteJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleValuations handles GET /api/valuations.
// Provider failures surface as offline rows, never as an error response.
func (s *Server) handleValuations(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	v, err := s.app.Valuate(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// handleIndex renders the valuation page at /.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}

	v, err := s.app.Valuate(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, v); err != nil {
		s.logger.Error().Err(err).Msg("Failed to render index")
		WriteError(w, http.StatusInternalServerError, "Failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// writeStoreError maps store and valuation errors to HTTP status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidHolding):
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), "invalid_holding")
	case errors.Is(err, storage.ErrCorruptStore):
		s.logger.Error().Err(err).Msg("Holdings store is corrupt")
		WriteErrorWithCode(w, http.StatusInternalServerError, "Holdings store is corrupt", "corrupt_store")
	default:
		s.logger.Error().Err(err).Msg("Request failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
