package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mediverifyng/mediverify/pkg/verify"
)

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		http.Error(w, "missing code parameter", http.StatusBadRequest)
		return
	}

	result := verify.Verify(s.Catalog, code)
	if result.Outcome == verify.NotFound {
		result.Suggestions = verify.Suggest(s.Catalog, code, s.SuggestLimit, s.SuggestThreshold)
	}
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		http.Error(w, "missing code parameter", http.StatusBadRequest)
		return
	}

	limit := s.SuggestLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	suggestions := verify.Suggest(s.Catalog, code, limit, s.SuggestThreshold)
	json.NewEncoder(w).Encode(map[string][]string{"suggestions": suggestions})
}

type SubmitReportRequest struct {
	Code    string `json:"nafdac_number"`
	Reason  string `json:"reason"`
	Contact string `json:"contact"`
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var req SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		http.Error(w, "nafdac_number is required", http.StatusBadRequest)
		return
	}

	report, err := s.DB.Append(r.Context(), req.Code, req.Reason, req.Contact)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	list, err := s.DB.List(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(list)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.GetStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}
