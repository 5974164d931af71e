package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mediverifyng/mediverify/pkg/catalog"
	"github.com/mediverifyng/mediverify/pkg/reports"
	"github.com/mediverifyng/mediverify/pkg/verify"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	csv := `nafdac_number,drug_name,manufacturer,status
A4-1234,Paracetamol 500mg,Emzor Pharma,Verified
A4-1235,Paracetamol 1000mg,Emzor Pharma,Verified
B9-0000,Amoxicillin 250mg,Fidson Healthcare,Revoked
`
	cat, err := catalog.Read(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	db, err := reports.Open(filepath.Join(t.TempDir(), "reports.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return New(cat, db, "", "")
}

func TestVerifyEndpoint(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/verify?code=a4-1234", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res verify.LookupResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Outcome != verify.Verified || res.Record == nil {
		t.Fatalf("result = %+v", res)
	}
}

func TestVerifyEndpointNotFoundSuggests(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/verify?code=A4-1236", nil))
	var res verify.LookupResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Outcome != verify.NotFound {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if len(res.Suggestions) == 0 {
		t.Fatal("expected suggestions on NOT_FOUND")
	}
	for _, s := range res.Suggestions {
		if s == "B9-0000" {
			t.Fatalf("dissimilar code suggested: %v", res.Suggestions)
		}
	}
}

func TestVerifyEndpointBlankCode(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/verify?code=++", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank code should 400, got %d", rec.Code)
	}
}

func TestSubmitAndListReports(t *testing.T) {
	h := newTestServer(t).Handler()

	body := bytes.NewBufferString(`{"nafdac_number": "ZZ-9999", "reason": "fake-looking seal", "contact": ""}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/reports", body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var created reports.Report
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || created.SubmittedAt == "" {
		t.Fatalf("report not fully populated: %+v", created)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/reports", nil))
	var list []reports.Report
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Code != "ZZ-9999" || list[0].Reason != "fake-looking seal" {
		t.Fatalf("list = %+v", list)
	}
}

func TestSubmitReportMissingCode(t *testing.T) {
	h := newTestServer(t).Handler()

	body := bytes.NewBufferString(`{"reason": "no code"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/api/reports", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing code should 400, got %d", rec.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	s := newTestServer(t)
	s.Username = "admin"
	s.Password = "secret"
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/stats", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.SetBasicAuth("admin", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with credentials, got %d", rec.Code)
	}
}
