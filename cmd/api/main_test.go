package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/complyware/retention-engine/engine/retrieval"
)

type stubMatcher struct {
	matches []retrieval.Match
	err     error
	gotK    int
	gotQ    string
}

func (s *stubMatcher) Search(_ context.Context, query string, k int) ([]retrieval.Match, error) {
	s.gotQ = query
	s.gotK = k
	return s.matches, s.err
}

func TestHandleSearch(t *testing.T) {
	svc := &stubMatcher{matches: []retrieval.Match{
		{ComplianceID: "pdpa_PDPA_001", Framework: "PDPA", Title: "Data Retention Requirements",
			Category: "data_retention", RiskLevel: "HIGH", Score: 0.91},
	}}
	handler := handleSearch(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"query":"retention limits","top_k":3}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].ComplianceID != "pdpa_PDPA_001" {
		t.Errorf("matches = %+v", resp.Matches)
	}
	if svc.gotQ != "retention limits" || svc.gotK != 3 {
		t.Errorf("forwarded query=%q k=%d", svc.gotQ, svc.gotK)
	}
}

func TestHandleSearch_BadRequests(t *testing.T) {
	handler := handleSearch(&stubMatcher{}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{not json`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty query: status = %d", rec.Code)
	}
}

func TestHandleSearch_EmbedderDown(t *testing.T) {
	handler := handleSearch(&stubMatcher{err: retrieval.ErrEmptyQueryEmbedding}, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"q"}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleMatch(t *testing.T) {
	svc := &stubMatcher{matches: []retrieval.Match{
		{ComplianceID: "gdpr_ART_17", Framework: "GDPR", RiskLevel: "HIGH", Score: 0.88},
	}}
	handler := handleMatch(svc, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/match",
		strings.NewReader(`{"violation":"customer records never deleted"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp retrieval.MatchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].ComplianceID != "gdpr_ART_17" {
		t.Errorf("matches = %+v", resp.Matches)
	}

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/match", strings.NewReader(`{"violation":""}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty violation: status = %d", rec.Code)
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
