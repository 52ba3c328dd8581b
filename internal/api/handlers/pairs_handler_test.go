package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/tibkiss/huba-v1/internal/models"
)

func pairStatuses() []models.PairStatus {
	return []models.PairStatus{
		{Pair: "SPY/IVV", State: models.StateInTrade, Direction: "LONG",
			ZScore: -1.8, HasZScore: true, HedgeRatio: 0.98, Alive: true},
		{Pair: "XLE/XOM", State: models.StateWaitForEntry, Direction: "INVALID",
			ZScore: 0.4, HasZScore: true, HedgeRatio: 1.42, Alive: true},
	}
}

func TestGetPairs(t *testing.T) {
	handler := NewPairsHandler(&mockProvider{statuses: pairStatuses()})

	req := httptest.NewRequest("GET", "/api/v1/pairs", nil)
	rec := httptest.NewRecorder()
	handler.GetPairs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got []models.PairStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d pairs, want 2", len(got))
	}
	if got[0].Pair != "SPY/IVV" || got[0].State != models.StateInTrade {
		t.Errorf("unexpected first pair: %+v", got[0])
	}
}

func TestGetPairs_EmptyReturnsArray(t *testing.T) {
	handler := NewPairsHandler(&mockProvider{})

	req := httptest.NewRequest("GET", "/api/v1/pairs", nil)
	rec := httptest.NewRecorder()
	handler.GetPairs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := rec.Body.String(); body[0] != '[' {
		t.Errorf("expected JSON array, got %s", body)
	}
}

func TestGetPair(t *testing.T) {
	handler := NewPairsHandler(&mockProvider{statuses: pairStatuses()})

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/pairs/{leg0}/{leg1}", handler.GetPair)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"known pair", "/api/v1/pairs/SPY/IVV", http.StatusOK},
		{"unknown pair", "/api/v1/pairs/AAA/BBB", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetPairs_NilProvider(t *testing.T) {
	handler := NewPairsHandler(nil)

	req := httptest.NewRequest("GET", "/api/v1/pairs", nil)
	rec := httptest.NewRecorder()
	handler.GetPairs(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
