package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetStatus(t *testing.T) {
	handler := NewStatusHandler("backtest",
		&mockAccount{capital: 100000, positions: 3, capacity: 10},
		&mockClients{count: 2})

	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	handler.GetStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["mode"] != "backtest" {
		t.Errorf("mode = %v", got["mode"])
	}
	if got["trade_capital"].(float64) != 100000 {
		t.Errorf("trade_capital = %v", got["trade_capital"])
	}
	if got["open_positions"].(float64) != 3 {
		t.Errorf("open_positions = %v", got["open_positions"])
	}
	if got["ws_clients"].(float64) != 2 {
		t.Errorf("ws_clients = %v", got["ws_clients"])
	}
}

func TestGetStatus_WithoutOptionalDeps(t *testing.T) {
	handler := NewStatusHandler("live", nil, nil)

	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	handler.GetStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := got["trade_capital"]; ok {
		t.Error("trade_capital should be omitted without account info")
	}
	if _, ok := got["ws_clients"]; ok {
		t.Error("ws_clients should be omitted without hub")
	}
}
