package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"infinite-experiment/briefing/internal/constants"
	"infinite-experiment/briefing/internal/models/dtos"
	"infinite-experiment/briefing/internal/models/gorm"
	"infinite-experiment/briefing/internal/services"
	"infinite-experiment/briefing/internal/validation"
)

// Mock Composer
type mockComposer struct {
	composeFunc func(ctx context.Context, raw []byte) (*dtos.ComposedBriefing, error)
}

func (m *mockComposer) Compose(ctx context.Context, raw []byte) (*dtos.ComposedBriefing, error) {
	return m.composeFunc(ctx, raw)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if env.Timestamp.IsZero() {
		t.Error("Expected timestamp in envelope")
	}
	return env
}

func TestComposeFplHandler_Success(t *testing.T) {
	mock := &mockComposer{
		composeFunc: func(ctx context.Context, raw []byte) (*dtos.ComposedBriefing, error) {
			if string(raw) != `{"mode":"PVC"}` {
				t.Errorf("Expected raw body to be passed through, got %s", raw)
			}
			return &dtos.ComposedBriefing{
				Departure:   dtos.PlaceholderAerodrome("SBGR"),
				Destination: dtos.PlaceholderAerodrome("SBSP"),
				Meteo:       map[string]dtos.WeatherBundle{"SBGR": {}, "SBSP": {}},
				Notams:      map[string][]dtos.NotamRecord{"SBGR": {}, "SBSP": {}},
				AtsPreview:  "(FPL-PTABC-VG)",
			}, nil
		},
	}

	handler := ComposeFplHandler(mock, false)

	req := httptest.NewRequest("POST", "/api/v1/fpl/compose", strings.NewReader(`{"mode":"PVC"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %s", ct)
	}

	env := decodeEnvelope(t, rr)
	if !env.Success || env.Error != nil {
		t.Fatalf("Expected success envelope, got %+v", env)
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
	for _, key := range []string{"origem", "destino", "meteo", "notams", "atsPreview"} {
		if _, ok := data[key]; !ok {
			t.Errorf("Expected %q in briefing", key)
		}
	}
	if string(data["atsPreview"]) != `"(FPL-PTABC-VG)"` {
		t.Errorf("Unexpected atsPreview %s", data["atsPreview"])
	}
}

func TestComposeFplHandler_ValidationError(t *testing.T) {
	mock := &mockComposer{
		composeFunc: func(ctx context.Context, raw []byte) (*dtos.ComposedBriefing, error) {
			return nil, &validation.ValidationError{Violations: []validation.FieldViolation{
				{Field: "departure.icao", Rule: "icao", Message: "must be 4 uppercase letters"},
				{Field: "other.dof", Rule: "dof", Message: "must be a valid YYYYMMDD date"},
			}}
		},
	}

	handler := ComposeFplHandler(mock, false)

	req := httptest.NewRequest("POST", "/api/v1/fpl/compose", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}

	env := decodeEnvelope(t, rr)
	if env.Success || env.Error == nil {
		t.Fatalf("Expected error envelope, got %+v", env)
	}
	if env.Error.Code != constants.ErrCodeValidationFailed {
		t.Errorf("Expected code %s, got %s", constants.ErrCodeValidationFailed, env.Error.Code)
	}

	var violations []validation.FieldViolation
	if err := json.Unmarshal(env.Error.Details, &violations); err != nil {
		t.Fatalf("Failed to decode details: %v", err)
	}
	if len(violations) != 2 || violations[0].Field != "departure.icao" {
		t.Errorf("Expected both violations in details, got %+v", violations)
	}
}

func TestComposeFplHandler_UnexpectedError(t *testing.T) {
	failure := &services.UnexpectedError{Op: "ats_preview", Err: errors.New("panic: nil map write")}
	mock := &mockComposer{
		composeFunc: func(ctx context.Context, raw []byte) (*dtos.ComposedBriefing, error) {
			return nil, failure
		},
	}

	cases := []struct {
		name        string
		devMode     bool
		wantDetails bool
	}{
		{"production hides details", false, false},
		{"development shows details", true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := ComposeFplHandler(mock, tc.devMode)

			req := httptest.NewRequest("POST", "/api/v1/fpl/compose", strings.NewReader(`{}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusInternalServerError {
				t.Fatalf("Expected status 500, got %d", rr.Code)
			}

			env := decodeEnvelope(t, rr)
			if env.Error == nil || env.Error.Code != constants.ErrCodeInternal {
				t.Fatalf("Expected INTERNAL_ERROR, got %+v", env.Error)
			}
			if env.Error.Message != "Internal server error" {
				t.Errorf("Expected generic message, got %q", env.Error.Message)
			}

			hasDetails := len(env.Error.Details) > 0 && string(env.Error.Details) != "null"
			if hasDetails != tc.wantDetails {
				t.Errorf("Expected details present=%v, got %s", tc.wantDetails, env.Error.Details)
			}
			if tc.wantDetails && !strings.Contains(string(env.Error.Details), "nil map write") {
				t.Errorf("Expected error text in details, got %s", env.Error.Details)
			}
		})
	}
}

func TestComposeFplHandler_BodyTooLarge(t *testing.T) {
	called := false
	mock := &mockComposer{
		composeFunc: func(ctx context.Context, raw []byte) (*dtos.ComposedBriefing, error) {
			called = true
			return nil, nil
		},
	}

	handler := ComposeFplHandler(mock, false)

	body := bytes.Repeat([]byte("a"), MaxSubmissionBytes+1)
	req := httptest.NewRequest("POST", "/api/v1/fpl/compose", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
	if called {
		t.Error("Expected composer not to be called")
	}
}

// Mock AuditLister
type mockAuditLister struct {
	listRecentFunc func(ctx context.Context, limit int) ([]gorm.CompositionAudit, error)
}

func (m *mockAuditLister) ListRecent(ctx context.Context, limit int) ([]gorm.CompositionAudit, error) {
	return m.listRecentFunc(ctx, limit)
}

func TestListAuditsHandler_Limits(t *testing.T) {
	var gotLimit int
	lister := &mockAuditLister{
		listRecentFunc: func(ctx context.Context, limit int) ([]gorm.CompositionAudit, error) {
			gotLimit = limit
			return []gorm.CompositionAudit{{ID: "a1", DepartureICAO: "SBGR", DestinationICAO: "SBSP"}}, nil
		},
	}
	handler := ListAuditsHandler(lister, false)

	cases := []struct {
		query      string
		wantStatus int
		wantLimit  int
	}{
		{"", http.StatusOK, 20},
		{"?limit=5", http.StatusOK, 5},
		{"?limit=100", http.StatusOK, 100},
		{"?limit=101", http.StatusBadRequest, 0},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=abc", http.StatusBadRequest, 0},
	}

	for _, tc := range cases {
		t.Run("limit"+tc.query, func(t *testing.T) {
			gotLimit = 0
			req := httptest.NewRequest("GET", "/api/v1/fpl/audits"+tc.query, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if gotLimit != tc.wantLimit {
				t.Errorf("Expected limit %d, got %d", tc.wantLimit, gotLimit)
			}
		})
	}
}

func TestListAuditsHandler_RepositoryError(t *testing.T) {
	lister := &mockAuditLister{
		listRecentFunc: func(ctx context.Context, limit int) ([]gorm.CompositionAudit, error) {
			return nil, errors.New("connection refused")
		},
	}

	req := httptest.NewRequest("GET", "/api/v1/fpl/audits", nil)
	rr := httptest.NewRecorder()
	ListAuditsHandler(lister, false).ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "connection refused") {
		t.Error("Expected error text to be hidden outside development mode")
	}
}

func TestHealthCheckHandler_NoDependencies(t *testing.T) {
	upSince := time.Now().Add(-time.Minute)
	handler := HealthCheckHandler(nil, nil, upSince)

	req := httptest.NewRequest("GET", "/healthCheck", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp struct {
		Status   string                     `json:"status"`
		Services map[string]json.RawMessage `json:"services"`
		Uptime   string                     `json:"uptime"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "ok" || len(resp.Services) != 0 || resp.Uptime == "" {
		t.Errorf("Unexpected health response %+v", resp)
	}
}
