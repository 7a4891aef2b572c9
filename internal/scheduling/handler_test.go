package scheduling

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carelink/hospital-platform/pkg/logging"
)

func newTestHandler(t *testing.T, schedule *WeeklySchedule) (*Handler, uuid.UUID) {
	t.Helper()
	repo := NewInMemoryScheduleRepository()
	if schedule != nil {
		if err := repo.UpdateSchedule(context.Background(), schedule); err != nil {
			t.Fatalf("seed schedule: %v", err)
		}
	}
	allocator := NewAllocator(repo, &stubBookedSource{}, nil, nil, logging.Default())
	handler := NewHandler(allocator, repo, logging.Default())
	var doctorID uuid.UUID
	if schedule != nil {
		doctorID = schedule.DoctorID
	}
	return handler, doctorID
}

func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/doctors/{doctorID}/slots", h.AvailableSlots)
	r.Get("/api/doctors/{doctorID}/availability", h.GetAvailability)
	r.Put("/api/doctors/{doctorID}/availability", h.UpdateAvailability)
	return r
}

func TestAvailableSlotsEndpoint(t *testing.T) {
	handler, doctorID := newTestHandler(t, mondayMorningSchedule(30))

	req := httptest.NewRequest(http.MethodGet, "/api/doctors/"+doctorID.String()+"/slots?date=2026-08-31", nil)
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp SlotsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Date != "2026-08-31" {
		t.Fatalf("expected date echo, got %s", resp.Date)
	}
	if len(resp.Slots) != 6 || resp.Slots[0].String() != "09:00" {
		t.Fatalf("unexpected slots: %v", slotStrings(resp.Slots))
	}
}

func TestAvailableSlotsEndpointBadInput(t *testing.T) {
	handler, doctorID := newTestHandler(t, mondayMorningSchedule(30))
	router := testRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/doctors/not-a-uuid/slots?date=2026-08-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad doctor id, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/doctors/"+doctorID.String()+"/slots?date=31-08-2026", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", w.Code)
	}
}

func TestAvailableSlotsEndpointUnknownDoctor(t *testing.T) {
	handler, _ := newTestHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/doctors/"+uuid.NewString()+"/slots?date=2026-08-31", nil)
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown doctor, got %d", w.Code)
	}
}

func TestUpdateAvailabilityEndpoint(t *testing.T) {
	handler, doctorID := newTestHandler(t, mondayMorningSchedule(30))

	update := WeeklySchedule{
		SlotDurationMinutes: 20,
		Windows: []AvailabilityWindow{
			{Weekday: time.Wednesday, Start: 10 * 60, End: 13 * 60},
		},
	}
	body, _ := json.Marshal(update)
	req := httptest.NewRequest(http.MethodPut, "/api/doctors/"+doctorID.String()+"/availability", bytes.NewReader(body))
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/doctors/"+doctorID.String()+"/availability", nil)
	w = httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	var got WeeklySchedule
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode schedule: %v", err)
	}
	if got.SlotDurationMinutes != 20 || len(got.Windows) != 1 || got.Windows[0].Weekday != time.Wednesday {
		t.Fatalf("unexpected stored schedule: %+v", got)
	}
}

func TestUpdateAvailabilityRejectsBadWindow(t *testing.T) {
	handler, doctorID := newTestHandler(t, mondayMorningSchedule(30))

	body := []byte(`{"slot_duration_minutes":30,"windows":[{"weekday":1,"start":"12:00","end":"09:00"}]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/doctors/"+doctorID.String()+"/availability", bytes.NewReader(body))
	w := httptest.NewRecorder()
	testRouter(handler).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted window, got %d", w.Code)
	}
}
