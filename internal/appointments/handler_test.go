package appointments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carelink/hospital-platform/internal/identity"
)

func newTestRouter(f *serviceFixture) http.Handler {
	h := NewHandler(f.service, nil)
	r := chi.NewRouter()
	r.Use(identity.Middleware)
	r.Route("/api", h.Routes)
	return r
}

func postBooking(t *testing.T, router http.Handler, userID string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(identity.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerBookCreated(t *testing.T) {
	f := newServiceFixture(t)
	router := newTestRouter(f)

	rec := postBooking(t, router, "user-1", map[string]any{
		"doctor_id": f.doctorID,
		"date":      bookDate.Format(time.DateOnly),
		"time":      "09:00",
		"symptoms":  "fever",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var appt Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appt); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if appt.BookingNumber != "OPD-20260831-0001" {
		t.Errorf("expected booking number OPD-20260831-0001, got %s", appt.BookingNumber)
	}
}

func TestHandlerBookRequiresIdentity(t *testing.T) {
	f := newServiceFixture(t)
	router := newTestRouter(f)

	rec := postBooking(t, router, "", map[string]any{
		"doctor_id": f.doctorID,
		"date":      bookDate.Format(time.DateOnly),
		"time":      "09:00",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandlerBookStatusCodes(t *testing.T) {
	f := newServiceFixture(t)
	router := newTestRouter(f)

	if rec := postBooking(t, router, "user-1", map[string]any{
		"doctor_id": f.doctorID,
		"date":      bookDate.Format(time.DateOnly),
		"time":      "10:00",
	}); rec.Code != http.StatusCreated {
		t.Fatalf("seed booking: expected 201, got %d", rec.Code)
	}

	cases := []struct {
		name string
		user string
		body map[string]any
		want int
	}{
		{"taken slot", "user-2", map[string]any{"doctor_id": f.doctorID, "date": "2026-08-31", "time": "10:00"}, http.StatusConflict},
		{"outside schedule", "user-2", map[string]any{"doctor_id": f.doctorID, "date": "2026-08-31", "time": "06:00"}, http.StatusUnprocessableEntity},
		{"no profile", "ghost", map[string]any{"doctor_id": f.doctorID, "date": "2026-08-31", "time": "09:00"}, http.StatusUnprocessableEntity},
		{"unknown doctor", "user-2", map[string]any{"doctor_id": uuid.New(), "date": "2026-08-31", "time": "09:00"}, http.StatusNotFound},
		{"bad time", "user-2", map[string]any{"doctor_id": f.doctorID, "date": "2026-08-31", "time": "noonish"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := postBooking(t, router, tc.user, tc.body); rec.Code != tc.want {
			t.Errorf("%s: expected %d, got %d: %s", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestHandlerBookRejectsMalformedJSON(t *testing.T) {
	f := newServiceFixture(t)
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewReader([]byte("{not json")))
	req.Header.Set(identity.HeaderUserID, "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerGetAppointment(t *testing.T) {
	f := newServiceFixture(t)
	router := newTestRouter(f)

	appt, err := f.book(t, "user-1", "09:00")
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/"+appt.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/appointments/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown appointment, got %d", rec.Code)
	}
}

func TestHandlerUpdateStatus(t *testing.T) {
	f := newServiceFixture(t)
	router := newTestRouter(f)

	appt, err := f.book(t, "user-1", "09:00")
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	patch := func(id uuid.UUID, status string) *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"status":%q}`, status)
		req := httptest.NewRequest(http.MethodPatch, "/api/appointments/"+id.String()+"/status", bytes.NewReader([]byte(body)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := patch(appt.ID, "COMPLETED")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", updated.Status)
	}

	if rec := patch(appt.ID, "CANCELLED"); rec.Code != http.StatusConflict {
		t.Errorf("terminal transition: expected 409, got %d", rec.Code)
	}
	if rec := patch(appt.ID, "bogus"); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status: expected 400, got %d", rec.Code)
	}
	if rec := patch(uuid.New(), "CANCELLED"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown appointment: expected 404, got %d", rec.Code)
	}
}

func TestHandlerGetInvalidID(t *testing.T) {
	f := newServiceFixture(t)
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
