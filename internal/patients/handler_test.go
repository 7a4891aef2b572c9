package patients

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carelink/hospital-platform/internal/identity"
)

func newPatientsRouter(repo Repository) http.Handler {
	h := NewHandler(repo, nil)
	r := chi.NewRouter()
	r.Use(identity.Middleware)
	r.Route("/api", h.Routes)
	return r
}

func TestCreateProfile(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newPatientsRouter(repo)

	body := []byte(`{"full_name":"Asha Verma","phone":"+911234567890","date_of_birth":"1990-04-12"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/patients", bytes.NewReader(body))
	req.Header.Set(identity.HeaderUserID, "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", created.UserID)
	}
	if created.DateOfBirth == nil {
		t.Error("expected date_of_birth to be set")
	}

	// Second registration for the same user conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/patients", bytes.NewReader(body))
	req.Header.Set(identity.HeaderUserID, "user-1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}
}

func TestCreateProfileValidation(t *testing.T) {
	router := newPatientsRouter(NewInMemoryRepository())

	cases := []struct {
		name string
		user string
		body string
		want int
	}{
		{"no identity", "", `{"full_name":"A"}`, http.StatusUnauthorized},
		{"empty name", "user-1", `{"full_name":"  "}`, http.StatusBadRequest},
		{"bad dob", "user-1", `{"full_name":"A","date_of_birth":"12/04/1990"}`, http.StatusBadRequest},
		{"bad json", "user-1", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/patients", bytes.NewReader([]byte(tc.body)))
		if tc.user != "" {
			req.Header.Set(identity.HeaderUserID, tc.user)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, rec.Code)
		}
	}
}

func TestMe(t *testing.T) {
	repo := NewInMemoryRepository()
	repo.Add(&Patient{UserID: "user-1", FullName: "Asha Verma"})
	router := newPatientsRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/patients/me", nil)
	req.Header.Set(identity.HeaderUserID, "user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/patients/me", nil)
	req.Header.Set(identity.HeaderUserID, "stranger")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}
}
