package seating

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

var errInsert = errors.New("connection reset")

func recordError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if respondErr := respondError(c, err); respondErr != nil {
		t.Fatalf("respondError returned %v", respondErr)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	return rec, body
}

func TestRespondErrorValidation(t *testing.T) {
	rec, body := recordError(t, &ValidationError{Message: "versionsPerDay must be between 1 and 5"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "versionsPerDay must be between 1 and 5" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestRespondErrorNotFound(t *testing.T) {
	rec, body := recordError(t, &NotFoundError{Resource: "session"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body["error"] != "session not found" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestRespondErrorCapacity(t *testing.T) {
	rec, body := recordError(t, &CapacityError{
		StudentsSelected: 161,
		TotalSeats:       160,
		TotalBenches:     80,
		NeededBenches:    81,
		Deficit:          1,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["studentsSelected"] != float64(161) || body["totalSeats"] != float64(160) || body["deficit"] != float64(1) {
		t.Fatalf("capacity payload missing numbers: %v", body)
	}
	if body["error"] != "insufficient capacity: 161 students, 160 seats, deficit 1 (need 81 benches, have 80)" {
		t.Fatalf("unexpected capacity message: %v", body["error"])
	}
}

func TestRespondErrorConflict(t *testing.T) {
	rec, body := recordError(t, &ConflictError{DaysWithPlans: []int{1, 3}})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if body["error"] != "a plan already exists for Day 1, Day 3; delete the old plans before regenerating" {
		t.Fatalf("unexpected conflict message: %v", body["error"])
	}
	days, ok := body["daysWithPlans"].([]interface{})
	if !ok || len(days) != 2 {
		t.Fatalf("daysWithPlans missing: %v", body)
	}

	rec, body = recordError(t, &ConflictError{Message: "select rooms before generating plans"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if _, present := body["daysWithPlans"]; present {
		t.Fatalf("prerequisite conflict should not carry daysWithPlans: %v", body)
	}
}

func TestRespondErrorPersistence(t *testing.T) {
	rec, _ := recordError(t, &PersistenceError{Op: "create seating plan", Err: errInsert})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}
