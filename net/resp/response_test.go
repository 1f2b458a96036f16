package resp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/examhub-dev/examhub/ecode"
)

func TestSuccessWithData(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, map[string]string{"id": "t-1"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["id"] != "t-1" {
		t.Errorf("body = %v", body)
	}
}

func TestSuccessWithoutData(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["message"] != "ok" {
		t.Errorf("message = %q, want ok", body["message"])
	}
}

func TestFailEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, NotFound("task not found"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var body Exception
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Code != ecode.NothingFound {
		t.Errorf("code = %d, want %d", body.Code, ecode.NothingFound)
	}
	if body.Message != "task not found" {
		t.Errorf("message = %q", body.Message)
	}
}

func TestFailNil(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, nil)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestErrorHelperStatuses(t *testing.T) {
	tests := []struct {
		name string
		e    *Exception
		want int
	}{
		{"bad request", BadRequest("x"), http.StatusBadRequest},
		{"unauthorized", UnAuthorized("x"), http.StatusUnauthorized},
		{"forbidden", Forbidden("x"), http.StatusForbidden},
		{"not found", NotFound("x"), http.StatusNotFound},
		{"conflict", Conflict("x"), http.StatusConflict},
		{"internal", InternalServer("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if tt.e.Status != tt.want {
			t.Errorf("%s status = %d, want %d", tt.name, tt.e.Status, tt.want)
		}
	}
}
