package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, 200, map[string]int{"count": 2})

	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var decoded map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if decoded["count"] != 2 {
		t.Errorf("count = %d, want 2", decoded["count"])
	}
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, 400, "bad input")

	if rec.Code != 400 {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var decoded map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if decoded["error"] != "bad input" {
		t.Errorf("error = %q", decoded["error"])
	}
}

func TestStatusHelpers(t *testing.T) {
	cases := []struct {
		name  string
		write func(*httptest.ResponseRecorder)
		want  int
	}{
		{"method not allowed", func(r *httptest.ResponseRecorder) { MethodNotAllowed(r) }, 405},
		{"bad request", func(r *httptest.ResponseRecorder) { BadRequest(r, "x") }, 400},
		{"conflict", func(r *httptest.ResponseRecorder) { Conflict(r, "x") }, 409},
		{"internal error", func(r *httptest.ResponseRecorder) { InternalServerError(r, "x") }, 500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
