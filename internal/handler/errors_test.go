package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hitoshi/bookstore/internal/model"
)

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewValidationError(map[string]string{"email": "x"}), http.StatusUnprocessableEntity},
		{model.NewWrongCurrentPasswordError(), http.StatusUnprocessableEntity},
		{model.NewInvalidRequestError(), http.StatusBadRequest},
		{model.NewInvalidResetTokenError(), http.StatusBadRequest},
		{model.NewUnauthorizedError(), http.StatusUnauthorized},
		{model.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{model.NewForbiddenError(), http.StatusForbidden},
		{model.NewEmailTakenError(), http.StatusConflict},
		{model.NewUserNotFoundError(), http.StatusNotFound},
		{model.NewCategoryNotFoundError("c"), http.StatusNotFound},
		{&model.APIError{Code: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorResponder_ValidationError_RecordsFormAndFields(t *testing.T) {
	spy := &spyMetrics{}
	e := errorResponder{metrics: spy}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	wrapped := fmt.Errorf("register: %w", model.NewValidationError(map[string]string{"name": "Name is required"}))
	e.handle(w, req, "register", wrapped)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	body := parseAPIErrorResponse(t, w)
	if diff := cmp.Diff(map[string]string{"name": "Name is required"}, body.Errors); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"register"}, spy.validations); diff != "" {
		t.Errorf("recorded forms mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorResponder_NonValidationError_NotRecorded(t *testing.T) {
	spy := &spyMetrics{}
	e := errorResponder{metrics: spy}

	w := httptest.NewRecorder()
	e.handle(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil), "login", model.NewInvalidCredentialsError())

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if len(spy.validations) != 0 {
		t.Errorf("validation failures recorded: %v", spy.validations)
	}
}

func TestErrorResponder_UnknownError_Returns500WithoutDetails(t *testing.T) {
	e := errorResponder{metrics: noopMetrics{}}

	w := httptest.NewRecorder()
	e.handle(w, httptest.NewRequest(http.MethodGet, "/api/categories", nil), "categories", errors.New("pq: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if strings.Contains(w.Body.String(), "pq:") {
		t.Error("internal error detail must not be exposed")
	}
	if body := parseAPIErrorResponse(t, w); body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
}

func TestDecodeJSON_InvalidBody_Returns400(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json"))

	var dst struct{}
	if decodeJSON(w, req, &dst) {
		t.Fatal("decodeJSON should fail for invalid JSON")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if body := parseAPIErrorResponse(t, w); body.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidRequest)
	}
}

func TestDecodeJSON_OversizedBody_Returns400(t *testing.T) {
	w := httptest.NewRecorder()
	big := `{"email":"` + strings.Repeat("a", maxRequestBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(big))

	var dst struct {
		Email string `json:"email"`
	}
	if decodeJSON(w, req, &dst) {
		t.Fatal("decodeJSON should reject bodies over the limit")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
