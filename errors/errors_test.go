package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("address", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
	if err.Details["resource"] != "address" {
		t.Errorf("expected resource=address, got %v", err.Details["resource"])
	}
}

func TestAppError_Taxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"validation", Validation("bad"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"conflict", Conflict("dup"), ErrCodeConflict, http.StatusConflict},
		{"unauthorized", Unauthorized(""), ErrCodeUnauthorized, http.StatusUnauthorized},
		{"unauthenticated", Unauthenticated(""), ErrCodeUnauthenticated, http.StatusUnauthorized},
		{"forbidden", Forbidden(""), ErrCodeForbidden, http.StatusForbidden},
		{"not found", NotFound("address", "a1"), ErrCodeNotFound, http.StatusNotFound},
		{"internal", Internal(fmt.Errorf("boom")), ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("code = %s, want %s", tc.err.Code, tc.code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("status = %d, want %d", tc.err.HTTPStatus, tc.status)
			}
			if tc.err.Message == "" {
				t.Error("expected a default message")
			}
		})
	}
}

func TestAppError_Internal_HidesCause(t *testing.T) {
	cause := fmt.Errorf("pq: relation \"accounts\" does not exist")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable via errors.Is")
	}
	resp := err.ToResponse()
	if strings.Contains(resp.Message, "pq:") {
		t.Errorf("response leaked driver detail: %q", resp.Message)
	}
	if resp.Success {
		t.Error("error response must have success=false")
	}
}

func TestAppError_ErrorString(t *testing.T) {
	err := Conflict("Username or email already in use")
	if got := err.Error(); got != "CONFLICT: Username or email already in use" {
		t.Errorf("unexpected Error(): %q", got)
	}
	wrapped := Internal(fmt.Errorf("disk full"))
	if !strings.Contains(wrapped.Error(), "disk full") {
		t.Errorf("expected cause in Error(): %q", wrapped.Error())
	}
}

func TestAppError_IsByCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", NotFound("address", "x"))
	if !stderrors.Is(err, NotFound("anything", "")) {
		t.Error("expected errors.Is to match on code")
	}
	if stderrors.Is(err, Conflict("x")) {
		t.Error("did not expect a match for a different code")
	}
}

func TestInvalidInput_FieldDetails(t *testing.T) {
	err := InvalidInput("limit", "must be a number")
	fields, ok := err.Details["fields"].(map[string]string)
	if !ok {
		t.Fatalf("expected fields map, got %T", err.Details["fields"])
	}
	if fields["limit"] != "must be a number" {
		t.Errorf("unexpected field detail: %v", fields)
	}
}

func TestFrom(t *testing.T) {
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
	plain := fmt.Errorf("plain")
	if got := From(plain); got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	forbidden := Forbidden("nope")
	if got := From(fmt.Errorf("wrap: %w", forbidden)); got != forbidden {
		t.Error("expected wrapped AppError to be returned as-is")
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("plain error should not be an AppError")
	}
	if !IsAppError(Validation("x")) {
		t.Error("expected IsAppError to be true")
	}
}
