package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeClientNotFound, "client not found")
	if got := e.Error(); got != "[CLT_001] client not found" {
		t.Errorf("Error() = %q", got)
	}

	withDetail := e.WithDetail("id=abc")
	if got := withDetail.Error(); got != "[CLT_001] client not found: id=abc" {
		t.Errorf("Error() with detail = %q", got)
	}
	// WithDetail must not mutate the receiver.
	if e.Detail != "" {
		t.Errorf("receiver mutated: detail = %q", e.Detail)
	}
}

func TestWrap_NilPassthrough(t *testing.T) {
	if err := Wrap(nil, ErrCodeDatabaseError, "query failed"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := New(ErrCodeTaskNotFound, "task not found")
	wrapped := Wrap(inner, CodeUnknown, "while completing task")
	if wrapped.Code != ErrCodeTaskNotFound {
		t.Errorf("code = %s, want %s", wrapped.Code, ErrCodeTaskNotFound)
	}
}

func TestWrap_UnwrapChain(t *testing.T) {
	base := stderrors.New("connection refused")
	mid := Wrap(base, ErrCodeDatabaseError, "query failed")
	outer := fmt.Errorf("listing transactions: %w", mid)

	if !stderrors.Is(outer, base) {
		t.Error("errors.Is failed to reach the base error")
	}
	var ae *AppError
	if !stderrors.As(outer, &ae) {
		t.Fatal("errors.As failed to find AppError")
	}
	if ae.Code != ErrCodeDatabaseError {
		t.Errorf("code = %s", ae.Code)
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrCodeConflict, "duplicate"))
	if !IsCode(err, ErrCodeConflict) {
		t.Error("IsCode missed wrapped code")
	}
	if IsCode(err, ErrCodeNotFound) {
		t.Error("IsCode matched wrong code")
	}
	if IsCode(nil, ErrCodeConflict) {
		t.Error("IsCode(nil) = true")
	}
}

func TestIsNotFound(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want bool
	}{
		{ErrCodeNotFound, true},
		{ErrCodeClientNotFound, true},
		{ErrCodeTransactionNotFound, true},
		{ErrCodeTaskNotFound, true},
		{ErrCodeAppointmentNotFound, true},
		{ErrCodeConflict, false},
		{ErrCodeInternal, false},
	}
	for _, c := range cases {
		if got := IsNotFound(New(c.code, "x")); got != c.want {
			t.Errorf("IsNotFound(%s) = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(nil); got != CodeOK {
		t.Errorf("GetCode(nil) = %s", got)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Errorf("GetCode(plain) = %s", got)
	}
	if got := GetCode(Validation("bad input")); got != ErrCodeValidation {
		t.Errorf("GetCode(validation) = %s", got)
	}
}

func TestHTTPStatusForCode(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeClientNotFound, http.StatusNotFound},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeScheduleConflict, http.StatusConflict},
		{ErrCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrCodeDatabaseError, http.StatusInternalServerError},
		{ErrorCode("BOGUS_999"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusForCode(c.code); got != c.want {
			t.Errorf("HTTPStatusForCode(%s) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestStackCaptured(t *testing.T) {
	e := New(ErrCodeInternal, "boom")
	if !strings.Contains(e.Stack, "errors_test.go") {
		t.Errorf("stack does not reference call site: %s", e.Stack)
	}
}
