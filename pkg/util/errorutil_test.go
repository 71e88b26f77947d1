package util

import (
	"errors"
	"net/http"
	"testing"
)

func TestMapErrorNilStaysNil(t *testing.T) {
	// MapError must return an untyped nil: a typed-nil *DomainError in the
	// error interface would read as a failure on every success path that
	// returns MapError's result unguarded.
	if err := MapError(nil); err != nil {
		t.Fatalf("MapError(nil) = %v, want nil", err)
	}
}

func TestMapErrorPassesDomainErrorThrough(t *testing.T) {
	orig := NewConflict("taken", nil)
	mapped := MapError(orig)

	var domainErr *DomainError
	if !errors.As(mapped, &domainErr) {
		t.Fatalf("mapped error is %T, want *DomainError", mapped)
	}
	if domainErr.Code != "CONFLICT" {
		t.Errorf("code = %s, want CONFLICT", domainErr.Code)
	}
}

func TestMapErrorWrapsGenericErrors(t *testing.T) {
	mapped := MapError(errors.New("connection reset"))

	var domainErr *DomainError
	if !errors.As(mapped, &domainErr) {
		t.Fatalf("mapped error is %T, want *DomainError", mapped)
	}
	if domainErr.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %s, want INTERNAL_ERROR", domainErr.Code)
	}
	if domainErr.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", domainErr.HTTPStatus)
	}
}

func TestToDomainErrorNil(t *testing.T) {
	if got := ToDomainError(nil); got != nil {
		t.Fatalf("ToDomainError(nil) = %v, want nil", got)
	}
}

func TestErrorCodeHelpers(t *testing.T) {
	if !IsInvalidTransition(NewInvalidTransition("bad move", nil)) {
		t.Error("IsInvalidTransition missed its own code")
	}
	if IsInvalidTransition(NewNotFound("ticket", nil)) {
		t.Error("IsInvalidTransition matched NOT_FOUND")
	}
	if !IsNotFound(NewNotFound("ticket", nil)) {
		t.Error("IsNotFound missed its own code")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("IsNotFound matched a plain error")
	}
}
