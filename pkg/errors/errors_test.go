package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeQuotaExceeded, "too many open shipments")
	if err.Code() != CodeQuotaExceeded {
		t.Fatalf("unexpected code %s", err.Code())
	}
	if err.Message() != "too many open shipments" {
		t.Fatalf("unexpected message %q", err.Message())
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeDependency, cause, "load need")
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := New(CodeStateConflict, "need is not active")
	wrapped := fmt.Errorf("creating shipment: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeStateConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestAsReturnsNilForPlainErrors(t *testing.T) {
	if As(errors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestMetadataForKnownCodes(t *testing.T) {
	if got := MetadataFor(CodeQuotaExceeded).HTTPStatus; got != http.StatusUnprocessableEntity {
		t.Fatalf("quota exceeded status = %d", got)
	}
	if got := MetadataFor(CodeReferentialIntegrity).HTTPStatus; got != http.StatusConflict {
		t.Fatalf("referential integrity status = %d", got)
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad input").WithDetails(map[string]string{"field": "is required"})
	details, ok := err.Details().(map[string]string)
	if !ok || details["field"] != "is required" {
		t.Fatalf("unexpected details %v", err.Details())
	}
}
