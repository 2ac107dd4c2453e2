package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/heritage-kr/noticehub/internal/apperr"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("page number must be greater than 0")

	if err.Error() != "page number must be greater than 0" {
		t.Errorf("expected 'page number must be greater than 0', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := apperr.NewValidationWrap("invalid column schema", inner)

	if err.Error() != "invalid column schema: parse failed" {
		t.Errorf("expected 'invalid column schema: parse failed', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("article ID is out of bounds")

	wrapped := fmt.Errorf("failed to fetch listing: %w", original)
	doubleWrapped := fmt.Errorf("harvest run: %w", wrapped)

	var ve *apperr.ValidationError
	if !errors.As(doubleWrapped, &ve) {
		t.Fatal("errors.As should find ValidationError through double wrapping")
	}
	if ve.Message != "article ID is out of bounds" {
		t.Errorf("expected 'article ID is out of bounds', got %q", ve.Message)
	}
}

func TestInteractionError_CarriesAttempts(t *testing.T) {
	inner := fmt.Errorf("element not clickable")
	err := apperr.NewInteraction("a.next-page", 5, inner)

	var ie *apperr.InteractionError
	if !errors.As(fmt.Errorf("click: %w", err), &ie) {
		t.Fatal("errors.As should find InteractionError")
	}
	if ie.Attempts != 5 || ie.Selector != "a.next-page" {
		t.Errorf("unexpected fields: %+v", ie)
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestParseError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("browser crashed")
	wrapped := fmt.Errorf("session error: %w", plain)

	var pe *apperr.ParseError
	if errors.As(wrapped, &pe) {
		t.Fatal("errors.As should NOT find ParseError in plain error chain")
	}
}
