package unit

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewError(t *testing.T) {
	err := NewError(ErrCodeAuthRequired, "no API key configured")
	if err.Code != ErrCodeAuthRequired {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeAuthRequired)
	}
	if err.Message != "no API key configured" {
		t.Errorf("Message = %q, want %q", err.Message, "no API key configured")
	}
	if err.Details != nil {
		t.Error("Details should be nil for NewError")
	}
}

func TestNewErrorWithDetails(t *testing.T) {
	details := map[string]any{"status": 502, "body": "bad gateway"}
	err := NewErrorWithDetails(ErrCodeUpstream, "catalog fetch failed", details)
	if err.Code != ErrCodeUpstream {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeUpstream)
	}
	d, ok := err.Details.(map[string]any)
	if !ok {
		t.Fatalf("Details = %T, want map", err.Details)
	}
	if d["status"] != 502 {
		t.Errorf("Details[status] = %v, want 502", d["status"])
	}
}

func TestError_Error(t *testing.T) {
	t.Run("without details", func(t *testing.T) {
		err := NewError(ErrCodeNetwork, "connection refused")
		expected := "[NETWORK_ERROR] connection refused"
		if got := err.Error(); got != expected {
			t.Errorf("Error() = %q, want %q", got, expected)
		}
	})

	t.Run("with details", func(t *testing.T) {
		err := NewErrorWithDetails(ErrCodeUpstream, "fetch failed", 502)
		expected := "[UPSTREAM_ERROR] fetch failed: 502"
		if got := err.Error(); got != expected {
			t.Errorf("Error() = %q, want %q", got, expected)
		}
	})
}

func TestError_Is(t *testing.T) {
	err1 := NewError(ErrCodeNetwork, "timeout dialing")
	err2 := NewError(ErrCodeNetwork, "connection reset")
	err3 := NewError(ErrCodeUpstream, "500 from provider")

	if !errors.Is(err1, err2) {
		t.Error("errors with the same code should match")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match")
	}
	if errors.Is(err1, errors.New("timeout dialing")) {
		t.Error("plain errors should not match")
	}
}

func TestAsError(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		original := NewError(ErrCodeInvalidInput, "unknown model id")
		ue, ok := AsError(original)
		if !ok {
			t.Fatal("AsError should find a *Error")
		}
		if ue.Code != ErrCodeInvalidInput {
			t.Errorf("Code = %q, want %q", ue.Code, ErrCodeInvalidInput)
		}
	})

	t.Run("wrapped", func(t *testing.T) {
		original := NewError(ErrCodeAuthRequired, "embeddings need a key")
		wrapped := fmt.Errorf("scoring: %w", original)
		ue, ok := AsError(wrapped)
		if !ok {
			t.Fatal("AsError should unwrap to the *Error")
		}
		if ue.Code != ErrCodeAuthRequired {
			t.Errorf("Code = %q, want %q", ue.Code, ErrCodeAuthRequired)
		}
	})

	t.Run("plain error", func(t *testing.T) {
		ue, ok := AsError(errors.New("boom"))
		if ok || ue != nil {
			t.Error("AsError should return nil, false for plain errors")
		}
	})

	t.Run("nil", func(t *testing.T) {
		ue, ok := AsError(nil)
		if ok || ue != nil {
			t.Error("AsError should return nil, false for nil")
		}
	})
}

func TestErrorf(t *testing.T) {
	err := Errorf("unknown verbosity %q", "loud")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeInvalidInput)
	}
	if err.Message != `unknown verbosity "loud"` {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestErrorCodeValues(t *testing.T) {
	tests := []struct {
		code  ErrorCode
		value string
	}{
		{ErrCodeAuthRequired, "AUTH_REQUIRED"},
		{ErrCodeNetwork, "NETWORK_ERROR"},
		{ErrCodeUpstream, "UPSTREAM_ERROR"},
		{ErrCodeInvalidInput, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		if string(tt.code) != tt.value {
			t.Errorf("code %q, want %q", tt.code, tt.value)
		}
	}
}
