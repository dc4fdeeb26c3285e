package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "runtime error",
			code:    "T001",
			wantMsg: "Renderer not attached",
			wantCat: CategoryRuntime,
		},
		{
			name:    "config error",
			code:    "C003",
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "request error",
			code:    "R002",
			wantMsg: "Invalid notification type",
			wantCat: CategoryRequest,
		},
		{
			name:    "unknown error code",
			code:    "T999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "file %q not found", "toastd.yaml")
	if err.Message != `file "toastd.yaml" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
	if err.Error() != err.Message {
		t.Errorf("Error() = %q, want %q", err.Error(), err.Message)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("open toastd.json: no such file")
	err := New("C001").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "no such file") {
		t.Errorf("Error() = %q, want wrapped message", err.Error())
	}

	wrapped := fmt.Errorf("loading: %w", err)
	if !stderrors.Is(wrapped, New("C001")) {
		t.Error("errors.Is should match by code through fmt wrapping")
	}
	if stderrors.Is(wrapped, New("C002")) {
		t.Error("errors.Is should not match a different code")
	}
	if got := Code(wrapped); got != "C001" {
		t.Errorf("Code() = %q, want C001", got)
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "C001") != nil {
		t.Error("FromError(nil) should return nil")
	}

	plain := stderrors.New("boom")
	te := FromError(plain, "R001")
	if te.Code != "R001" || te.Wrapped != plain {
		t.Errorf("FromError wrapped = %+v", te)
	}

	original := New("C003")
	if got := FromError(fmt.Errorf("ctx: %w", original), "R001"); got != original {
		t.Error("FromError should return an existing ToastError unchanged")
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("C003").
		WithDetail("toast.durationMs must not be negative").
		WithSuggestion("use 0 for notifications that stay until closed")

	out := err.Format()
	for _, want := range []string{
		"ERROR C003: Invalid configuration",
		"toast.durationMs must not be negative",
		"Hint: use 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}

	if got := err.FormatCompact(); got != "C003: Invalid configuration (toast.durationMs must not be negative)" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestLogAttrs(t *testing.T) {
	attrs := New("T002").Wrap(stderrors.New("x")).LogAttrs()
	// code, category, detail, err
	if len(attrs) != 4 {
		t.Fatalf("len(LogAttrs()) = %d, want 4", len(attrs))
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	want := []string{"one two", "three", "four five"}
	if len(lines) != len(want) {
		t.Fatalf("wrapText() = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
	if wrapText("   ", 10) != nil {
		t.Error("wrapText of blank text should be nil")
	}
}
