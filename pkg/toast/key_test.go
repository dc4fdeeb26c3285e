package toast_test

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/vango-dev/toast/pkg/toast"
)

var keyPattern = regexp.MustCompile(`^toast-\d+-[0-9a-f]{9}$`)

func TestGenerateKeyFormat(t *testing.T) {
	key := toast.GenerateKey()
	if !keyPattern.MatchString(key) {
		t.Errorf("GenerateKey() = %q, does not match %s", key, keyPattern)
	}
}

func TestGenerateKeyUniqueAndMonotonic(t *testing.T) {
	seen := make(map[string]bool)
	var last int64
	for i := 0; i < 1000; i++ {
		key := toast.GenerateKey()
		if seen[key] {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = true

		parts := strings.Split(strings.TrimPrefix(key, toast.KeyPrefix), "-")
		ms, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			t.Fatalf("bad timestamp in %q: %v", key, err)
		}
		if ms < last {
			t.Fatalf("timestamp went backwards: %d < %d", ms, last)
		}
		last = ms
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    toast.Type
		wantErr bool
	}{
		{"success", toast.TypeSuccess, false},
		{"warning", toast.TypeWarning, false},
		{"error", toast.TypeError, false},
		{"info", toast.TypeInfo, false},
		{"", toast.TypeInfo, false},
		{"fatal", "", true},
	}
	for _, tt := range tests {
		got, err := toast.ParseType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
