package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Stage", KeyStage, "cities", Stage("cities")},
		{"Class", KeyClass, "product", Class("product")},
		{"Entity", KeyEntity, "city:Москва", Entity("city:Москва")},
		{"Slug", KeySlug, "moskva", Slug("moskva")},
		{"Path", KeyPath, "city/moskva/index.html", Path("city/moskva/index.html")},
		{"URL", KeyURL, "http://x", URL("http://x")},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.attr.Key != c.attrKey {
				t.Fatalf("key mismatch: got %s want %s", c.attr.Key, c.attrKey)
			}
			if c.attr.Value.String() != c.attrVal {
				t.Fatalf("value mismatch: got %s want %s", c.attr.Value.String(), c.attrVal)
			}
		})
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	if a := Count(7); a.Key != KeyCount || a.Value.Int64() != 7 {
		t.Fatalf("unexpected count attr %v", a)
	}
	if a := Attempt(2); a.Key != KeyAttempt || a.Value.Int64() != 2 {
		t.Fatalf("unexpected attempt attr %v", a)
	}
	if a := DurationMS(1.5); a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected duration attr %v", a)
	}
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("expected empty error string, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Fatalf("expected boom, got %q", a.Value.String())
	}
}
