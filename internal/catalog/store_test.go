package catalog

import (
	"testing"
	"time"
)

func TestNormalizeSort(t *testing.T) {
	cases := map[string]string{
		"title":    "title",
		"provider": "provider",
		"updated":  "updated",
		"":         "title",
		"name":     "title",
		"UPDATED":  "title",
	}
	for in, want := range cases {
		if got := normalizeSort(in); got != want {
			t.Errorf("normalizeSort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(nil); got != "" {
		t.Fatalf("FormatDate(nil) = %q", got)
	}
	d := time.Date(2020, 2, 18, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(&d); got != "2020-02-18" {
		t.Fatalf("FormatDate = %q", got)
	}
}
