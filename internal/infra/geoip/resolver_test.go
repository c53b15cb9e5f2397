package geoip

import (
	"errors"
	"testing"
)

func TestNewResolverEmptyPathDisables(t *testing.T) {
	r, err := NewResolver("  ")
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if r != nil {
		t.Fatal("empty path must yield a nil resolver")
	}
}

func TestNewResolverMissingDatabase(t *testing.T) {
	if _, err := NewResolver("/no/such/file.mmdb"); err == nil {
		t.Fatal("expected error for missing database file")
	}
}

func TestNilResolverIsSafe(t *testing.T) {
	var r *Resolver
	if _, err := r.CountryCode("203.0.113.7"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close on nil resolver: %v", err)
	}
}
