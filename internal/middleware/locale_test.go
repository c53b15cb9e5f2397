package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func localeProbe(t *testing.T, lookup CountryLookup, prep func(*http.Request)) (string, string) {
	t.Helper()
	var locale, country string
	h := Locale("en", []string{"en", "zh", "id"}, lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	if prep != nil {
		prep(req)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return locale, country
}

func TestLocaleHeaderOverride(t *testing.T) {
	locale, _ := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("X-Locale", "zh-CN")
		r.Header.Set("Accept-Language", "id")
	})
	if locale != "zh" {
		t.Fatalf("locale = %q, want zh", locale)
	}
}

func TestLocaleAcceptLanguageMatch(t *testing.T) {
	locale, _ := localeProbe(t, nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "id-ID,id;q=0.9,en;q=0.5")
	})
	if locale != "id" {
		t.Fatalf("locale = %q, want id", locale)
	}
}

func TestLocaleFallback(t *testing.T) {
	locale, _ := localeProbe(t, nil, nil)
	if locale != "en" {
		t.Fatalf("locale = %q, want default", locale)
	}
}

func TestLocaleCountryLookup(t *testing.T) {
	var seenIP string
	lookup := func(ip string) (string, error) {
		seenIP = ip
		return "id", nil
	}
	_, country := localeProbe(t, lookup, func(r *http.Request) {
		r.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	})
	if country != "ID" {
		t.Fatalf("country = %q, want uppercased ID", country)
	}
	if seenIP != "198.51.100.9" {
		t.Fatalf("lookup ip = %q, want first forwarded hop", seenIP)
	}
}

func TestLocaleCountryLookupFailureIsSilent(t *testing.T) {
	lookup := func(ip string) (string, error) {
		return "", errors.New("db closed")
	}
	_, country := localeProbe(t, lookup, nil)
	if country != "" {
		t.Fatalf("country = %q, want empty on lookup failure", country)
	}
}
