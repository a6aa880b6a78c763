// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation", "Salah: Its Importance!", "salah-its-importance"},
		{"accents", "Café Crème", "cafe-creme"},
		{"cyrillic", "Молитва", "molitva"},
		{"extra spaces", "  many   spaces  ", "many-spaces"},
		{"hyphens", "a--b---c", "a-b-c"},
		{"numbers", "Top 10 Tips", "top-10-tips"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.input); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlugify_MaxLength(t *testing.T) {
	got := Slugify(strings.Repeat("word ", 100))
	if len(got) > MaxSlugLength {
		t.Errorf("len = %d, want <= %d", len(got), MaxSlugLength)
	}
	if !IsValidSlug(got) {
		t.Errorf("truncated slug %q is not valid", got)
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"hello-world", true},
		{"abc123", true},
		{"", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"Upper", false},
		{"under_score", false},
	}

	for _, tt := range tests {
		if got := IsValidSlug(tt.slug); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "203.0.113.5:1234", nil, "203.0.113.5"},
		{"ipv6 remote addr", "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"x-real-ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"x-forwarded-for", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.8, 10.0.0.2"}, "198.51.100.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReferrerDomain(t *testing.T) {
	tests := map[string]string{
		"":                                 "",
		"https://www.google.com/search?q=1": "www.google.com",
		"http://localhost:8080/page":        "localhost",
		"::not a url":                       "",
	}
	for in, want := range tests {
		if got := ReferrerDomain(in); got != want {
			t.Errorf("ReferrerDomain(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}
	for _, tt := range tests {
		if got := IsPrivateIP(net.ParseIP(tt.ip)); got != tt.want {
			t.Errorf("IsPrivateIP(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}
	if !IsPrivateIP(nil) {
		t.Error("IsPrivateIP(nil) should be true")
	}
}

func TestNullConversions(t *testing.T) {
	v := int64(7)
	if n := NullInt64FromPtr(&v); !n.Valid || n.Int64 != 7 {
		t.Errorf("NullInt64FromPtr = %+v", n)
	}
	if n := NullInt64FromPtr(nil); n.Valid {
		t.Error("NullInt64FromPtr(nil) should be invalid")
	}
	if p := PtrFromNullInt64(sql.NullInt64{}); p != nil {
		t.Error("PtrFromNullInt64(invalid) should be nil")
	}
	if p := PtrFromNullInt64(NullInt64FromValue(3)); p == nil || *p != 3 {
		t.Errorf("PtrFromNullInt64 = %v", p)
	}
	if n := NullStringFromValue(""); n.Valid {
		t.Error(`NullStringFromValue("") should be invalid`)
	}
	if p := PtrFromNullString(NullStringFromValue("x")); p == nil || *p != "x" {
		t.Errorf("PtrFromNullString = %v", p)
	}
}
