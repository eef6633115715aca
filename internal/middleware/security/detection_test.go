package security

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExtractClientIPIgnoresUntrustedHeaders(t *testing.T) {
	d := NewDetector()

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "203.0.113.7:4411"
	req.Header.Set("X-Forwarded-For", "198.51.100.4")

	if got := d.ExtractClientIP(req); got != "203.0.113.7" {
		t.Errorf("ExtractClientIP = %q, want direct peer", got)
	}
}

func TestExtractClientIPBehindTrustedProxy(t *testing.T) {
	d := NewDetector()

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	if got := d.ExtractClientIP(req); got != "198.51.100.4" {
		t.Errorf("ExtractClientIP = %q, want first forwarded hop", got)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.1.2.3:80"
	req.Header.Set("X-Real-IP", "198.51.100.9")
	if got := d.ExtractClientIP(req); got != "198.51.100.9" {
		t.Errorf("ExtractClientIP = %q, want X-Real-IP value", got)
	}

	// Garbage forwarded values fall back to the direct peer.
	req = httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	if got := d.ExtractClientIP(req); got != "127.0.0.1" {
		t.Errorf("ExtractClientIP = %q, want direct peer fallback", got)
	}
	if d.GetMetrics().InvalidIPAttempts == 0 {
		t.Errorf("invalid forwarded IP was not counted")
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	cases := []struct {
		name   string
		target string
		want   bool
	}{
		{"normal api call", "/api/transactions?period=month", false},
		{"traversal", "/../etc/passwd", true},
		{"wordpress probe", "/wp-admin/setup.php", true},
		{"injection in query", "/api/transactions?cb=eval(document)", true},
		{"overlong url", "/api/transactions?pad=" + strings.Repeat("x", 2100), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector()
			req := httptest.NewRequest("GET", tc.target, nil)
			if got := d.DetectSuspiciousRequest(req); got != tc.want {
				t.Errorf("DetectSuspiciousRequest(%q) = %v, want %v", tc.target, got, tc.want)
			}
			counted := d.GetMetrics().SuspiciousRequests == 1
			if counted != tc.want {
				t.Errorf("metrics counted=%v, want %v", counted, tc.want)
			}
		})
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector()

	if err := d.AddTrustedProxy("198.18.0.0/15"); err != nil {
		t.Fatalf("AddTrustedProxy: %v", err)
	}
	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Fatalf("expected error for invalid CIDR")
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "198.18.5.5:1000"
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	if got := d.ExtractClientIP(req); got != "198.51.100.4" {
		t.Errorf("ExtractClientIP = %q, want forwarded value via added proxy", got)
	}
}
