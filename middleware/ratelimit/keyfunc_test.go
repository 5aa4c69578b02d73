package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultKeyFunc(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		trustXFF bool
		setup    func(r *http.Request)
		want     string
	}{
		{
			name:   "header wins and is trimmed",
			header: "X-Client",
			setup:  func(r *http.Request) { r.Header.Set("X-Client", " client-123 ") },
			want:   "client-123",
		},
		{
			name:     "first XFF hop when trusted",
			trustXFF: true,
			setup:    func(r *http.Request) { r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8") },
			want:     "1.2.3.4",
		},
		{
			name:  "XFF ignored when not trusted",
			setup: func(r *http.Request) { r.Header.Set("X-Forwarded-For", "1.2.3.4") },
			want:  "10.0.0.9",
		},
		{
			name:  "remote addr without port",
			setup: func(r *http.Request) { r.RemoteAddr = "10.0.0.7" },
			want:  "10.0.0.7",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "http://example/", nil)
			r.RemoteAddr = "10.0.0.9:5555"
			if tc.setup != nil {
				tc.setup(r)
			}
			if got := DefaultKeyFunc(tc.header, tc.trustXFF)(r); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
