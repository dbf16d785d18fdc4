package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPProviderLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept-Encoding"); got != "identity" {
			t.Errorf("expected identity encoding, got %q", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected a user agent")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"USD":1,"EUR":0.9,"ARS":900}}`))
	}))
	defer srv.Close()

	rates, err := NewHTTPProvider(srv.URL, srv.Client()).Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if rates["EUR"] != 0.9 || rates["ARS"] != 900 {
		t.Fatalf("unexpected rates %v", rates)
	}
}

func TestHTTPProviderFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
		"malformed": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"rates":`))
		},
		"provider error": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"result":"error","error-type":"quota-reached"}`))
		},
		"no rates": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"result":"success","rates":{}}`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			if _, err := NewHTTPProvider(srv.URL, srv.Client()).Latest(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
