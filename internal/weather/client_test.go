package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestHTTPClientCurrent(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("appid")
		_, _ = w.Write([]byte(`{"name":"Paris","weather":[{"main":"Clouds","description":"broken clouds"},{"description":"mist"}],"main":{"temp":285.1}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key-1", zap.NewNop())
	w, err := c.Current(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotQuery != "Paris" || gotKey != "key-1" {
		t.Fatalf("unexpected query q=%q appid=%q", gotQuery, gotKey)
	}
	if w == nil || w.Description != "broken clouds" || w.City != "Paris" {
		t.Fatalf("expected first description, got %+v", w)
	}
}

func TestHTTPClientCurrent_NoForecast(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "city not found", status: http.StatusNotFound, body: `{"cod":"404","message":"city not found"}`},
		{name: "empty weather list", status: http.StatusOK, body: `{"name":"Nowhere","weather":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewHTTPClient(srv.URL, "k", zap.NewNop())
			w, err := c.Current(context.Background(), "Nowhere")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if w != nil {
				t.Fatalf("expected nil forecast, got %+v", w)
			}
		})
	}
}
