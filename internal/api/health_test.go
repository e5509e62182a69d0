package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ok := func(context.Context) error { return nil }
	bad := func(context.Context) error { return assertErr{} }

	cases := []struct {
		name   string
		checks map[string]func(context.Context) error
		path   string
		want   int
	}{
		{name: "healthz ok", path: "/healthz", want: 200},
		{name: "readyz without checks", path: "/readyz", want: 200},
		{name: "readyz ok", checks: map[string]func(context.Context) error{"audit_db": ok}, path: "/readyz", want: 200},
		{name: "readyz nil check skipped", checks: map[string]func(context.Context) error{"audit_db": nil}, path: "/readyz", want: 200},
		{name: "readyz degraded", checks: map[string]func(context.Context) error{"audit_db": bad}, path: "/readyz", want: 503},
		{name: "healthz ignores checks", checks: map[string]func(context.Context) error{"audit_db": bad}, path: "/healthz", want: 200},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler(tc.checks).Register(r)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("want %d got %d", tc.want, w.Code)
			}
		})
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "err" }
