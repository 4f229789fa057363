package http

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aqui-app/aqui-api/internal/service"
)

func TestBearerToken(t *testing.T) {
	if token, msg := bearerToken("Bearer abc "); token != "abc" || msg != "" {
		t.Fatalf("expected abc, got %q (%s)", token, msg)
	}
	if token, msg := bearerToken("bearer xyz"); token != "xyz" || msg != "" {
		t.Fatalf("scheme should be case-insensitive, got %q (%s)", token, msg)
	}
	if _, msg := bearerToken(""); msg != "missing authorization header" {
		t.Fatalf("unexpected message %q", msg)
	}
	if _, msg := bearerToken("Basic Zm9vOmJhcg=="); msg != "invalid authorization header" {
		t.Fatalf("unexpected message %q", msg)
	}
	if _, msg := bearerToken("Bearer   "); msg != "invalid authorization header" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRequireAdmin(t *testing.T) {
	auth, _, _ := newTokenAuth()
	e := quietEcho()
	g := e.Group("/admin", RequireAuth(auth), RequireAdmin())
	g.GET("", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	expectStatus(t, doRequest(t, e, http.MethodGet, "/admin", "", ""), http.StatusUnauthorized)
	expectStatus(t, doRequest(t, e, http.MethodGet, "/admin", "vendor-token", ""), http.StatusForbidden)
	expectStatus(t, doRequest(t, e, http.MethodGet, "/admin", "admin-token", ""), http.StatusOK)
}

func TestSweepEndpointRequiresCronSecret(t *testing.T) {
	sweeper := &stubSweeper{result: service.SweepResult{Ended: 3}}
	e := quietEcho()
	RegisterInternal(e, "s3cret", sweeper)

	rec := doRequest(t, e, http.MethodPost, "/api/v1/internal/live-sessions/sweep", "", "")
	expectStatus(t, rec, http.StatusUnauthorized)
	if sweeper.calls != 0 {
		t.Fatal("sweeper ran without a secret")
	}

	req := newCronRequest("wrong")
	rec = serve(e, req)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = serve(e, newCronRequest("s3cret"))
	expectStatus(t, rec, http.StatusOK)
	if out := decodeBody(t, rec); out["ended"] != float64(3) {
		t.Fatalf("expected ended=3, got %v", out)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
}

func TestSweepEndpointDisabledWithoutSecret(t *testing.T) {
	sweeper := &stubSweeper{}
	e := quietEcho()
	RegisterInternal(e, "", sweeper)

	rec := serve(e, newCronRequest(""))
	expectStatus(t, rec, http.StatusNotFound)
	if sweeper.calls != 0 {
		t.Fatal("disabled endpoint must not sweep")
	}
}

func TestSweepEndpointFailure(t *testing.T) {
	e := quietEcho()
	RegisterInternal(e, "s3cret", &stubSweeper{err: errBoom})

	rec := serve(e, newCronRequest("s3cret"))
	expectStatus(t, rec, http.StatusInternalServerError)
}
