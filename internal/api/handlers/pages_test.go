package handlers_test

import (
	"net/http"
	"testing"

	"members-portal/internal/testutil"
)

func TestPublicPages(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name     string
		path     string
		fragment string
	}{
		{name: "home", path: "/", fragment: "Welcome"},
		{name: "sign in form", path: "/signIn", fragment: `action="/signIn"`},
		{name: "sign up form", path: "/signup", fragment: `action="/signup"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts, tt.path, nil)
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, http.StatusOK)
			testutil.AssertBodyContains(t, resp, tt.fragment)
		})
	}
}

func TestNotFoundPage(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := get(t, ts, "/no-such-page", nil)
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
	testutil.AssertBodyContains(t, resp, "That page does not exist")
}

func TestHealthAndStatic(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("health", func(t *testing.T) {
		resp := get(t, ts, "/health", nil)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertBodyContains(t, resp, "OK")
	})

	t.Run("stylesheet", func(t *testing.T) {
		resp := get(t, ts, "/static/css/site.css", nil)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})
}
