package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"members-portal/internal/domain"
	"members-portal/internal/testutil"
)

func post(t *testing.T, ts *testutil.TestServer, path string, cookie *http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.URL(path), strings.NewReader(""))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func TestAdminGate(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("no session redirects to sign in", func(t *testing.T) {
		resp := get(t, ts, "/admin", nil)
		defer resp.Body.Close()
		testutil.AssertRedirect(t, resp, "/signIn")
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		_, cookie := testutil.NewUserBuilder().
			WithEmail("regular@example.com").
			BuildAndSignIn(t, ts)

		resp := get(t, ts, "/admin", cookie)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
		testutil.AssertBodyContains(t, resp, "Forbidden: Admins only")
	})

	t.Run("promote is forbidden for regular user too", func(t *testing.T) {
		_, cookie := testutil.NewUserBuilder().
			WithEmail("sneaky@example.com").
			BuildAndSignIn(t, ts)

		resp := post(t, ts, "/admin/promote/sneaky@example.com", cookie)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusForbidden)
	})
}

func TestAdminPanel(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin, cookie := testutil.NewUserBuilder().
		WithEmail("admin@example.com").
		WithRole(domain.RoleAdmin).
		BuildAndSignIn(t, ts)

	member, memberPassword := testutil.NewUserBuilder().
		WithEmail("member@example.com").
		Build(t, ts.DB.DB)

	t.Run("lists every account", func(t *testing.T) {
		resp := get(t, ts, "/admin", cookie)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertBodyContains(t, resp, member.Email)
		testutil.AssertBodyContains(t, resp, admin.Email+" (you)")
	})

	t.Run("promote grants admin access", func(t *testing.T) {
		resp := post(t, ts, "/admin/promote/"+member.Email, cookie)
		defer resp.Body.Close()
		testutil.AssertRedirect(t, resp, "/admin")

		// The promoted account now passes the admin gate itself.
		memberCookie := testutil.SignIn(t, ts, member.Email, memberPassword)
		panel := get(t, ts, "/admin", memberCookie)
		defer panel.Body.Close()
		testutil.AssertStatusCode(t, panel, http.StatusOK)
	})

	t.Run("demote revokes it again", func(t *testing.T) {
		resp := post(t, ts, "/admin/demote/"+member.Email, cookie)
		defer resp.Body.Close()
		testutil.AssertRedirect(t, resp, "/admin")

		memberCookie := testutil.SignIn(t, ts, member.Email, memberPassword)
		panel := get(t, ts, "/admin", memberCookie)
		defer panel.Body.Close()
		testutil.AssertStatusCode(t, panel, http.StatusForbidden)
	})

	t.Run("unknown email is a 404", func(t *testing.T) {
		resp := post(t, ts, "/admin/promote/nobody@example.com", cookie)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
		testutil.AssertBodyContains(t, resp, "User not found")
	})
}
