package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"members-portal/internal/domain"
	"members-portal/internal/testutil"
)

func get(t *testing.T, ts *testutil.TestServer, path string, cookie *http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL(path), nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func postForm(t *testing.T, ts *testutil.TestServer, path string, form url.Values) *http.Response {
	t.Helper()

	resp, err := ts.Client().PostForm(ts.URL(path), form)
	require.NoError(t, err)
	return resp
}

func TestSignUpFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	form := url.Values{}
	form.Set("firstName", "Ana")
	form.Set("email", "ana@x.com")
	form.Set("password", "secret1")

	resp := postForm(t, ts, "/signup", form)
	defer resp.Body.Close()

	testutil.AssertRedirect(t, resp, "/authenticated")
	cookie := testutil.SessionCookie(resp)
	require.NotNil(t, cookie, "signup must set a session cookie")
	assert.True(t, cookie.HttpOnly)

	// The user row exists and never stores the plaintext password.
	var user domain.User
	require.NoError(t, ts.DB.DB.First(&user, "email = ?", "ana@x.com").Error)
	assert.Equal(t, "Ana", user.FirstName)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	// The fresh session reaches the gated page.
	page := get(t, ts, "/authenticated", cookie)
	defer page.Body.Close()
	testutil.AssertStatusCode(t, page, http.StatusOK)
	testutil.AssertBodyContains(t, page, "Ana")

	// A second identical signup adds nothing and reports the duplicate.
	again := postForm(t, ts, "/signup", form)
	defer again.Body.Close()
	testutil.AssertStatusCode(t, again, http.StatusOK)
	testutil.AssertBodyContains(t, again, "Email already registered")
	assert.Nil(t, testutil.SessionCookie(again))
	assert.EqualValues(t, 1, testutil.CountUsers(t, ts.DB.DB))
}

func TestSignUpValidation(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name        string
		form        url.Values
		wantMessage string
	}{
		{
			name: "missing first name",
			form: url.Values{
				"email":    {"ana@x.com"},
				"password": {"secret1"},
			},
			wantMessage: "first name is required",
		},
		{
			name: "malformed email",
			form: url.Values{
				"firstName": {"Ana"},
				"email":     {"not-an-email"},
				"password":  {"secret1"},
			},
			wantMessage: "email must be a valid email address",
		},
		{
			name: "short password",
			form: url.Values{
				"firstName": {"Ana"},
				"email":     {"ana@x.com"},
				"password":  {"short"},
			},
			wantMessage: "password must be at least 6 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			resp := postForm(t, ts, "/signup", tt.form)
			defer resp.Body.Close()

			testutil.AssertStatusCode(t, resp, http.StatusOK)
			testutil.AssertBodyContains(t, resp, tt.wantMessage)
			assert.Nil(t, testutil.SessionCookie(resp))
			assert.Zero(t, testutil.CountUsers(t, ts.DB.DB))
		})
	}
}

func TestSignInFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, _ := testutil.NewUserBuilder().
		WithEmail("ana@x.com").
		WithPassword("secret1").
		Build(t, ts.DB.DB)

	t.Run("wrong password", func(t *testing.T) {
		form := url.Values{"email": {user.Email}, "password": {"wrong"}}
		resp := postForm(t, ts, "/signIn", form)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertBodyContains(t, resp, "Incorrect email or password")
		assert.Nil(t, testutil.SessionCookie(resp), "no session on failed sign in")
	})

	t.Run("unknown email reads the same as wrong password", func(t *testing.T) {
		form := url.Values{"email": {"nobody@x.com"}, "password": {"whatever"}}
		resp := postForm(t, ts, "/signIn", form)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertBodyContains(t, resp, "Incorrect email or password")
		assert.Nil(t, testutil.SessionCookie(resp))
	})

	t.Run("correct credentials", func(t *testing.T) {
		cookie := testutil.SignIn(t, ts, user.Email, "secret1")

		page := get(t, ts, "/authenticated", cookie)
		defer page.Body.Close()
		testutil.AssertStatusCode(t, page, http.StatusOK)
	})
}

func TestUserEndpoint(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("no session", func(t *testing.T) {
		resp := get(t, ts, "/user", nil)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
		var body map[string]string
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "Unauthorized", body["error"])
	})

	t.Run("valid session", func(t *testing.T) {
		_, cookie := testutil.NewUserBuilder().
			WithFirstName("Ana").
			WithEmail("ana@x.com").
			BuildAndSignIn(t, ts)

		resp := get(t, ts, "/user", cookie)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var body map[string]string
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "Ana", body["firstName"])
	})

	t.Run("user row gone", func(t *testing.T) {
		user, cookie := testutil.NewUserBuilder().
			WithEmail("ghost@x.com").
			BuildAndSignIn(t, ts)

		require.NoError(t, ts.DB.DB.Delete(&domain.User{}, "email = ?", user.Email).Error)

		resp := get(t, ts, "/user", cookie)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusNotFound)
		var body map[string]string
		testutil.AssertJSONResponse(t, resp, &body)
		assert.Equal(t, "User not found", body["error"])
	})
}

func TestLogout(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, cookie := testutil.NewUserBuilder().
		WithEmail("ana@x.com").
		BuildAndSignIn(t, ts)

	resp := get(t, ts, "/logout", cookie)
	defer resp.Body.Close()
	testutil.AssertRedirect(t, resp, "/")
	assert.Zero(t, testutil.CountSessions(t, ts.DB.DB))

	// The old cookie is dead server-side: the gated page bounces it.
	page := get(t, ts, "/authenticated", cookie)
	defer page.Body.Close()
	testutil.AssertRedirect(t, page, "/signIn")
}

func TestAuthorizationGate(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("membersOnly without session redirects", func(t *testing.T) {
		resp := get(t, ts, "/membersOnly", nil)
		defer resp.Body.Close()
		testutil.AssertRedirect(t, resp, "/signIn")
	})

	t.Run("membersOnly with session renders", func(t *testing.T) {
		_, cookie := testutil.NewUserBuilder().
			WithEmail("member@x.com").
			BuildAndSignIn(t, ts)

		resp := get(t, ts, "/membersOnly", cookie)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		testutil.AssertBodyContains(t, resp, "Members Area")
	})

	t.Run("expired session redirects", func(t *testing.T) {
		_, cookie := testutil.NewUserBuilder().
			WithEmail("expired@x.com").
			BuildAndSignIn(t, ts)

		testutil.ExpireSessions(t, ts.DB.DB)

		resp := get(t, ts, "/authenticated", cookie)
		defer resp.Body.Close()
		testutil.AssertRedirect(t, resp, "/signIn")
	})
}
