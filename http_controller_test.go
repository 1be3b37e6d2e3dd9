package auth_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	auth "github.com/VloneMe/alx-backend-user-data"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	store := newTestStore(t)
	auther := auth.NewAuthenticator(store)

	app := fiber.New()
	auth.RegisterAuthRoutes(app, auth.WithAuther(auther))

	return app
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	// No timeout: bcrypt hashing makes some requests slow on purpose.
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

func TestWelcomeRoute(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Bienvenue", body["message"])
}

func TestUsersCreate(t *testing.T) {
	app := newTestApp(t)

	form := url.Values{"email": {"bob@example.com"}, "password": {"pw1"}}
	resp := doRequest(t, app, formRequest(http.MethodPost, "/users", form))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "bob@example.com", body["email"])
	assert.Equal(t, "User created", body["message"])

	// Second registration with the same email is rejected.
	resp = doRequest(t, app, formRequest(http.MethodPost, "/users", form))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body = decodeBody(t, resp)
	assert.Equal(t, "Email already registered", body["message"])
}

func TestUsersCreateValidation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing email", url.Values{"password": {"pw"}}},
		{"malformed email", url.Values{"email": {"not-an-email"}, "password": {"pw"}}},
		{"missing password", url.Values{"email": {"a@b.com"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, formRequest(http.MethodPost, "/users", tt.form))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSessionsCreateRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	register := url.Values{"email": {"carol@example.com"}, "password": {"right-pw"}}
	resp := doRequest(t, app, formRequest(http.MethodPost, "/users", register))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	login := url.Values{"email": {"carol@example.com"}, "password": {"wrong-pw"}}
	resp = doRequest(t, app, formRequest(http.MethodPost, "/sessions", login))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, sessionCookie(resp))

	unknown := url.Values{"email": {"nobody@example.com"}, "password": {"pw"}}
	resp = doRequest(t, app, formRequest(http.MethodPost, "/sessions", unknown))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfileRequiresSession(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "forged"})
	resp = doRequest(t, app, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLogoutRequiresSession(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, httptest.NewRequest(http.MethodDelete, "/sessions", nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// TestFullWalkthrough mirrors the scripted client: register, wrong-password
// login, profile checks, logout, password reset, login with the new password.
func TestFullWalkthrough(t *testing.T) {
	app := newTestApp(t)

	const (
		email     = "guillaume@holberton.io"
		passwd    = "b4l0u"
		newPasswd = "t4rt1fl3tt3"
	)

	// register
	resp := doRequest(t, app, formRequest(http.MethodPost, "/users",
		url.Values{"email": {email}, "password": {passwd}}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// wrong password
	resp = doRequest(t, app, formRequest(http.MethodPost, "/sessions",
		url.Values{"email": {email}, "password": {newPasswd}}))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// profile without a session
	resp = doRequest(t, app, httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// login
	resp = doRequest(t, app, formRequest(http.MethodPost, "/sessions",
		url.Values{"email": {email}, "password": {passwd}}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Logged in", body["message"])

	sessionID := sessionCookie(resp)
	require.NotEmpty(t, sessionID)

	// profile with the session
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sessionID})
	resp = doRequest(t, app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	assert.Equal(t, email, body["email"])

	// logout redirects home
	req = httptest.NewRequest(http.MethodDelete, "/sessions", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sessionID})
	resp = doRequest(t, app, req)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	// the old session is dead
	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: sessionID})
	resp = doRequest(t, app, req)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// request a reset token
	resp = doRequest(t, app, formRequest(http.MethodPost, "/reset_password",
		url.Values{"email": {email}}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	token, _ := body["reset_token"].(string)
	require.NotEmpty(t, token)

	// update the password
	resp = doRequest(t, app, formRequest(http.MethodPut, "/reset_password",
		url.Values{"email": {email}, "reset_token": {token}, "new_password": {newPasswd}}))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body = decodeBody(t, resp)
	assert.Equal(t, "Password updated", body["message"])

	// a spent token cannot be redeemed twice
	resp = doRequest(t, app, formRequest(http.MethodPut, "/reset_password",
		url.Values{"email": {email}, "reset_token": {token}, "new_password": {"pw3"}}))
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// old password is out, new password is in
	resp = doRequest(t, app, formRequest(http.MethodPost, "/sessions",
		url.Values{"email": {email}, "password": {passwd}}))
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, formRequest(http.MethodPost, "/sessions",
		url.Values{"email": {email}, "password": {newPasswd}}))
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	app := newTestApp(t)

	resp := doRequest(t, app, formRequest(http.MethodPost, "/reset_password",
		url.Values{"email": {"nobody@example.com"}}))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
