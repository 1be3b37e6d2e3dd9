// Command authdemo walks the full authentication flow against a running
// authsvc instance: registration, failed and successful logins, profile
// lookups, logout, and a password reset. It exits non-zero on the first
// deviation from the expected status codes.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

const (
	email      = "guillaume@holberton.io"
	passwd     = "b4l0u"
	newPasswd  = "t4rt1fl3tt3"
	cookieName = "session_id"
)

var baseURL = "http://localhost:5000"

func main() {
	if v := strings.TrimSpace(os.Getenv("AUTH_SERVICE_URL")); v != "" {
		baseURL = v
	}

	registerUser(email, passwd)
	logInWrongPassword(email, newPasswd)
	profileUnlogged()
	sessionID := logIn(email, passwd)
	profileLogged(sessionID)
	logOut(sessionID)
	resetToken := resetPasswordToken(email)
	updatePassword(email, resetToken, newPasswd)
	logIn(email, newPasswd)

	fmt.Println("all steps passed")
}

func registerUser(email, password string) {
	resp := postForm("/users", url.Values{"email": {email}, "password": {password}})
	expectStatus("register user", resp, http.StatusOK)
}

func logInWrongPassword(email, password string) {
	resp := postForm("/sessions", url.Values{"email": {email}, "password": {password}})
	expectStatus("login with wrong password", resp, http.StatusUnauthorized)
}

func logIn(email, password string) string {
	resp := postForm("/sessions", url.Values{"email": {email}, "password": {password}})
	expectStatus("login", resp, http.StatusOK)

	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			return c.Value
		}
	}

	fail("login", "no %s cookie in response", cookieName)
	return ""
}

func profileUnlogged() {
	resp := get("/profile", "")
	expectStatus("profile without session", resp, http.StatusForbidden)
}

func profileLogged(sessionID string) {
	resp := get("/profile", sessionID)
	expectStatus("profile with session", resp, http.StatusOK)
}

func logOut(sessionID string) {
	req, err := http.NewRequest(http.MethodDelete, baseURL+"/sessions", nil)
	if err != nil {
		fail("logout", "%v", err)
	}
	req.AddCookie(&http.Cookie{Name: cookieName, Value: sessionID})

	resp := do(req, "logout")
	expectStatus("logout", resp, http.StatusOK)
}

func resetPasswordToken(email string) string {
	resp := postForm("/reset_password", url.Values{"email": {email}})
	expectStatus("request reset token", resp, http.StatusOK)

	var body struct {
		ResetToken string `json:"reset_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		fail("request reset token", "decode response: %v", err)
	}
	resp.Body.Close()

	if body.ResetToken == "" {
		fail("request reset token", "empty reset_token")
	}

	return body.ResetToken
}

func updatePassword(email, resetToken, newPassword string) {
	form := url.Values{
		"email":        {email},
		"reset_token":  {resetToken},
		"new_password": {newPassword},
	}
	req, err := http.NewRequest(http.MethodPut, baseURL+"/reset_password", strings.NewReader(form.Encode()))
	if err != nil {
		fail("update password", "%v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp := do(req, "update password")
	expectStatus("update password", resp, http.StatusOK)
}

func postForm(path string, form url.Values) *http.Response {
	resp, err := http.PostForm(baseURL+path, form)
	if err != nil {
		fail(path, "%v", err)
	}
	return resp
}

func get(path, sessionID string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fail(path, "%v", err)
	}
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: sessionID})
	}
	return do(req, path)
}

func do(req *http.Request, step string) *http.Response {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fail(step, "%v", err)
	}
	return resp
}

func expectStatus(step string, resp *http.Response, want int) {
	if resp.StatusCode != want {
		fail(step, "got status %d, want %d", resp.StatusCode, want)
	}
}

func fail(step, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "authdemo: %s: %s\n", step, fmt.Sprintf(format, args...))
	os.Exit(1)
}
