package integration

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollbox/pollbox/internal/core/domain"
)

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginRefreshLogout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	// Login through the callback; the stub verifier accepts "email|name".
	form := url.Values{"credential": {"alice@example.com|Alice"}}
	req, err := http.NewRequest("POST", app.Server.URL+"/auth/google/callback", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	resp.Body.Close()

	accessCookie := findCookie(resp, "access_token")
	refreshCookie := findCookie(resp, "refresh_token")
	require.NotNil(t, accessCookie)
	require.NotNil(t, refreshCookie)

	// The access token authenticates API calls.
	req, err = http.NewRequest("GET", app.Server.URL+"/api/users/me", nil)
	require.NoError(t, err)
	req.AddCookie(accessCookie)
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me domain.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	resp.Body.Close()
	assert.Equal(t, "alice@example.com", me.Email)

	// Refresh issues a fresh access token.
	req, err = http.NewRequest("POST", app.Server.URL+"/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(refreshCookie)
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	require.NotNil(t, findCookie(resp, "access_token"))

	// Logout revokes the refresh token.
	req, err = http.NewRequest("POST", app.Server.URL+"/auth/logout", nil)
	require.NoError(t, err)
	req.AddCookie(refreshCookie)
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req, err = http.NewRequest("POST", app.Server.URL+"/auth/refresh", nil)
	require.NoError(t, err)
	req.AddCookie(refreshCookie)
	resp, err = app.Client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRefreshWithoutCookie(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp, err := app.Client.Post(app.Server.URL+"/auth/refresh", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
