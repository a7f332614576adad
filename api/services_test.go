package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenGenerator(t *testing.T) {
	t.Run("returns token (happy case)", func(t *testing.T) {
		request, response := newRequest(t, http.MethodPost, "/auth/username", map[string]string{
			"username": "judge",
		})

		testServer.Handler().ServeHTTP(response, request)

		require.Equal(t, http.StatusOK, response.Code)

		body := decodeBody[struct {
			Success bool `json:"success"`
			Data    struct {
				ID       string `json:"id"`
				Username string `json:"username"`
				Token    string `json:"token"`
			} `json:"data"`
		}](t, response.Body)

		require.True(t, body.Success)
		require.Equal(t, "judge", body.Data.Username)

		payload, err := testServer.tokenMaker.VerifyToken(body.Data.Token)
		require.NoError(t, err)
		require.Equal(t, body.Data.ID, payload.ID.String())
	})

	t.Run("invalid or no body", func(t *testing.T) {
		request, response := newRequest(t, http.MethodPost, "/auth/username", map[string]string{})

		testServer.Handler().ServeHTTP(response, request)

		require.Equal(t, http.StatusBadRequest, response.Code)

		body := decodeBody[struct {
			Success bool     `json:"success"`
			Errors  []string `json:"errors"`
		}](t, response.Body)
		require.False(t, body.Success)
		require.Len(t, body.Errors, 1)
	})
}

func TestAuthMiddlewareAndTokenData(t *testing.T) {
	t.Run("allow valid token entry", func(t *testing.T) {
		token, _, err := testServer.tokenMaker.CreateToken("judge", time.Minute)
		require.NoError(t, err)

		request, response := newRequest(t, http.MethodGet, "/auth/me", nil)
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %v", token))

		testServer.Handler().ServeHTTP(response, request)

		require.Equal(t, http.StatusOK, response.Code)
	})

	t.Run("disallow invalid token entry", func(t *testing.T) {
		token, _, err := testServer.tokenMaker.CreateToken("judge", time.Minute)
		require.NoError(t, err)

		request, response := newRequest(t, http.MethodGet, "/auth/me", nil)
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %v", token+"hhh"))

		testServer.Handler().ServeHTTP(response, request)

		require.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("return unauthorized expired token entry", func(t *testing.T) {
		token, _, err := testServer.tokenMaker.CreateToken("judge", -time.Minute)
		require.NoError(t, err)

		request, response := newRequest(t, http.MethodGet, "/auth/me", nil)
		request.Header.Set("Authorization", fmt.Sprintf("Bearer %v", token))

		testServer.Handler().ServeHTTP(response, request)

		require.Equal(t, http.StatusUnauthorized, response.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		request, response := newRequest(t, http.MethodGet, "/auth/me", nil)

		testServer.Handler().ServeHTTP(response, request)

		require.Equal(t, http.StatusUnauthorized, response.Code)
	})
}

func TestCheckRoom(t *testing.T) {
	t.Run("unknown room", func(t *testing.T) {
		request, response := newRequest(t, http.MethodGet, "/rooms/nope", nil)

		testServer.Handler().ServeHTTP(response, request)

		require.Equal(t, http.StatusNotFound, response.Code)
	})

	t.Run("waiting room", func(t *testing.T) {
		roomID, err := testServer.coordinator.CreateRoom("check-room-host")
		require.NoError(t, err)

		request, response := newRequest(t, http.MethodGet, "/rooms/"+roomID, nil)

		testServer.Handler().ServeHTTP(response, request)

		require.Equal(t, http.StatusOK, response.Code)

		body := decodeBody[struct {
			Data struct {
				ID      string `json:"id"`
				Full    bool   `json:"full"`
				Players []struct {
					ID string `json:"id"`
				} `json:"players"`
			} `json:"data"`
		}](t, response.Body)

		require.Equal(t, roomID, body.Data.ID)
		require.False(t, body.Data.Full)
		require.Len(t, body.Data.Players, 1)
		require.Equal(t, "check-room-host", body.Data.Players[0].ID)
	})
}

func TestHealthAndCORS(t *testing.T) {
	request, response := newRequest(t, http.MethodGet, "/healthz", nil)
	request.Header.Set("Origin", "http://localhost:3000")

	testServer.Handler().ServeHTTP(response, request)

	require.Equal(t, http.StatusOK, response.Code)
	require.Equal(t, "http://localhost:3000", response.Header().Get("Access-Control-Allow-Origin"))

	request, response = newRequest(t, http.MethodGet, "/healthz", nil)
	request.Header.Set("Origin", "http://evil.example")

	testServer.Handler().ServeHTTP(response, request)

	require.Empty(t, response.Header().Get("Access-Control-Allow-Origin"))
}

func decodeBody[D any](t *testing.T, body *bytes.Buffer) D {
	t.Helper()

	data, err := io.ReadAll(body)
	require.NoError(t, err)

	var value D
	require.NoError(t, json.Unmarshal(data, &value))

	return value
}

func newRequest(t *testing.T, method, url string, body any) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var reader io.Reader = http.NoBody

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	request, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")

	return request, httptest.NewRecorder()
}
