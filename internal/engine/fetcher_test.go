package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-refill/internal/config"
	"github.com/tartampluch/go-refill/internal/engine"
)

// TestHTTPFetcher_Fetch_Success verifies a complete successful download flow.
// It checks correct headers (User-Agent, Basic Auth) and response body integrity.
func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	// 1. Setup Validation Data
	expectedUser := "testuser"
	expectedPass := "securepass"
	expectedBody := "name,contact,first_dispense_date,days\n王小明,ming@test.com,2025-01-01,28"

	// 2. Mock Server
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify Basic Auth
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "Basic auth header should be present")
		assert.Equal(t, expectedUser, user, "Username mismatch")
		assert.Equal(t, expectedPass, pass, "Password mismatch")

		// Verify User-Agent matches the config constant
		assert.Equal(t, config.UserAgent, r.Header.Get("User-Agent"), "User-Agent mismatch")

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(expectedBody))
	}))
	defer ts.Close()

	// 3. Execution
	fetcher := engine.NewHTTPFetcher()
	rc, _, err := fetcher.Fetch(context.Background(), ts.URL, expectedUser, expectedPass)

	// 4. Assertions
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, expectedBody, string(body))
}

// TestHTTPFetcher_Fetch_Errors verifies proper error handling for non-200 statuses.
func TestHTTPFetcher_Fetch_Errors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    string
	}{
		{"NotFound", http.StatusNotFound, "404"},
		{"ServerError", http.StatusInternalServerError, "500"},
		{"Unauthorized", http.StatusUnauthorized, "401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer ts.Close()

			fetcher := engine.NewHTTPFetcher()
			rc, _, err := fetcher.Fetch(context.Background(), ts.URL, "", "")

			assert.Error(t, err)
			assert.Nil(t, rc)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestHTTPFetcher_Fetch_Timeout ensures the client respects context deadlines.
func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	// Simulate a server that hangs
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	fetcher := engine.NewHTTPFetcher()

	// Create a context that expires very quickly (before server responds)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, _, err := fetcher.Fetch(ctx, ts.URL, "", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "Should return context deadline exceeded error")
}

// TestHTTPFetcher_Fetch_InvalidURL ensures malformed URLs are caught early.
func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	fetcher := engine.NewHTTPFetcher()

	// Testing with a control character that makes URL parsing fail
	_, _, err := fetcher.Fetch(context.Background(), string([]byte{0x7f}), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrInvalidURL)
}

// TestHTTPFetcher_Fetch_ProtocolSecurity enforces HTTP/HTTPS only.
func TestHTTPFetcher_Fetch_ProtocolSecurity(t *testing.T) {
	fetcher := engine.NewHTTPFetcher()

	_, _, err := fetcher.Fetch(context.Background(), "ftp://example.com/patients.csv", "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrProtocol)
}

// TestHTTPFetcher_Fetch_SizeCap ensures oversized responses are truncated.
func TestHTTPFetcher_Fetch_SizeCap(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", config.MaxHTTPResponseSize+1024)))
	}))
	defer ts.Close()

	rc, _, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL+"/big.csv", "", "")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	n, err := io.Copy(io.Discard, rc)
	require.NoError(t, err)
	assert.EqualValues(t, config.MaxHTTPResponseSize, n)
}

// TestHTTPFetcher_Fetch_AnnouncedName verifies the decoder hint taken from the response headers.
func TestHTTPFetcher_Fetch_AnnouncedName(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		disposition string
		want        string
	}{
		{"Disposition filename", "application/octet-stream", `attachment; filename="patients.xlsx"`, "patients.xlsx"},
		{"Disposition wins over type", config.MimeCSV, `attachment; filename="export.xlsx"`, "export.xlsx"},
		{"Encoded filename", "", `attachment; filename*=UTF-8''%E7%97%85%E6%82%A3.csv`, "病患.csv"},
		{"Disposition path is dropped", "", `attachment; filename="../../etc/list.csv"`, "list.csv"},
		{"XLSX content type", config.MimeXLSX, "", "download.xlsx"},
		{"CSV with charset", "text/csv; charset=utf-8", "", "download.csv"},
		{"Legacy Excel", config.MimeXLS, "", "download.xls"},
		{"Unknown type", "application/octet-stream", "", ""},
		{"No headers", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set(config.HeaderContentType, tt.contentType)
				} else {
					// nil keeps net/http from sniffing a type.
					w.Header()[config.HeaderContentType] = nil
				}
				if tt.disposition != "" {
					w.Header().Set(config.HeaderContentDisp, tt.disposition)
				}
				_, _ = w.Write([]byte("data"))
			}))
			defer ts.Close()

			rc, name, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL+"/export?format=xlsx", "", "")
			require.NoError(t, err)
			defer func() { _ = rc.Close() }()

			assert.Equal(t, tt.want, name)
		})
	}
}
