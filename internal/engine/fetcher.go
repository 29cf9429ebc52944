package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"

	"github.com/tartampluch/go-refill/internal/config"
)

// SheetFetcher retrieves a patient list published over HTTP(S),
// e.g. a shared-drive CSV export or a WebDAV file.
//
// Besides the body, Fetch returns the file name the server announced
// (Content-Disposition, or a name derived from Content-Type), or "" when the
// response says nothing about its format.
type SheetFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, string, error)
}

// HTTPFetcher implements SheetFetcher using net/http.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with the configured timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
	}
}

// Fetch downloads the list. Query strings are stripped from logged URLs since
// shared links often carry access tokens. The body is capped at MaxHTTPResponseSize.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, string, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}

	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, "", fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", config.ErrRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, "", fmt.Errorf("%s: %d %s", config.ErrHTTPStatus, resp.StatusCode, resp.Status)
	}

	name := downloadName(resp.Header)
	log.Info(config.MsgFetchStart,
		slog.Int64(config.LogKeyLength, resp.ContentLength),
		slog.String(config.LogKeyFile, name),
	)

	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, config.MaxHTTPResponseSize),
		Closer: resp.Body,
	}, name, nil
}

// downloadName returns the file name announced by the response headers.
// A Content-Disposition filename wins over the Content-Type.
func downloadName(h http.Header) string {
	if _, params, err := mime.ParseMediaType(h.Get(config.HeaderContentDisp)); err == nil {
		if name := path.Base(params[config.ParamFilename]); name != "." && name != "/" {
			return name
		}
	}
	mediaType, _, err := mime.ParseMediaType(h.Get(config.HeaderContentType))
	if err != nil {
		return ""
	}
	if ext, ok := config.MimeExtensions[mediaType]; ok {
		return config.DownloadBaseName + ext
	}
	return ""
}

// limitedReadCloser keeps the connection closable while the read size is capped.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}
