package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-refill/internal/config"
)

// document is one rendered feed and its metadata for HTTP caching.
type document struct {
	data         []byte
	contentType  string
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// snapshot is the set of documents produced by one evaluation.
type snapshot struct {
	calendar *document
	contacts *document
}

// FeedServer serves the refill calendar and the due-today contact cards on localhost.
type FeedServer struct {
	// Reads are frequent and updates only happen after an evaluation,
	// so readers load the snapshot without locking.
	cache atomic.Pointer[snapshot]
	Port  string
}

// NewFeedServer creates a new instance of the server.
func NewFeedServer(port string) *FeedServer {
	return &FeedServer{
		Port: port,
	}
}

// Handler returns the routing table of the feed.
func (s *FeedServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleRoot)
	mux.HandleFunc(config.RouteCalendar, s.serve(func(sn *snapshot) *document { return sn.calendar }))
	mux.HandleFunc(config.RouteContacts, s.serve(func(sn *snapshot) *document { return sn.contacts }))
	return mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces both served documents.
func (s *FeedServer) Update(calendar, contacts []byte) {
	now := time.Now().UTC().Format(http.TimeFormat)

	sn := &snapshot{
		calendar: newDocument(calendar, config.MimeTextCalendar, now),
		contacts: newDocument(contacts, config.MimeTextVCard, now),
	}
	s.cache.Store(sn)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(calendar)+len(contacts),
		config.LogKeyETag, sn.calendar.etag,
	)
}

func newDocument(data []byte, contentType, lastModified string) *document {
	hash := sha256.Sum256(data)
	return &document{
		data:         data,
		contentType:  contentType,
		etag:         fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:])),
		lastModified: lastModified,
	}
}

// handleRoot serves the calendar on "/" and rejects every unknown path.
func (s *FeedServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != config.RouteRoot {
		http.NotFound(w, r)
		return
	}
	s.serve(func(sn *snapshot) *document { return sn.calendar })(w, r)
}

// serve returns a handler for the document pick selects, with HTTP caching support.
func (s *FeedServer) serve(pick func(*snapshot) *document) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set(config.HeaderAllow, config.AllowedMethods)
			http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
			return
		}

		sn := s.cache.Load()
		if sn == nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}
		doc := pick(sn)

		w.Header().Set(config.HeaderContentType, doc.contentType)
		w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
		w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
		w.Header().Set(config.HeaderETag, doc.etag)
		w.Header().Set(config.HeaderLastModified, doc.lastModified)

		if match := r.Header.Get(config.HeaderIfNoneMatch); match == doc.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
			if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
				if serverTime, err := time.Parse(http.TimeFormat, doc.lastModified); err == nil {
					if !serverTime.After(clientTime) {
						w.WriteHeader(http.StatusNotModified)
						return
					}
				}
			}
		}

		if r.Method == http.MethodGet {
			if _, err := io.Copy(w, bytes.NewReader(doc.data)); err != nil {
				slog.Error(config.ErrWriteResp,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyError, err,
				)
			}
		}
	}
}
