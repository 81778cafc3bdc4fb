// listener.go -- Ephemeral loopback listener for the OAuth redirect.
//
// One Listener serves one login attempt. Listen binds the port and arms the deadline;
// the first matching redirect or the deadline settles the attempt and releases the socket.
// Wait blocks until then, or until ctx is cancelled.
package callback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	ErrBind           = errors.New("callback listener bind failed")
	ErrTimeout        = errors.New("no oauth callback received")
	ErrCancelled      = errors.New("login cancelled")
	ErrProviderDenied = errors.New("provider denied authorization")
)

// shutdownGrace bounds how long Close waits for the confirmation response to flush.
const shutdownGrace = 2 * time.Second

const confirmationPage = `<!doctype html><html><body><h2>Authentication complete. You may close this window.</h2></body></html>`

// Result is the redirect the provider sent back to the loopback listener.
type Result struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// ProviderError is returned by Wait when the redirect carried an error parameter.
type ProviderError struct {
	Code        string
	Description string
	State       string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s: %s", ErrProviderDenied, e.Code, e.Description)
	}
	return fmt.Sprintf("%s: %s", ErrProviderDenied, e.Code)
}

func (e *ProviderError) Unwrap() error { return ErrProviderDenied }

// Listener is a single-use HTTP endpoint waiting for one redirect on path.
type Listener struct {
	path     string
	deadline time.Time
	timer    *time.Timer
	ln       net.Listener
	srv      *http.Server

	settleOnce sync.Once
	settled    chan struct{}
	result     Result
	err        error

	closeOnce sync.Once
	closeErr  error
}

// Listen binds addr (e.g. "localhost:12345") and starts serving.
// The timeout runs from bind time whether or not anyone is in Wait yet: when it fires the
// attempt settles with ErrTimeout and the socket closes. A port already in use returns an
// error wrapping ErrBind.
func Listen(addr, path string, timeout time.Duration) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBind, addr, err)
	}

	l := &Listener{
		path:     path,
		deadline: time.Now().Add(timeout),
		ln:       ln,
		settled:  make(chan struct{}),
	}
	l.srv = &http.Server{
		Handler:           l.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// The callback must not touch l.timer; Close reads it.
	l.timer = time.AfterFunc(timeout, func() {
		if l.settle(Result{}, ErrTimeout) {
			slog.Debug("callback listener timed out", "addr", ln.Addr().String())
		}
		l.shutdown()
	})

	go func() {
		if err := l.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("callback listener stopped", "addr", ln.Addr().String(), "error", err)
		}
	}()

	slog.Debug("callback listener bound", "addr", ln.Addr().String(), "path", path, "timeout", timeout)
	return l, nil
}

// Addr returns the bound address; useful when Listen was given port 0.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Wait blocks until the attempt is settled and returns its result.
// Exactly one outcome wins: a matching redirect, the deadline (ErrTimeout) or ctx (ErrCancelled).
// The listener is closed before Wait returns. Later calls return the same outcome.
func (l *Listener) Wait(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithDeadline(ctx, l.deadline)
	defer cancel()

	select {
	case <-l.settled:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			l.settle(Result{}, ErrTimeout)
		} else {
			l.settle(Result{}, ErrCancelled)
		}
	}
	l.Close()
	return l.result, l.err
}

// Close stops the deadline timer and the server and releases the port.
// Safe to call more than once.
func (l *Listener) Close() error {
	l.timer.Stop()
	return l.shutdown()
}

func (l *Listener) shutdown() error {
	l.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := l.srv.Shutdown(ctx); err != nil {
			l.closeErr = fmt.Errorf("closing callback listener: %w", err)
			l.srv.Close()
		}
		slog.Debug("callback listener closed", "addr", l.ln.Addr().String())
	})
	return l.closeErr
}

// settle records the outcome once; reports whether this call won.
func (l *Listener) settle(res Result, err error) bool {
	won := false
	l.settleOnce.Do(func() {
		l.result, l.err = res, err
		won = true
		close(l.settled)
	})
	return won
}

func (l *Listener) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(l.path, l.handleCallback)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return r
}

// handleCallback accepts the first redirect on path and ignores anything after it.
func (l *Listener) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res := Result{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		Error:            q.Get("error"),
		ErrorDescription: q.Get("error_description"),
	}

	if time.Now().After(l.deadline) {
		l.settle(Result{}, ErrTimeout)
		l.gone(w)
		return
	}

	var err error
	if res.Error != "" {
		err = &ProviderError{Code: res.Error, Description: res.ErrorDescription, State: res.State}
	}

	if !l.settle(res, err) {
		// Attempt already timed out or another redirect got here first.
		l.gone(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(confirmationPage))

	// Shutdown waits for this handler to return, so it can't run inline.
	go l.Close()
}

func (l *Listener) gone(w http.ResponseWriter) {
	w.WriteHeader(http.StatusGone)
	w.Write([]byte("This login attempt has already finished."))
}
