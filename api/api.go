// Package api adapts the HTTP transport onto the exchange dispatcher.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"exgate/config"
	"exgate/exchange"
)

// API holds the dependencies needed by the exchange HTTP handler.
type API struct {
	settings *config.Settings
	handler  exchange.Handler
}

// New creates a new API instance over the given protocol handler.
func New(settings *config.Settings, handler exchange.Handler) *API {
	return &API{settings: settings, handler: handler}
}

// Router returns a chi.Router with the exchange endpoint mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/exchange", a.Exchange)
	r.Post("/exchange", a.Exchange)
	return r
}

// Exchange handles one protocol call. The transport contract is in-band:
// every recoverable failure is an HTTP 200 with a failure body.
func (a *API) Exchange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := exchange.Request{
		Type:      q.Get("type"),
		Mode:      q.Get("mode"),
		Filename:  q.Get("filename"),
		CSRFToken: q.Get(a.settings.CSRFParamName),
	}
	if username, password, ok := r.BasicAuth(); ok {
		req.Credentials = exchange.Credentials{Username: username, Password: password}
	}
	if cookie, err := r.Cookie(a.settings.SessionCookieName); err == nil {
		req.SessionID = cookie.Value
	}

	if r.Body != nil {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.settings.FileSizeLimit))
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeResult(w, exchange.Failure(fmt.Sprintf("File size limit of %d bytes exceeded.", a.settings.FileSizeLimit)))
				return
			}
			writeResult(w, exchange.Failure("Internal server error."))
			return
		}
		if len(body) > 0 {
			req.Body = body
		}
	}

	res := a.handler.Handle(r.Context(), req)

	// A successful checkauth names the cookie and the session id on its
	// second and third lines; set the cookie so the partner's client can
	// carry it on subsequent calls.
	if exchange.Mode(req.Mode) == exchange.ModeCheckAuth && res.OK() && len(res.Lines) >= 3 {
		writeSessionCookie(w, r, res.Lines[1], res.Lines[2])
	}
	writeResult(w, res)
}

func writeResult(w http.ResponseWriter, res exchange.Result) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, res.Text())
}

func writeSessionCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}
