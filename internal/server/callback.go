package server

import (
	"context"
	"html/template"
	"net/http"
	"sync"

	"github.com/desertthunder/spotstats/internal/models"
)

// LoginCompleter finishes a pending authorization from the provider's redirect.
type LoginCompleter interface {
	CompleteLogin(ctx context.Context, callbackURL string) (models.Token, error)
}

// CallbackResult is the outcome of a single authorization callback.
type CallbackResult struct {
	Token models.Token
	err   error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler accepts exactly one redirect from the provider and reports it on [CallbackHandler.Result].
//
// Implements the [Handler] interface for registration with a [Router].
type CallbackHandler struct {
	login       LoginCompleter
	path        string
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// CallbackPath normalizes a redirect URI path into a route. Empty and "/" mean "/callback".
func CallbackPath(path string) string {
	if path == "" || path == "/" {
		return "/callback"
	}
	return path
}

// NewCallbackHandler creates a handler that completes the login started by login.BeginLogin.
// path is the redirect URI's path, see [CallbackPath].
func NewCallbackHandler(login LoginCompleter, path string) *CallbackHandler {
	return &CallbackHandler{
		login:      login,
		path:       CallbackPath(path),
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"GET " + h.path}
}

// ServeHTTP validates the callback and exchanges its code, sending the result through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	token, err := h.login.CompleteLogin(r.Context(), r.URL.String())
	h.Send(CallbackResult{Token: token, err: err})

	if err != nil {
		renderCallbackPage(w, http.StatusBadRequest, callbackPage{
			Title:   "Authorization Failed",
			Message: err.Error(),
			Color:   "#e22134",
		})
		return
	}

	renderCallbackPage(w, http.StatusOK, callbackPage{
		Title:   "Authorization Successful",
		Message: "You can close this window and return to the terminal.",
		Color:   "#1DB954",
	})
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}

type callbackPage struct {
	Title   string
	Message string
	Color   string
}

var callbackTmpl = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: {{.Color}}; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <p>{{.Message}}</p>
    </div>
</body>
</html>
`))

func renderCallbackPage(w http.ResponseWriter, status int, page callbackPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = callbackTmpl.Execute(w, page)
}
