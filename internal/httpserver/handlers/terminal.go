package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/form"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"

	"github.com/MrSnakeDoc/portfolio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/portfolio/internal/httpserver/mw"
	"github.com/MrSnakeDoc/portfolio/internal/logger"
	"github.com/MrSnakeDoc/portfolio/internal/terminal"
	"github.com/MrSnakeDoc/portfolio/internal/terminal/session"
)

const (
	// TerminalCookieName carries the signed terminal session id.
	TerminalCookieName = "portfolio_terminal"
	sessionIDKey       = "id"
	maxFormBytes       = 16 << 10
)

type terminalRequest struct {
	Input string `form:"input"`
}

type terminalResponse struct {
	Lines []string `json:"lines"`
}

// TerminalExec runs one command line in the caller's session and returns
// the session output.
func TerminalExec(d deps.Deps) http.HandlerFunc {
	decoder := form.NewDecoder()
	validate := validator.New(validator.WithRequiredStructEnabled())
	inputRule := "max=" + strconv.Itoa(d.TerminalMaxInput)

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}

		var req terminalRequest
		if err := decoder.Decode(&req, r.PostForm); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form")
			return
		}
		if err := validate.Var(req.Input, inputRule); err != nil {
			writeError(w, http.StatusBadRequest, "input too long")
			return
		}

		sess, err := terminalSession(w, r, d)
		if err != nil {
			d.Logger.Error("failed to save terminal session cookie", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "session unavailable")
			return
		}
		mw.Annotate(r.Context(), logger.String("session", sess.ID))

		var lines []string
		err = sess.Exec(func(buf *terminal.RingBuffer) error {
			defer func() { lines = buf.Lines() }()
			return d.Dispatcher.Dispatch(r.Context(), terminal.NewContext(req.Input, buf))
		})
		if err != nil {
			d.Logger.Error("terminal command failed",
				logger.String("session", sess.ID),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "command failed")
			return
		}

		writeJSON(w, http.StatusOK, terminalResponse{Lines: lines})
	}
}

// TerminalLines returns the caller's session output without running
// anything. Unknown sessions have no output.
func TerminalLines(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lines := []string{}
		if sess, ok := existingSession(r, d); ok {
			mw.Annotate(r.Context(), logger.String("session", sess.ID))
			_ = sess.Exec(func(buf *terminal.RingBuffer) error {
				lines = buf.Lines()
				return nil
			})
		}
		writeJSON(w, http.StatusOK, terminalResponse{Lines: lines})
	}
}

// TerminalClear empties the caller's session output.
func TerminalClear(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := existingSession(r, d); ok {
			mw.Annotate(r.Context(), logger.String("session", sess.ID))
			_ = sess.Exec(func(buf *terminal.RingBuffer) error {
				buf.Clear()
				return nil
			})
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// TerminalRateKey keys the terminal rate limiter by live session, so
// visitors sharing an address (NAT, office proxy) get their own budget. A
// missing, forged or expired cookie returns "" and the limiter falls back
// to the client IP, which is also the bucket that pays for creating a
// session.
func TerminalRateKey(d deps.Deps) func(*http.Request) string {
	return func(r *http.Request) string {
		sess, ok := existingSession(r, d)
		if !ok {
			return ""
		}
		return "session:" + sess.ID
	}
}

func cookieSessionID(r *http.Request, store sessions.Store) (*sessions.Session, string) {
	// A tampered or expired cookie yields a fresh session and an error.
	cookie, _ := store.Get(r, TerminalCookieName)
	id, _ := cookie.Values[sessionIDKey].(string)
	if !session.ValidID(id) {
		id = ""
	}
	return cookie, id
}

func existingSession(r *http.Request, d deps.Deps) (*session.Session, bool) {
	_, id := cookieSessionID(r, d.SessionCookies)
	if id == "" {
		return nil, false
	}
	return d.Sessions.Get(id)
}

// terminalSession returns the caller's session, creating it and setting
// the cookie when needed.
func terminalSession(w http.ResponseWriter, r *http.Request, d deps.Deps) (*session.Session, error) {
	cookie, id := cookieSessionID(r, d.SessionCookies)

	sess, created := d.Sessions.GetOrCreate(id)
	if !created {
		return sess, nil
	}

	d.Metrics.SessionsChanged(d.Sessions.Len())
	cookie.Values[sessionIDKey] = sess.ID
	if err := cookie.Save(r, w); err != nil {
		return nil, err
	}
	return sess, nil
}
