package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/susnata2002/ai-scheduling-bot/internal/auth"
	"github.com/susnata2002/ai-scheduling-bot/internal/requests"
	"github.com/susnata2002/ai-scheduling-bot/internal/scheduling"
)

//go:embed templates/*.html
var fs embed.FS

// Orchestrator is the scheduling workflow the web layer drives.
type Orchestrator interface {
	Initiate(ctx context.Context, candidateEmail, recruiterEmail string) (int64, error)
	Ingest(ctx context.Context, id int64, replyText string) error
}

var _ Orchestrator = (*scheduling.Service)(nil)

type Server struct {
	Auth     *auth.Store
	Requests *requests.Repo
	Sched    Orchestrator

	BaseURL string
}

type tmplData struct {
	Title string
	User  int64

	Flash    string
	Requests []requests.Request
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	// Inbound-email webhook: unauthenticated by design, correlation runs
	// on the subject tag and unknown requests are dropped.
	mux.HandleFunc("/hooks/email", s.handleInboundEmail)

	mux.Handle("/", s.Auth.RequireAuth(http.HandlerFunc(s.handleHome)))
	mux.Handle("/requests/new", s.Auth.RequireAuth(http.HandlerFunc(s.handleRequestNew)))
	mux.Handle("/requests/create", s.Auth.RequireAuth(http.HandlerFunc(s.handleRequestCreate)))

	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	reqs, err := s.Requests.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.render(w, "templates/requests.html", tmplData{
		Title:    "Scheduling Requests",
		User:     uid,
		Requests: reqs,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "templates/login.html", tmplData{Title: "Login"})
		return
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")
		id, err := s.Auth.Authenticate(r.Context(), username, password)
		if err != nil {
			s.render(w, "templates/login.html", tmplData{Title: "Login", Flash: "Invalid username/password"})
			return
		}
		if err := s.Auth.SetSession(w, r, id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleRequestNew(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	s.render(w, "templates/new_request.html", tmplData{
		Title: "New Request",
		User:  uid,
	})
}

func (s *Server) handleRequestCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	candidate := strings.TrimSpace(r.FormValue("candidate_email"))
	recruiter := strings.TrimSpace(r.FormValue("recruiter_email"))

	id, err := s.Sched.Initiate(r.Context(), candidate, recruiter)
	if err != nil {
		if id != 0 {
			// record exists, only the ask email failed
			slog.Error("availability ask failed after create", "request_id", id, "error", err)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		s.render(w, "templates/new_request.html", tmplData{Title: "New Request", Flash: err.Error()})
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Subject tag of every outbound mail, echoed back by reply threads.
var requestTagRe = regexp.MustCompile(`Request #(\d+)`)

// handleInboundEmail receives the email provider's inbound-parse
// webhook (form fields "subject" and "text"). It always answers 200:
// the provider retries non-2xx responses and a reply we cannot use now
// will not get better on redelivery.
func (s *Server) handleInboundEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	subject := r.FormValue("subject")
	text := r.FormValue("text")

	if m := requestTagRe.FindStringSubmatch(subject); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil {
			if err := s.Sched.Ingest(r.Context(), id, text); err != nil {
				slog.Error("ingest failed", "request_id", id, "error", err)
			}
		}
	} else {
		slog.Info("inbound email without request tag dropped", "subject", subject)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) render(w http.ResponseWriter, name string, data tmplData) {
	t, err := template.ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	slog.Info("listening", "addr", addr)
	return srv.ListenAndServe()
}
