package dashboard

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/tripmate-client/access"
	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	msgInvalidLogin   = "Invalid email or password"
	msgAPIUnavailable = "Tripmate is unavailable, please try again"
)

// LoginPageHandler renders the sign-in form
func (s *Server) LoginPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("login.html")
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		render(w, tmpl, http.StatusOK, PageData{
			Title: "Sign in",
			Error: q.Get("error"),
			Email: q.Get("email"),
		})
	}
}

// LoginSubmissionHandler signs in and sends the user to their home page
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "400 - Bad Request", http.StatusBadRequest)
			return
		}
		email := r.PostFormValue("email")

		user, err := s.backend.Login(r.Context(), email, r.PostFormValue("password"))
		if err != nil {
			msg := msgAPIUnavailable
			if tmerrors.Is(err, tmerrors.ErrUnauthorized) || tmerrors.Is(err, tmerrors.ErrForbidden) {
				msg = msgInvalidLogin
			} else {
				log.Err(err).Msg("Dashboard: login failed")
			}
			http.Redirect(w, r, loginURL(msg, email), http.StatusSeeOther)
			return
		}

		if user.NeedsOnboarding() {
			http.Redirect(w, r, RouteChooseRole, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, access.Home(user.Role), http.StatusSeeOther)
	}
}

// LogoutHandler ends the session locally even when the API call fails
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.backend.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Dashboard: logout did not complete cleanly")
		}
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

func loginURL(msg, email string) string {
	q := url.Values{}
	q.Set("error", msg)
	if email != "" {
		q.Set("email", email)
	}
	return RouteLogin + "?" + q.Encode()
}
