package dashboard

import (
	"net/http"

	"github.com/jrsteele09/tripmate-client/access"
	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/users"
	"github.com/rs/zerolog/log"
)

// IndexHandler sends the user to the home page of their role
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := access.UserFromContext(r.Context())
		http.Redirect(w, r, access.Home(user.Role), http.StatusSeeOther)
	}
}

// HomeHandler renders a role's landing page
func (s *Server) HomeHandler(title string) http.HandlerFunc {
	tmpl := mustParseTemplate("home.html")
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, tmpl, http.StatusOK, PageData{
			Title: title,
			User:  access.UserFromContext(r.Context()),
		})
	}
}

func (s *Server) TripsHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("trips.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := PageData{Title: "Trips", User: access.UserFromContext(r.Context())}

		trips, err := s.backend.ListTrips(r.Context())
		switch {
		case err == nil:
			data.Trips = trips
		case tmerrors.Is(err, tmerrors.ErrNotFound):
			// No trips yet
		case tmerrors.Is(err, tmerrors.ErrSessionExpired):
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		default:
			log.Err(err).Msg("Dashboard: failed to list trips")
			data.Error = msgAPIUnavailable
			render(w, tmpl, http.StatusBadGateway, data)
			return
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

// ChooseRolePageHandler renders the onboarding form. Users who already
// have a role go straight home.
func (s *Server) ChooseRolePageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("choose_role.html")
	return func(w http.ResponseWriter, r *http.Request) {
		user := access.UserFromContext(r.Context())
		if !user.NeedsOnboarding() {
			http.Redirect(w, r, access.Home(user.Role), http.StatusSeeOther)
			return
		}
		render(w, tmpl, http.StatusOK, chooseRoleData(user, ""))
	}
}

func (s *Server) ChooseRoleSubmissionHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("choose_role.html")
	return func(w http.ResponseWriter, r *http.Request) {
		user := access.UserFromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			http.Error(w, "400 - Bad Request", http.StatusBadRequest)
			return
		}

		resp, err := s.backend.ChooseRole(r.Context(), users.RoleType(r.PostFormValue("role")))
		switch {
		case err == nil:
		case tmerrors.Is(err, tmerrors.ErrInvalidRole), tmerrors.Is(err, tmerrors.ErrRoleNotSelectable):
			render(w, tmpl, http.StatusBadRequest, chooseRoleData(user, "Please choose one of the listed roles"))
			return
		case tmerrors.Is(err, tmerrors.ErrSessionExpired), tmerrors.Is(err, tmerrors.ErrUnauthorized):
			http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
			return
		default:
			log.Err(err).Msg("Dashboard: failed to choose role")
			render(w, tmpl, http.StatusBadGateway, chooseRoleData(user, msgAPIUnavailable))
			return
		}

		if !resp.OK {
			render(w, tmpl, http.StatusOK, chooseRoleData(user, resp.Message))
			return
		}

		updated, err := s.backend.Me(r.Context())
		if err != nil {
			log.Err(err).Msg("Dashboard: failed to reload user after choosing role")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, access.Home(updated.Role), http.StatusSeeOther)
	}
}

func chooseRoleData(user *users.User, errMsg string) PageData {
	var roles []users.RoleType
	for _, role := range users.Roles {
		if role.Selectable() {
			roles = append(roles, role)
		}
	}
	return PageData{Title: "Choose your role", User: user, Error: errMsg, Roles: roles}
}
