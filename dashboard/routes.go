package dashboard

import (
	"net/http"

	"github.com/jrsteele09/tripmate-client/access"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare(s.gate(access.AnyUser))...))

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Onboarding
	s.RegisterRouteFunc("GET "+RouteChooseRole, ChainMiddleware(s.ChooseRolePageHandler(), s.HTMLMiddleWare(s.gate(access.Onboarded))...))
	s.RegisterRouteFunc("POST "+RouteChooseRole, ChainMiddleware(s.ChooseRoleSubmissionHandler(), s.HTMLMiddleWare(s.gate(access.Onboarded))...))

	// Role homes
	s.RegisterRouteFunc("GET "+RouteGeneralHome, ChainMiddleware(s.HomeHandler("Traveller dashboard"), s.HTMLMiddleWare(s.gate(access.GeneralOnly))...))
	s.RegisterRouteFunc("GET "+RouteProviderHome, ChainMiddleware(s.HomeHandler("Provider dashboard"), s.HTMLMiddleWare(s.gate(access.ProviderOnly))...))
	s.RegisterRouteFunc("GET "+RouteAdminHome, ChainMiddleware(s.HomeHandler("Admin dashboard"), s.HTMLMiddleWare(s.gate(access.AdminOnly))...))

	s.RegisterRouteFunc("GET "+RouteTrips, ChainMiddleware(s.TripsHandler(), s.HTMLMiddleWare(s.gate(access.AnyUser))...))
}

// gate is the one role check every protected page goes through
func (s *Server) gate(policy access.Policy) func(http.HandlerFunc) http.HandlerFunc {
	return access.NewGuard(policy).Middleware(s.users)
}
