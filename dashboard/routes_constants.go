package dashboard

import "github.com/jrsteele09/tripmate-client/access"

const (
	RouteIndex        = "/{$}"
	RouteLogin        = access.RouteLogin
	RouteLogout       = "/logout"
	RouteChooseRole   = access.RouteChooseRole
	RouteGeneralHome  = access.RouteGeneralHome
	RouteProviderHome = access.RouteProviderHome
	RouteAdminHome    = access.RouteAdminHome
	RouteTrips        = "/trips"
)
