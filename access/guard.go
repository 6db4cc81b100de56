// Package access holds the single role gate used by every protected view:
// fetch the current user, compare the role with the view's policy, and
// redirect on a mismatch.
package access

import (
	"context"
	"net/http"

	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/users"
	"github.com/rs/zerolog/log"
)

// Page routes the gate redirects to
const (
	RouteLogin        = "/login"
	RouteChooseRole   = "/choose-role"
	RouteGeneralHome  = "/dashboard"
	RouteProviderHome = "/provider"
	RouteAdminHome    = "/admin"
)

// Home returns the landing page for a role
func Home(role users.RoleType) string {
	switch role {
	case users.RoleAdmin:
		return RouteAdminHome
	case users.RoleProvider:
		return RouteProviderHome
	case users.RoleGeneral:
		return RouteGeneralHome
	default:
		return RouteChooseRole
	}
}

// UserSource yields the current user. api.Client.Me fits via UserSourceFunc.
type UserSource interface {
	CurrentUser(ctx context.Context) (*users.User, error)
}

type UserSourceFunc func(ctx context.Context) (*users.User, error)

func (f UserSourceFunc) CurrentUser(ctx context.Context) (*users.User, error) {
	return f(ctx)
}

// Policy describes who may see a view and where everybody else goes
type Policy struct {
	Allowed         []users.RoleType          // Empty means any authenticated user
	Redirects       map[users.RoleType]string // Per-role target on mismatch; defaults to Home(role)
	Unauthenticated string                    // Target when there is no live session
	Onboarding      string                    // Target for new users who have not chosen a role; empty skips the check
}

var (
	GeneralOnly = Policy{
		Allowed:         []users.RoleType{users.RoleGeneral},
		Unauthenticated: RouteLogin,
		Onboarding:      RouteChooseRole,
	}
	ProviderOnly = Policy{
		Allowed:         []users.RoleType{users.RoleProvider},
		Unauthenticated: RouteLogin,
		Onboarding:      RouteChooseRole,
	}
	AdminOnly = Policy{
		Allowed:         []users.RoleType{users.RoleAdmin},
		Unauthenticated: RouteLogin,
	}
	AnyUser = Policy{
		Unauthenticated: RouteLogin,
		Onboarding:      RouteChooseRole,
	}
	// Onboarded is for the role-selection page itself
	Onboarded = Policy{
		Unauthenticated: RouteLogin,
	}
)

// Decision is the outcome of a check. Exactly one of Allow or Redirect is set.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   string
	User     *users.User
}

type Guard struct {
	policy Policy
}

func NewGuard(policy Policy) *Guard {
	return &Guard{policy: policy}
}

func (g *Guard) Policy() Policy {
	return g.policy
}

// Check runs the gate once. Errors that mean "no session" become a redirect;
// anything else (the API being down) is returned.
func (g *Guard) Check(ctx context.Context, src UserSource) (Decision, error) {
	user, err := src.CurrentUser(ctx)
	if err != nil {
		if isNoSession(err) {
			return g.unauthenticated(), nil
		}
		return Decision{}, err
	}
	return g.Decide(user), nil
}

// Decide applies the policy to an already fetched user
func (g *Guard) Decide(user *users.User) Decision {
	if user == nil {
		return g.unauthenticated()
	}
	if g.policy.Onboarding != "" && user.NeedsOnboarding() {
		return Decision{Redirect: g.policy.Onboarding, Reason: "role not chosen", User: user}
	}
	if len(g.policy.Allowed) == 0 || user.HasRole(g.policy.Allowed...) {
		return Decision{Allow: true, User: user}
	}

	target := g.policy.Redirects[user.Role]
	if target == "" {
		target = Home(user.Role)
	}
	return Decision{Redirect: target, Reason: "role " + user.Role.String() + " not allowed", User: user}
}

func (g *Guard) unauthenticated() Decision {
	target := g.policy.Unauthenticated
	if target == "" {
		target = RouteLogin
	}
	return Decision{Redirect: target, Reason: "not authenticated"}
}

func isNoSession(err error) bool {
	return tmerrors.Is(err, tmerrors.ErrUnauthorized) ||
		tmerrors.Is(err, tmerrors.ErrForbidden) ||
		tmerrors.Is(err, tmerrors.ErrSessionExpired)
}

type contextKey string

const contextKeyUser contextKey = "user"

// UserFromContext returns the user stored by Middleware
func UserFromContext(ctx context.Context) *users.User {
	u, _ := ctx.Value(contextKeyUser).(*users.User)
	return u
}

// WithUser stores user in ctx
func WithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, contextKeyUser, user)
}

// Middleware gates an http.HandlerFunc. Allowed requests carry the user in
// their context; the rest are redirected.
func (g *Guard) Middleware(src UserSource) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			decision, err := g.Check(r.Context(), src)
			if err != nil {
				log.Err(err).Str("path", r.URL.Path).Msg("Access: failed to load current user")
				http.Error(w, "502 - Tripmate API unavailable", http.StatusBadGateway)
				return
			}
			if !decision.Allow {
				if decision.Redirect == r.URL.Path {
					http.Error(w, "403 - Forbidden", http.StatusForbidden)
					return
				}
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}
			next(w, r.WithContext(WithUser(r.Context(), decision.User)))
		}
	}
}
