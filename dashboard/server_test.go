package dashboard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/jrsteele09/tripmate-client/api"
	"github.com/jrsteele09/tripmate-client/dashboard"
	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/users"
	"github.com/stretchr/testify/require"
)

type testConfig struct{}

func (testConfig) GetAppName() string { return "Tripmate" }
func (testConfig) GetAPIBaseURL() string { return "http://api.invalid" }
func (testConfig) GetDashboardAddr() string { return ":0" }
func (testConfig) GetLogLevel() string { return "debug" }
func (testConfig) GetEnv() string { return "TEST" }

type fakeBackend struct {
	lock sync.Mutex

	user     *users.User
	meErr    error
	loginErr error
	trips    []api.Trip
	tripsErr error
	choose   *users.ChooseRoleResponse

	chosen      users.RoleType
	logoutCalls int
}

var _ dashboard.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) Login(_ context.Context, email, password string) (*users.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &users.User{Email: email, Role: users.RoleProvider}
	return f.user, nil
}

func (f *fakeBackend) Logout(context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.logoutCalls++
	f.user = nil
	return nil
}

func (f *fakeBackend) Me(context.Context) (*users.User, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	if f.user == nil {
		return nil, &api.HTTPError{StatusCode: http.StatusUnauthorized, RefreshFailed: true}
	}
	u := *f.user
	return &u, nil
}

func (f *fakeBackend) ChooseRole(_ context.Context, role users.RoleType) (*users.ChooseRoleResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if !role.Selectable() {
		return nil, tmerrors.ErrRoleNotSelectable
	}
	if f.choose != nil && !f.choose.OK {
		return f.choose, nil
	}
	f.chosen = role
	f.user.Role = role
	f.user.IsNewUser = false
	return &users.ChooseRoleResponse{Message: "ok", OK: true}, nil
}

func (f *fakeBackend) ListTrips(context.Context) ([]api.Trip, error) {
	return f.trips, f.tripsErr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndexRedirectsByRole(t *testing.T) {
	tests := []struct {
		name     string
		user     *users.User
		location string
	}{
		{"signed out", nil, dashboard.RouteLogin},
		{"general", &users.User{Role: users.RoleGeneral}, dashboard.RouteGeneralHome},
		{"provider", &users.User{Role: users.RoleProvider}, dashboard.RouteProviderHome},
		{"admin", &users.User{Role: users.RoleAdmin}, dashboard.RouteAdminHome},
		{"new user", &users.User{IsNewUser: true}, dashboard.RouteChooseRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := dashboard.New(testConfig{}, &fakeBackend{user: tt.user})
			rec := get(t, s, "/")
			require.Equal(t, http.StatusSeeOther, rec.Code)
			require.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestRoleHomesAreGated(t *testing.T) {
	backend := &fakeBackend{user: &users.User{Email: "p@example.com", Role: users.RoleProvider}}
	s := dashboard.New(testConfig{}, backend)

	rec := get(t, s, dashboard.RouteProviderHome)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Provider dashboard")
	require.Contains(t, rec.Body.String(), "p@example.com")
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))

	rec = get(t, s, dashboard.RouteAdminHome)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, dashboard.RouteProviderHome, rec.Header().Get("Location"))

	rec = get(t, s, dashboard.RouteGeneralHome)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, dashboard.RouteProviderHome, rec.Header().Get("Location"))
}

func TestAPIUnavailable(t *testing.T) {
	s := dashboard.New(testConfig{}, &fakeBackend{meErr: tmerrors.ErrRetriesExhausted})
	rec := get(t, s, dashboard.RouteGeneralHome)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLogin(t *testing.T) {
	t.Run("page", func(t *testing.T) {
		s := dashboard.New(testConfig{}, &fakeBackend{})
		rec := get(t, s, dashboard.RouteLogin+"?error=Nope&email=a%40example.com")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Nope")
		require.Contains(t, rec.Body.String(), `value="a@example.com"`)
	})

	t.Run("success", func(t *testing.T) {
		backend := &fakeBackend{}
		s := dashboard.New(testConfig{}, backend)
		rec := postForm(t, s, dashboard.RouteLogin, url.Values{"email": {"p@example.com"}, "password": {"pw"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, dashboard.RouteProviderHome, rec.Header().Get("Location"))
	})

	t.Run("rejected", func(t *testing.T) {
		backend := &fakeBackend{loginErr: &api.HTTPError{StatusCode: http.StatusUnauthorized}}
		s := dashboard.New(testConfig{}, backend)
		rec := postForm(t, s, dashboard.RouteLogin, url.Values{"email": {"p@example.com"}, "password": {"bad"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)

		loc, err := url.Parse(rec.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, dashboard.RouteLogin, loc.Path)
		require.Equal(t, "Invalid email or password", loc.Query().Get("error"))
		require.Equal(t, "p@example.com", loc.Query().Get("email"))
	})
}

func TestChooseRole(t *testing.T) {
	t.Run("form lists selectable roles only", func(t *testing.T) {
		s := dashboard.New(testConfig{}, &fakeBackend{user: &users.User{IsNewUser: true}})
		rec := get(t, s, dashboard.RouteChooseRole)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		require.Contains(t, body, `value="general"`)
		require.Contains(t, body, `value="provider"`)
		require.NotContains(t, body, `value="admin"`)
	})

	t.Run("user with a role goes home", func(t *testing.T) {
		s := dashboard.New(testConfig{}, &fakeBackend{user: &users.User{Role: users.RoleGeneral}})
		rec := get(t, s, dashboard.RouteChooseRole)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, dashboard.RouteGeneralHome, rec.Header().Get("Location"))
	})

	t.Run("submit", func(t *testing.T) {
		backend := &fakeBackend{user: &users.User{IsNewUser: true}}
		s := dashboard.New(testConfig{}, backend)
		rec := postForm(t, s, dashboard.RouteChooseRole, url.Values{"role": {"provider"}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, dashboard.RouteProviderHome, rec.Header().Get("Location"))
		require.Equal(t, users.RoleProvider, backend.chosen)
	})

	t.Run("admin refused", func(t *testing.T) {
		s := dashboard.New(testConfig{}, &fakeBackend{user: &users.User{IsNewUser: true}})
		rec := postForm(t, s, dashboard.RouteChooseRole, url.Values{"role": {"admin"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejected by server", func(t *testing.T) {
		backend := &fakeBackend{
			user:   &users.User{IsNewUser: true},
			choose: &users.ChooseRoleResponse{Message: "role already chosen", OK: false},
		}
		s := dashboard.New(testConfig{}, backend)
		rec := postForm(t, s, dashboard.RouteChooseRole, url.Values{"role": {"general"}})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "role already chosen")
	})
}

func TestTrips(t *testing.T) {
	user := &users.User{Email: "g@example.com", Role: users.RoleGeneral}

	t.Run("listed", func(t *testing.T) {
		backend := &fakeBackend{user: user, trips: []api.Trip{{ID: "1", Title: "Lisbon weekend", Destination: "Lisbon"}}}
		rec := get(t, dashboard.New(testConfig{}, backend), dashboard.RouteTrips)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "Lisbon weekend")
	})

	t.Run("none", func(t *testing.T) {
		backend := &fakeBackend{user: user, tripsErr: &api.HTTPError{StatusCode: http.StatusNotFound}}
		rec := get(t, dashboard.New(testConfig{}, backend), dashboard.RouteTrips)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "No trips yet.")
	})

	t.Run("api down", func(t *testing.T) {
		backend := &fakeBackend{user: user, tripsErr: tmerrors.ErrRetriesExhausted}
		rec := get(t, dashboard.New(testConfig{}, backend), dashboard.RouteTrips)
		require.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	backend := &fakeBackend{user: &users.User{Role: users.RoleGeneral}}
	s := dashboard.New(testConfig{}, backend)

	rec := postForm(t, s, dashboard.RouteLogout, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, dashboard.RouteLogin, rec.Header().Get("Location"))
	require.Equal(t, 1, backend.logoutCalls)

	rec = get(t, s, dashboard.RouteGeneralHome)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, dashboard.RouteLogin, rec.Header().Get("Location"))
}

func TestRoutesRegistered(t *testing.T) {
	s := dashboard.New(testConfig{}, &fakeBackend{})
	require.Contains(t, s.Routes(), "GET "+dashboard.RouteTrips)
	require.Contains(t, s.Routes(), "POST "+dashboard.RouteChooseRole)
}

func TestRecoverMiddleware(t *testing.T) {
	s := dashboard.New(testConfig{}, &fakeBackend{})

	t.Run("panic before writing", func(t *testing.T) {
		h := dashboard.ChainMiddleware(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}, s.HTMLMiddleWare()...)
		rec := get(t, h, "/anything")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "500 - Internal Server Error")
	})

	t.Run("panic after writing", func(t *testing.T) {
		h := dashboard.ChainMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("partial"))
			panic("boom")
		}, s.HTMLMiddleWare()...)
		rec := get(t, h, "/anything")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "partial", rec.Body.String())
	})
}
