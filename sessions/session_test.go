package sessions_test

import (
	"net/http"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/sessions"
	"github.com/jrsteele09/tripmate-client/sessions/memrepo"
	"github.com/jrsteele09/tripmate-client/users"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	t.Run("jwt access credential", func(t *testing.T) {
		got, err := sessions.ExpiryFromJWT(signedToken(t, exp))
		require.NoError(t, err)
		require.True(t, exp.Equal(got))
	})

	t.Run("opaque access credential", func(t *testing.T) {
		_, err := sessions.ExpiryFromJWT("opaque-token")
		require.Error(t, err)
		creds := sessions.NewCredentials("opaque-token", "r")
		require.True(t, creds.Expiry.IsZero())
		require.True(t, creds.Valid())
	})

	t.Run("expired jwt is not valid", func(t *testing.T) {
		creds := sessions.NewCredentials(signedToken(t, time.Now().Add(-time.Minute)), "r")
		require.False(t, creds.Valid())
	})
}

func TestSessionLifecycle(t *testing.T) {
	repo := memrepo.New()
	s := sessions.New(repo)
	require.Equal(t, sessions.StateInit, s.State())

	user := &users.User{Email: "ana@example.com", Role: users.RoleGeneral}
	creds := sessions.NewCredentials(signedToken(t, time.Now().Add(time.Hour)), "refresh-1")

	require.NoError(t, s.Authenticate(creds, user))
	require.Equal(t, sessions.StateAuthenticated, s.State())
	require.Equal(t, users.RoleGeneral, s.User().Role)

	stored, err := repo.Load()
	require.NoError(t, err)
	require.Equal(t, creds.Access, stored.Access)

	s.Expire()
	require.Equal(t, sessions.StateExpired, s.State())
	require.NotNil(t, s.Credentials(), "expired session keeps credentials for refresh")

	require.NoError(t, s.Replace(&sessions.Credentials{Access: "access-2"}))
	require.Equal(t, sessions.StateAuthenticated, s.State())
	require.Equal(t, "refresh-1", s.Credentials().Refresh, "refresh credential carried over")

	require.NoError(t, s.Clear())
	require.Equal(t, sessions.StateCleared, s.State())
	require.Nil(t, s.User())
	require.Nil(t, s.Credentials())
	_, err = repo.Load()
	require.ErrorIs(t, err, tmerrors.ErrNoCredentials)

	s.Expire()
	require.Equal(t, sessions.StateCleared, s.State(), "expire does not resurrect a cleared session")
}

func TestSessionUserIsCopied(t *testing.T) {
	s := sessions.New(nil)
	u := &users.User{Role: users.RoleProvider}
	s.SetUser(u)
	u.Role = users.RoleAdmin

	got := s.User()
	require.Equal(t, users.RoleProvider, got.Role)
	got.Role = users.RoleGeneral
	require.Equal(t, users.RoleProvider, s.User().Role)
	require.Equal(t, sessions.StateAuthenticated, s.State())
}

func TestRestore(t *testing.T) {
	t.Run("nothing stored", func(t *testing.T) {
		s := sessions.New(memrepo.New())
		require.NoError(t, s.Restore())
		require.Equal(t, sessions.StateInit, s.State())
	})

	t.Run("valid credentials", func(t *testing.T) {
		repo := memrepo.New()
		require.NoError(t, repo.Save(sessions.NewCredentials(signedToken(t, time.Now().Add(time.Hour)), "r")))
		s := sessions.New(repo)
		require.NoError(t, s.Restore())
		require.Equal(t, sessions.StateAuthenticated, s.State())
	})

	t.Run("expired credentials", func(t *testing.T) {
		repo := memrepo.New()
		require.NoError(t, repo.Save(sessions.NewCredentials(signedToken(t, time.Now().Add(-time.Hour)), "r")))
		s := sessions.New(repo)
		require.NoError(t, s.Restore())
		require.Equal(t, sessions.StateExpired, s.State())
	})
}

func TestAuthorize(t *testing.T) {
	s := sessions.New(nil)
	req, err := http.NewRequest(http.MethodGet, "http://api.test/me/", nil)
	require.NoError(t, err)

	require.NoError(t, s.Authorize(req))
	require.Empty(t, req.Header.Get("Authorization"), "cookie-only session sends no bearer")

	require.NoError(t, s.Authenticate(sessions.NewCredentials("access-1", ""), nil))
	require.NoError(t, s.Authorize(req))
	require.Equal(t, "Bearer access-1", req.Header.Get("Authorization"))

	require.NoError(t, s.Replace(sessions.NewCredentials(signedToken(t, time.Now().Add(-time.Hour)), "")))
	req.Header.Del("Authorization")
	require.NoError(t, s.Authorize(req))
	require.Empty(t, req.Header.Get("Authorization"), "expired bearer is not sent")
}

func TestStateString(t *testing.T) {
	require.Equal(t, "init", sessions.StateInit.String())
	require.Equal(t, "authenticated", sessions.StateAuthenticated.String())
	require.Equal(t, "expired", sessions.StateExpired.String())
	require.Equal(t, "cleared", sessions.StateCleared.String())
}
