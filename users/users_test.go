package users_test

import (
	"encoding/json"
	"testing"

	tmerrors "github.com/jrsteele09/tripmate-client/internal/errors"
	"github.com/jrsteele09/tripmate-client/users"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Run("known roles", func(t *testing.T) {
		for _, in := range []string{"general", "provider", "admin", " Provider "} {
			_, err := users.ParseRole(in)
			require.NoError(t, err, in)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := users.ParseRole("superuser")
		require.ErrorIs(t, err, tmerrors.ErrInvalidRole)
	})
}

func TestRoleSelectable(t *testing.T) {
	require.True(t, users.RoleGeneral.Selectable())
	require.True(t, users.RoleProvider.Selectable())
	require.False(t, users.RoleAdmin.Selectable())
}

func TestUserFromMePayload(t *testing.T) {
	var u users.User
	err := json.Unmarshal([]byte(`{"role":"provider","auth_type":"google","is_new_user":true}`), &u)
	require.NoError(t, err)

	require.True(t, u.IsProvider())
	require.False(t, u.IsAdmin())
	require.True(t, u.IsFederated())
	require.True(t, u.NeedsOnboarding())
	require.True(t, u.HasRole(users.RoleGeneral, users.RoleProvider))
}

func TestNilUser(t *testing.T) {
	var u *users.User
	require.False(t, u.HasRole(users.RoleAdmin))
	require.False(t, u.IsFederated())
	require.Empty(t, u.DisplayName())
}

func TestDisplayName(t *testing.T) {
	u := &users.User{Email: "ana@example.com"}
	require.Equal(t, "ana@example.com", u.DisplayName())
	u.Name = "Ana"
	require.Equal(t, "Ana", u.DisplayName())
}
