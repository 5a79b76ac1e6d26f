package identity

import (
	"testing"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		user, err := NewUser("maria", "María López", "s3cret-pass", cashdrawer.RoleManager)
		require.NoError(t, err)
		assert.True(t, user.IsActive())
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
		assert.True(t, user.VerifyPassword("s3cret-pass"))
		assert.False(t, user.VerifyPassword("wrong"))
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("maria", "", "short", cashdrawer.RoleManager)
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("maria", "", "s3cret-pass", cashdrawer.Role("ADMIN"))
		assert.Error(t, err)
	})
}

func TestSupervisorCode(t *testing.T) {
	t.Run("manager sets and verifies code", func(t *testing.T) {
		user, err := NewUser("maria", "", "s3cret-pass", cashdrawer.RoleManager)
		require.NoError(t, err)
		require.NoError(t, user.SetSupervisorCode("4821"))
		assert.True(t, user.VerifySupervisorCode("4821"))
		assert.False(t, user.VerifySupervisorCode("0000"))
	})

	t.Run("cashier cannot hold a code", func(t *testing.T) {
		user, err := NewUser("pepe", "", "s3cret-pass", cashdrawer.RoleCashier)
		require.NoError(t, err)
		assert.Error(t, user.SetSupervisorCode("4821"))
	})

	t.Run("verification without a code fails", func(t *testing.T) {
		user, err := NewUser("maria", "", "s3cret-pass", cashdrawer.RoleManager)
		require.NoError(t, err)
		assert.False(t, user.VerifySupervisorCode("4821"))
	})
}

func TestDeactivate(t *testing.T) {
	user, err := NewUser("maria", "", "s3cret-pass", cashdrawer.RoleManager)
	require.NoError(t, err)
	user.Deactivate()
	assert.False(t, user.IsActive())
}
