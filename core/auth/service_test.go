package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/auth"
	filedb "github.com/trezcool/registre/storage/database/file"
	"github.com/trezcool/registre/testutil"
)

func setup(t *testing.T, conf core.AuthConfig) *auth.Gateway {
	dir := t.TempDir()
	teachers, err := filedb.NewTeacherRepository(dir, testutil.StoreOptions())
	require.NoError(t, err)
	owner, err := filedb.NewOwnerRepository(dir, testutil.StoreOptions())
	require.NoError(t, err)
	return auth.NewGateway(teachers, owner, conf)
}

func TestGateway_OwnerLogin(t *testing.T) {
	for _, hash := range []bool{false, true} {
		gw := setup(t, core.AuthConfig{HashPasswords: hash})
		ctx := context.Background()

		ok, err := gw.OwnerLogin(ctx, "owner", "123")
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, gw.UpdateOwnerCredentials(ctx, "root", "xyz"))

		ok, err = gw.OwnerLogin(ctx, "owner", "123")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = gw.OwnerLogin(ctx, "root", "xyz")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestGateway_UpdateOwnerCredentials_invalid(t *testing.T) {
	gw := setup(t, core.AuthConfig{})
	err := gw.UpdateOwnerCredentials(context.Background(), "  ", "xyz")
	assert.True(t, core.IsValidationError(err))
}

func TestGateway_Login(t *testing.T) {
	gw := setup(t, core.AuthConfig{OwnerUsername: "boss", OwnerPassword: "secret"})

	tests := []struct {
		name               string
		role, uname, pwd   string
		wantErr            error
		wantTeacherSubject string
	}{
		{name: "owner", role: auth.RoleOwner, uname: "boss", pwd: "secret"},
		{name: "owner bad password", role: auth.RoleOwner, uname: "boss", pwd: "123", wantErr: auth.ErrInvalidCredentials},
		{name: "teacher", role: auth.RoleTeacher, uname: "math_teacher", pwd: "123", wantTeacherSubject: "Math"},
		{name: "teacher bad password", role: auth.RoleTeacher, uname: "math_teacher", pwd: "1234", wantErr: auth.ErrInvalidCredentials},
		{name: "unknown teacher", role: auth.RoleTeacher, uname: "nobody", pwd: "123", wantErr: auth.ErrInvalidCredentials},
		{name: "teacher username is case-sensitive", role: auth.RoleTeacher, uname: "Math_Teacher", pwd: "123", wantErr: auth.ErrInvalidCredentials},
		{name: "unknown role", role: "janitor", uname: "x", pwd: "y", wantErr: auth.ErrUnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := gw.Login(context.Background(), tt.role, tt.uname, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, p.Role)
			assert.Equal(t, tt.uname, p.Username)
			if tt.role == auth.RoleOwner {
				assert.True(t, p.IsOwner())
				assert.Nil(t, p.Teacher)
			} else {
				require.NotNil(t, p.Teacher)
				assert.Equal(t, tt.wantTeacherSubject, p.Teacher.Subject)
			}
		})
	}
}
