package teacher_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/registre/core"
	"github.com/trezcool/registre/core/teacher"
	filedb "github.com/trezcool/registre/storage/database/file"
	"github.com/trezcool/registre/testutil"
)

func setup(t *testing.T, pwds core.Passwords) (*teacher.Service, teacher.Repository) {
	repo, err := filedb.NewTeacherRepository(t.TempDir(), testutil.StoreOptions())
	require.NoError(t, err)
	return teacher.NewService(repo, pwds), repo
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t, core.Passwords{})

	tests := []struct {
		name      string
		nt        teacher.NewTeacher
		wantValid bool
	}{
		{name: "missing fields", nt: teacher.NewTeacher{}},
		{name: "invalid username", nt: teacher.NewTeacher{Username: "art-teacher", Password: "1", Subject: "Art"}},
		{name: "username taken", nt: teacher.NewTeacher{Username: "math_teacher", Password: "1", Subject: "Art"}},
		{name: "valid", nt: teacher.NewTeacher{Username: " art_teacher ", Password: "pwd", Subject: " Art "}, wantValid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tchr, err := svc.Create(ctx, tt.nt)
			if !tt.wantValid {
				assert.True(t, core.IsValidationError(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, teacher.Teacher{Username: "art_teacher", Password: "pwd", Subject: "Art"}, tchr)

			stored, err := repo.GetTeacher(ctx, "art_teacher")
			require.NoError(t, err)
			assert.Equal(t, tchr, stored)
		})
	}
}

func TestService_Create_hashed(t *testing.T) {
	ctx := context.Background()
	svc, repo := setup(t, core.Passwords{Hash: true})

	_, err := svc.Create(ctx, teacher.NewTeacher{Username: "art_teacher", Password: "pwd", Subject: "Art"})
	require.NoError(t, err)

	stored, err := repo.GetTeacher(ctx, "art_teacher")
	require.NoError(t, err)
	assert.NotEqual(t, "pwd", stored.Password)
	assert.True(t, core.Passwords{}.Match(stored.Password, "pwd"))
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, core.Passwords{})

	_, err := svc.Update(ctx, "ghost", teacher.UpdateTeacher{Subject: "Art"})
	assert.Equal(t, teacher.ErrNotFound, err)

	// empty fields keep their value
	tchr, err := svc.Update(ctx, "math_teacher", teacher.UpdateTeacher{})
	require.NoError(t, err)
	assert.Equal(t, teacher.Teacher{Username: "math_teacher", Password: "123", Subject: "Math"}, tchr)

	tchr, err = svc.Update(ctx, "math_teacher", teacher.UpdateTeacher{Password: "456", Subject: "Algebra"})
	require.NoError(t, err)
	assert.Equal(t, "Algebra", tchr.Subject)

	// keys are trimmed like in GetByUsername
	tchr, err = svc.Update(ctx, " math_teacher ", teacher.UpdateTeacher{Subject: "Algebra"})
	require.NoError(t, err)
	assert.Equal(t, "math_teacher", tchr.Username)

	got, err := svc.GetByUsername(ctx, " math_teacher ")
	require.NoError(t, err)
	assert.Equal(t, tchr, got)
	assert.True(t, got.Teaches("ALGEBRA"))
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t, core.Passwords{})

	require.NoError(t, svc.Delete(ctx, " math_teacher "))
	require.NoError(t, svc.Delete(ctx, "math_teacher"))

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "science_teacher", all[0].Username)
}
