package gormdb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/student-registry/registry-api/internal/core/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(context.Background(), Config{DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", name)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	byName, err := repo.FindByIdentifier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := repo.FindByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByIdentifier(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, "999")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UniqueUsernameAndEmail(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.User{Username: "bob", Email: "bob@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Username: "bob", Email: "other@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = repo.Create(ctx, &domain.User{Username: "robert", Email: "bob@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "nobody", "bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail(ctx, "nobody", "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_ConcurrentCreateSameUsername(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(context.Background(), &domain.User{
				Username:     "carol",
				Email:        fmt.Sprintf("carol%d@example.com", i),
				PasswordHash: "h",
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrUserExists)
	}
	assert.Equal(t, 1, successes)
}

func TestStudentRepository_CreateAndList(t *testing.T) {
	repo := NewStudentRepository(openTestDB(t))
	ctx := context.Background()

	for _, regNo := range []string{"2023/001", "2023/002"} {
		_, err := repo.Create(ctx, &domain.Student{
			RegistrationNumber: regNo,
			FirstName:          "Ada",
			LastName:           "Lovelace",
			AdmissionNumber:    "ADM-" + regNo,
			PhotoURL:           "https://img.example.com/" + domain.PhotoKey(regNo),
		})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2023/001", list[0].RegistrationNumber)
	assert.Equal(t, "2023/002", list[1].RegistrationNumber)
	assert.Equal(t, "https://img.example.com/students/2023_001", list[0].PhotoURL)
	assert.NotEmpty(t, list[0].ID)
}

func TestStudentRepository_DuplicateRegistrationNumber(t *testing.T) {
	repo := NewStudentRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Student{RegistrationNumber: "2023/010"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Student{RegistrationNumber: "2023/010"})
	assert.ErrorIs(t, err, domain.ErrStudentExists)
}

func TestStudentRepository_EmptyList(t *testing.T) {
	repo := NewStudentRepository(openTestDB(t))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDialectorFor(t *testing.T) {
	_, isSQLite := dialectorFor("postgres://u:p@localhost:5432/db")
	assert.False(t, isSQLite)
	_, isSQLite = dialectorFor("postgresql://localhost/db")
	assert.False(t, isSQLite)
	_, isSQLite = dialectorFor("sqlite:///students.db")
	assert.True(t, isSQLite)
	_, isSQLite = dialectorFor("students.db")
	assert.True(t, isSQLite)
}
