package repository_test

import (
	"context"
	"testing"
	"time"

	"course-marketplace/internal/model"
	"course-marketplace/internal/repository"
	"course-marketplace/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCourseRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewCourseRepository(db)

	testutil.SeedCourse(t, db, "c1", "a1", 500)
	testutil.SeedCourse(t, db, "c2", "a1", 900)

	course, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(500), course.Price)
	assert.Equal(t, "courses/c1", course.Image.PublicID)

	_, err = repo.FindByID(ctx, "missing")
	assert.True(t, repository.IsNotFound(err))

	exists, err := repo.Exists(ctx, "c2")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	many, err := repo.FindMany(ctx, []string{"c1", "c2", "missing"})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	none, err := repo.FindMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCourseRepository_OwnerGuard(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewCourseRepository(db)
	testutil.SeedCourse(t, db, "c1", "a1", 500)

	updated, err := repo.UpdateOwned(ctx, "c1", "a2", map[string]interface{}{"title": "stolen"})
	require.NoError(t, err)
	assert.False(t, updated)

	updated, err = repo.UpdateOwned(ctx, "c1", "a1", map[string]interface{}{"title": "Renamed"})
	require.NoError(t, err)
	assert.True(t, updated)

	course, err := repo.FindByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", course.Title)

	_, err = repo.DeleteOwned(ctx, "c1", "a2")
	assert.True(t, repository.IsNotFound(err))

	deleted, err := repo.DeleteOwned(ctx, "c1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "c1", deleted.ID)

	exists, err := repo.Exists(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPurchaseRepository_UniquePairAndOrdering(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewPurchaseRepository(db)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testutil.SeedPurchase(t, db, "p-b", "u1", "c2", base.Add(time.Minute))
	testutil.SeedPurchase(t, db, "p-a", "u1", "c1", base)
	testutil.SeedPurchase(t, db, "p-c", "u2", "c1", base)

	err := repo.Create(ctx, db, &model.Purchase{ID: "p-dup", UserID: "u1", CourseID: "c1"})
	assert.True(t, repository.IsDuplicateError(err), "got %v", err)

	owned, err := repo.Exists(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = repo.Exists(ctx, "u2", "c2")
	require.NoError(t, err)
	assert.False(t, owned)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].CourseID)
	assert.Equal(t, "c2", list[1].CourseID)

	empty, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestPurchaseRepository_CreateRollsBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	purchases := repository.NewPurchaseRepository(db)
	orders := repository.NewOrderRepository(db)

	testutil.SeedPurchase(t, db, "p1", "u1", "c1", time.Now())

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := orders.Create(ctx, tx, &model.Order{ID: "o1", UserID: "u1", CourseID: "c1"}); err != nil {
			return err
		}
		return purchases.Create(ctx, tx, &model.Purchase{ID: "p2", UserID: "u1", CourseID: "c1"})
	})
	require.Error(t, err)

	count, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCheckoutRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewCheckoutRepository(db)

	first := &model.Checkout{ID: "k1", UserID: "u1", CourseID: "c1", Provider: "stripe", AuthorizationID: "pi_1", Amount: 500, Currency: "usd"}
	require.NoError(t, repo.CreateAuthorized(ctx, first))
	assert.Equal(t, model.CheckoutAuthorized, first.State)

	open, err := repo.HasOpen(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.True(t, open)

	second := &model.Checkout{ID: "k2", UserID: "u1", CourseID: "c1", Provider: "stripe", AuthorizationID: "pi_2", Amount: 500, Currency: "usd"}
	err = repo.CreateAuthorized(ctx, second)
	assert.True(t, repository.IsDuplicateError(err), "got %v", err)

	now := time.Now()
	confirmed, err := repo.Confirm(ctx, db, "u1", "c1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), confirmed)

	stored, err := repo.GetByID(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, model.CheckoutConfirmed, stored.State)
	assert.Nil(t, stored.ActiveKey)
	require.NotNil(t, stored.ConfirmedAt)

	open, err = repo.HasOpen(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.False(t, open)

	confirmed, err = repo.Confirm(ctx, db, "u1", "c1", now)
	require.NoError(t, err)
	assert.Zero(t, confirmed)
}

func TestCheckoutRepository_ExpireStale(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewCheckoutRepository(db)

	stale := &model.Checkout{ID: "old", UserID: "u1", CourseID: "c1", Provider: "stripe", Amount: 500, Currency: "usd"}
	fresh := &model.Checkout{ID: "new", UserID: "u1", CourseID: "c2", Provider: "stripe", Amount: 500, Currency: "usd"}
	require.NoError(t, repo.CreateAuthorized(ctx, stale))
	require.NoError(t, repo.CreateAuthorized(ctx, fresh))
	require.NoError(t, db.Model(&model.Checkout{}).Where("id = ?", "old").
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	expired, err := repo.ExpireStale(ctx, time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	stored, err := repo.GetByID(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, model.CheckoutExpired, stored.State)
	assert.Nil(t, stored.ActiveKey)

	open, err := repo.HasOpen(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.False(t, open)

	open, err = repo.HasOpen(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.True(t, open)

	expired, err = repo.ExpireStale(ctx, time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestAccountRepository_RolesAreSeparate(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	users := repository.NewAccountRepository(db, model.RoleUser)
	admins := repository.NewAccountRepository(db, model.RoleAdmin)

	account := &model.Account{ID: "id1", FirstName: "Alice", LastName: "Smith", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, account))

	dup := &model.Account{ID: "id2", FirstName: "Alice", LastName: "Smith", Email: "alice@example.com", PasswordHash: "hash"}
	err := users.Create(ctx, dup)
	assert.True(t, repository.IsDuplicateError(err), "got %v", err)

	require.NoError(t, admins.Create(ctx, dup))

	found, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "id1", found.ID)

	found, err = admins.FindByID(ctx, "id2")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", found.Email)

	_, err = admins.FindByID(ctx, "id1")
	assert.True(t, repository.IsNotFound(err))
}
