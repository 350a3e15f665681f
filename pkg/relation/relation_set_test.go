package relation

import (
	"context"
	"testing"

	"CookShare-Backend/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&entities.Favorite{}, &entities.Subscription{}))
	return db
}

func newFavoriteSet(db *gorm.DB) *Set[entities.Favorite] {
	return NewSet(db, "user_id", "recipe_id", false, func(subject, target uuid.UUID) entities.Favorite {
		return entities.Favorite{ID: uuid.New(), UserID: subject, RecipeID: target}
	})
}

func newSubscriptionSet(db *gorm.DB) *Set[entities.Subscription] {
	return NewSet(db, "user_id", "author_id", true, func(subject, target uuid.UUID) entities.Subscription {
		return entities.Subscription{ID: uuid.New(), UserID: subject, AuthorID: target}
	})
}

func TestSetAddThenAddFails(t *testing.T) {
	db := newTestDB(t)
	set := newFavoriteSet(db)
	ctx := context.Background()
	user, recipe := uuid.New(), uuid.New()

	require.NoError(t, set.Add(ctx, user, recipe))
	err := set.Add(ctx, user, recipe)
	assert.ErrorIs(t, err, ErrAlreadyPresent)

	present, err := set.Contains(ctx, user, recipe)
	require.NoError(t, err)
	assert.True(t, present)
}

func TestSetRemoveAbsentPairFails(t *testing.T) {
	db := newTestDB(t)
	set := newFavoriteSet(db)
	ctx := context.Background()
	user, recipe := uuid.New(), uuid.New()

	err := set.Remove(ctx, user, recipe)
	assert.ErrorIs(t, err, ErrNotPresent)

	require.NoError(t, set.Add(ctx, user, recipe))
	require.NoError(t, set.Remove(ctx, user, recipe))
	err = set.Remove(ctx, user, recipe)
	assert.ErrorIs(t, err, ErrNotPresent)
}

func TestSetAddRemoveLeavesNoTrace(t *testing.T) {
	db := newTestDB(t)
	set := newFavoriteSet(db)
	ctx := context.Background()
	user, recipe := uuid.New(), uuid.New()

	require.NoError(t, set.Add(ctx, user, recipe))
	require.NoError(t, set.Remove(ctx, user, recipe))

	present, err := set.Contains(ctx, user, recipe)
	require.NoError(t, err)
	assert.False(t, present)

	// the pair behaves as if it was never added
	require.NoError(t, set.Add(ctx, user, recipe))
}

func TestSetPairsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	set := newFavoriteSet(db)
	ctx := context.Background()
	user, other := uuid.New(), uuid.New()
	recipe := uuid.New()

	require.NoError(t, set.Add(ctx, user, recipe))
	require.NoError(t, set.Add(ctx, other, recipe))

	targets, err := set.Targets(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{recipe}, targets)
}

func TestSubscriptionSelfReferenceAlwaysFails(t *testing.T) {
	db := newTestDB(t)
	set := newSubscriptionSet(db)
	ctx := context.Background()
	user := uuid.New()

	assert.ErrorIs(t, set.Add(ctx, user, user), ErrSelfReference)

	// prior state does not matter
	require.NoError(t, set.Add(ctx, user, uuid.New()))
	assert.ErrorIs(t, set.Add(ctx, user, user), ErrSelfReference)
}

func TestSubscriptionPairAllowedBothDirections(t *testing.T) {
	db := newTestDB(t)
	set := newSubscriptionSet(db)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	require.NoError(t, set.Add(ctx, a, b))
	require.NoError(t, set.Add(ctx, b, a))
	assert.ErrorIs(t, set.Add(ctx, a, b), ErrAlreadyPresent)
}
