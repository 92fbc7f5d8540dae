package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/db"
)

func setupCartTest(t *testing.T) (*gorm.DB, CartRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB, NewCartRepository(testDB)
}

func TestCartRepository_LoadMissingCart(t *testing.T) {
	_, repo := setupCartTest(t)

	cart, err := repo.Load(42)
	require.NoError(t, err)
	assert.NotNil(t, cart)
	assert.Equal(t, 0, cart.Count())
}

func TestCartRepository_SaveLoadRoundTrip(t *testing.T) {
	_, repo := setupCartTest(t)

	cart := model.Cart{"5::M": 2, "7": 1}
	require.NoError(t, repo.Save(42, cart))

	loaded, err := repo.Load(42)
	require.NoError(t, err)
	assert.Equal(t, cart, loaded)
}

func TestCartRepository_SaveUpsertsSingleRow(t *testing.T) {
	testDB, repo := setupCartTest(t)

	require.NoError(t, repo.Save(42, model.Cart{"1": 1}))
	require.NoError(t, repo.Save(42, model.Cart{"2": 5}))

	var count int64
	require.NoError(t, testDB.Model(&model.CartRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	loaded, err := repo.Load(42)
	require.NoError(t, err)
	assert.Equal(t, model.Cart{"2": 5}, loaded)
}

func TestCartRepository_CorruptPayloadResets(t *testing.T) {
	testDB, repo := setupCartTest(t)

	record := model.CartRecord{UserID: 42, Items: "{broken"}
	require.NoError(t, testDB.Create(&record).Error)

	cart, err := repo.Load(42)
	require.NoError(t, err)
	assert.Equal(t, 0, cart.Count())
}

func TestCartRepository_DeleteStale(t *testing.T) {
	testDB, repo := setupCartTest(t)

	require.NoError(t, repo.Save(1, model.Cart{"1": 1}))
	require.NoError(t, repo.Save(2, model.Cart{"2": 2}))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, testDB.Model(&model.CartRecord{}).
		Where("user_id = ?", uint(1)).
		Update("updated_at", old).Error)

	n, err := repo.DeleteStale(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	kept, err := repo.Load(2)
	require.NoError(t, err)
	assert.Equal(t, model.Cart{"2": 2}, kept)
}
