package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gdb) })
	return NewStore(gdb)
}

func TestLoadUnknownTokenYieldsEmptySession(t *testing.T) {
	store := setupStore(t)

	data, err := store.Load("no-such-token")
	require.NoError(t, err)
	assert.NotNil(t, data.Cart)
	assert.Equal(t, 0, data.Cart.Count())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := setupStore(t)
	token := NewToken()

	data := model.SessionData{Cart: model.Cart{"5::M": 2, "7": 1}}
	data.StripeSessionID = "cs_test_1"
	require.NoError(t, store.Save(token, data))

	loaded, err := store.Load(token)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Cart["5::M"])
	assert.Equal(t, 1, loaded.Cart["7"])
	assert.Equal(t, "cs_test_1", loaded.StripeSessionID)
}

func TestSaveOverwritesExisting(t *testing.T) {
	store := setupStore(t)
	token := NewToken()

	require.NoError(t, store.Save(token, model.SessionData{Cart: model.Cart{"1": 1}}))
	require.NoError(t, store.Save(token, model.SessionData{Cart: model.Cart{"2": 3}}))

	loaded, err := store.Load(token)
	require.NoError(t, err)
	assert.Equal(t, model.Cart{"2": 3}, loaded.Cart)
}

func TestDelete(t *testing.T) {
	store := setupStore(t)
	token := NewToken()

	require.NoError(t, store.Save(token, model.SessionData{Cart: model.Cart{"1": 1}}))
	require.NoError(t, store.Delete(token))

	loaded, err := store.Load(token)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Cart.Count())
}

func TestPruneExpired(t *testing.T) {
	store := setupStore(t)

	live := model.Session{Token: NewToken(), ExpiresAt: time.Now().Add(time.Hour)}
	dead := model.Session{Token: NewToken(), ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, store.db.Create(&live).Error)
	require.NoError(t, store.db.Create(&dead).Error)

	n, err := store.PruneExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var count int64
	require.NoError(t, store.db.Model(&model.Session{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
