package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/db"
)

func setupAddressTest(t *testing.T) (*gorm.DB, AddressRepository, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	user := &model.User{Name: "Khách", Email: "khach@example.com", PasswordHash: "h"}
	require.NoError(t, testDB.Create(user).Error)

	return testDB, NewAddressRepository(testDB), user
}

func TestAddressRepository_SetDefaultKeepsExactlyOne(t *testing.T) {
	testDB, repo, user := setupAddressTest(t)

	a := model.Address{UserID: user.ID, Recipient: "A", Phone: "0912345678", Street: "1 Lê Lợi", City: "Hà Nội", IsDefault: true}
	b := model.Address{UserID: user.ID, Recipient: "B", Phone: "0912345679", Street: "2 Trần Phú", City: "Đà Nẵng"}
	require.NoError(t, repo.Create(&a))
	require.NoError(t, repo.Create(&b))

	require.NoError(t, repo.SetDefault(user.ID, b.ID))

	var defaults int64
	require.NoError(t, testDB.Model(&model.Address{}).
		Where("user_id = ? AND is_default = ?", user.ID, true).
		Count(&defaults).Error)
	assert.Equal(t, int64(1), defaults)

	def, err := repo.FindDefault(user.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, def.ID)
}

func TestAddressRepository_SetDefaultIgnoresOtherUsers(t *testing.T) {
	testDB, repo, user := setupAddressTest(t)

	other := &model.User{Name: "Khác", Email: "khac@example.com", PasswordHash: "h"}
	require.NoError(t, testDB.Create(other).Error)

	mine := model.Address{UserID: user.ID, Recipient: "A", Phone: "0912345678", Street: "1 Lê Lợi", City: "Hà Nội"}
	theirs := model.Address{UserID: other.ID, Recipient: "B", Phone: "0912345679", Street: "2 Trần Phú", City: "Huế", IsDefault: true}
	require.NoError(t, repo.Create(&mine))
	require.NoError(t, repo.Create(&theirs))

	// setting someone else's address as my default must not take effect
	require.NoError(t, repo.SetDefault(user.ID, theirs.ID))

	_, err := repo.FindDefault(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	refreshed, err := repo.FindByID(theirs.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.IsDefault)
}

func TestAddressRepository_FindByUserIDOrdering(t *testing.T) {
	_, repo, user := setupAddressTest(t)

	a := model.Address{UserID: user.ID, Recipient: "A", Phone: "0912345678", Street: "1 Lê Lợi", City: "Hà Nội"}
	b := model.Address{UserID: user.ID, Recipient: "B", Phone: "0912345679", Street: "2 Trần Phú", City: "Đà Nẵng", IsDefault: true}
	require.NoError(t, repo.Create(&a))
	require.NoError(t, repo.Create(&b))

	got, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID, "default address comes first")
}
