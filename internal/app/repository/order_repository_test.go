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

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	repo := NewOrderRepository(testDB)

	user := &model.User{
		Email:        "khach@example.com",
		PasswordHash: "hash",
		Name:         "Khách Hàng",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	product := &model.Product{
		Title:    "Áo thun basic",
		Price:    150000,
		Category: "Áo",
		Stock:    20,
	}
	testDB.Create(product)

	return testDB, repo, user, product
}

func TestOrderRepository_CreateWithItems(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	order := &model.Order{
		UserID: user.ID,
		Total:  300000,
		Status: model.OrderStatusPaid,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Quantity: 2, Price: 150000, Option: "M"},
		},
	}

	err := repo.Create(order)
	assert.NoError(t, err)
	assert.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	require.Len(t, found.OrderItems, 1)
	assert.Equal(t, "M", found.OrderItems[0].Option)
	assert.Equal(t, int64(150000), found.OrderItems[0].Price)
	assert.Equal(t, "Áo thun basic", found.OrderItems[0].Product.Title)
	assert.Equal(t, "Khách Hàng", found.User.Name)
}

func TestOrderRepository_SnapshotPriceSurvivesPriceChange(t *testing.T) {
	testDB, repo, user, product := setupOrderTest(t)

	order := &model.Order{
		UserID: user.ID,
		Total:  150000,
		Status: model.OrderStatusPaid,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Quantity: 1, Price: 150000},
		},
	}
	require.NoError(t, repo.Create(order))

	require.NoError(t, testDB.Model(product).Update("price", 999000).Error)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), found.OrderItems[0].Price)
}

func TestOrderRepository_RecentByUserID(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	for i := 0; i < 7; i++ {
		order := &model.Order{
			UserID: user.ID,
			Total:  150000,
			Status: model.OrderStatusPaid,
			OrderItems: []model.OrderItem{
				{ProductID: product.ID, Quantity: 1, Price: 150000},
			},
		}
		require.NoError(t, repo.Create(order))
	}

	recent, err := repo.RecentByUserID(user.ID, 5)
	require.NoError(t, err)
	assert.Len(t, recent, 5)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	order := &model.Order{
		UserID: user.ID,
		Total:  150000,
		Status: model.OrderStatusPending,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Quantity: 1, Price: 150000},
		},
	}
	require.NoError(t, repo.Create(order))

	require.NoError(t, repo.UpdateStatus(order.ID, model.OrderStatusShipped))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, found.Status)
}

func TestOrderRepository_DeleteRemovesItems(t *testing.T) {
	testDB, repo, user, product := setupOrderTest(t)

	order := &model.Order{
		UserID: user.ID,
		Total:  150000,
		Status: model.OrderStatusPending,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Quantity: 1, Price: 150000},
		},
	}
	require.NoError(t, repo.Create(order))
	require.NoError(t, repo.Delete(order.ID))

	var itemCount int64
	require.NoError(t, testDB.Model(&model.OrderItem{}).Where("order_id = ?", order.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestOrderRepository_SalesSinceExcludesCancelled(t *testing.T) {
	_, repo, user, product := setupOrderTest(t)

	paid := &model.Order{
		UserID: user.ID,
		Total:  300000,
		Status: model.OrderStatusPaid,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Quantity: 2, Price: 150000},
		},
	}
	require.NoError(t, repo.Create(paid))

	cancelled := &model.Order{
		UserID: user.ID,
		Total:  750000,
		Status: model.OrderStatusCancelled,
		OrderItems: []model.OrderItem{
			{ProductID: product.ID, Quantity: 5, Price: 150000},
		},
	}
	require.NoError(t, repo.Create(cancelled))

	rows, err := repo.SalesSince(time.Now().Add(-24*time.Hour), 50)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, product.ID, rows[0].ProductID)
	assert.Equal(t, int64(2), rows[0].TotalQty)
	assert.Equal(t, int64(300000), rows[0].Revenue)
}
