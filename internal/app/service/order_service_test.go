package service

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/config"
	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/internal/db"
	"github.com/minhvo/tiemao-backend/pkg/mailer"
)

type orderFixture struct {
	db      *gorm.DB
	svc     OrderService
	user    *model.User
	shirt   *model.Product
	sweater *model.Product
}

func setupOrderService(t *testing.T) *orderFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	orderRepo := repository.NewOrderRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)

	svc := NewOrderService(orderRepo, productRepo, cartRepo, addressRepo, userRepo,
		mailer.New(config.SMTPConfig{}), nil)

	user := &model.User{Name: "Khách", Email: "khach@example.com", PasswordHash: "h"}
	require.NoError(t, testDB.Create(user).Error)

	shirt := &model.Product{Title: "Áo thun basic", Price: 150000, Category: "Áo", Stock: 20}
	sweater := &model.Product{Title: "Áo len mùa đông", Price: 350000, Category: "Áo mùa đông", Stock: 8}
	require.NoError(t, testDB.Create(shirt).Error)
	require.NoError(t, testDB.Create(sweater).Error)

	return &orderFixture{db: testDB, svc: svc, user: user, shirt: shirt, sweater: sweater}
}

func (f *orderFixture) key(p *model.Product, option string) string {
	return model.EncodeLineKey(strconv.FormatUint(uint64(p.ID), 10), option)
}

func TestCheckoutSnapshotsPricesAndClearsCart(t *testing.T) {
	f := setupOrderService(t)

	cart := model.Cart{
		f.key(f.shirt, "M"):  2,
		f.key(f.sweater, ""): 1,
	}
	cartRepo := repository.NewCartRepository(f.db)
	require.NoError(t, cartRepo.Save(f.user.ID, cart))

	order, err := f.svc.Checkout(f.user.ID, cart, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
	assert.Equal(t, int64(2*150000+350000), order.Total)
	require.Len(t, order.OrderItems, 2)

	// the persisted cart is cleared
	saved, err := cartRepo.Load(f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, saved.Count())
}

func TestCheckoutDropsMissingProducts(t *testing.T) {
	f := setupOrderService(t)

	cart := model.Cart{
		f.key(f.shirt, ""): 1,
		"99999":            3,
	}

	order, err := f.svc.Checkout(f.user.ID, cart, nil)
	require.NoError(t, err)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, f.shirt.ID, order.OrderItems[0].ProductID)
	assert.Equal(t, int64(150000), order.Total)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := setupOrderService(t)

	_, err := f.svc.Checkout(f.user.ID, model.Cart{}, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = f.svc.Checkout(f.user.ID, model.Cart{"99999": 1}, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutAttachesCompleteAddress(t *testing.T) {
	f := setupOrderService(t)

	addr := &model.CheckoutAddress{
		Recipient: "Nguyễn Văn A",
		Phone:     "0912345678",
		Street:    "1 Lê Lợi",
		City:      "Hà Nội",
		Postcode:  "100000",
	}
	order, err := f.svc.Checkout(f.user.ID, model.Cart{f.key(f.shirt, ""): 1}, addr)
	require.NoError(t, err)
	require.NotNil(t, order.AddressID)

	var saved model.Address
	require.NoError(t, f.db.First(&saved, *order.AddressID).Error)
	assert.Equal(t, "Nguyễn Văn A", saved.Recipient)
	assert.Equal(t, f.user.ID, saved.UserID)
}

func TestCheckoutIgnoresIncompleteAddress(t *testing.T) {
	f := setupOrderService(t)

	addr := &model.CheckoutAddress{Recipient: "A", Phone: "0912345678"}
	order, err := f.svc.Checkout(f.user.ID, model.Cart{f.key(f.shirt, ""): 1}, addr)
	require.NoError(t, err)
	assert.Nil(t, order.AddressID)
}

func TestBuyNow(t *testing.T) {
	f := setupOrderService(t)

	order, err := f.svc.BuyNow(f.user.ID, f.sweater.ID, 0, "L")
	require.NoError(t, err)
	assert.Equal(t, int64(350000), order.Total, "zero quantity defaults to one")
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, "L", order.OrderItems[0].Option)

	_, err = f.svc.BuyNow(f.user.ID, 99999, 1, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCancelOrderRules(t *testing.T) {
	f := setupOrderService(t)

	order, err := f.svc.BuyNow(f.user.ID, f.shirt.ID, 1, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelOrder(f.user.ID, order.ID))

	// cancelled is terminal
	assert.ErrorIs(t, f.svc.CancelOrder(f.user.ID, order.ID), ErrOrderTerminal)

	shipped, err := f.svc.BuyNow(f.user.ID, f.shirt.ID, 1, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.UpdateStatus(shipped.ID, model.OrderStatusShipped))
	assert.ErrorIs(t, f.svc.CancelOrder(f.user.ID, shipped.ID), ErrOrderTerminal)
}

func TestCancelOrderOwnershipEnforced(t *testing.T) {
	f := setupOrderService(t)

	other := &model.User{Name: "Khác", Email: "khac@example.com", PasswordHash: "h"}
	require.NoError(t, f.db.Create(other).Error)

	order, err := f.svc.BuyNow(f.user.ID, f.shirt.ID, 1, "")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.CancelOrder(other.ID, order.ID), ErrOrderNotFound)
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := setupOrderService(t)

	order, err := f.svc.BuyNow(f.user.ID, f.shirt.ID, 1, "")
	require.NoError(t, err)

	// paid -> pending is not allowed
	assert.ErrorIs(t, f.svc.UpdateStatus(order.ID, model.OrderStatusPending), ErrBadTransition)

	assert.ErrorIs(t, f.svc.UpdateStatus(order.ID, "unknown"), ErrInvalidOrderState)

	require.NoError(t, f.svc.UpdateStatus(order.ID, model.OrderStatusShipped))

	// shipped is terminal
	assert.ErrorIs(t, f.svc.UpdateStatus(order.ID, model.OrderStatusCancelled), ErrBadTransition)
}

func TestCancelledOrdersAreLocked(t *testing.T) {
	f := setupOrderService(t)

	order, err := f.svc.BuyNow(f.user.ID, f.shirt.ID, 1, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.CancelOrder(f.user.ID, order.ID))

	assert.ErrorIs(t, f.svc.UpdateStatus(order.ID, model.OrderStatusShipped), ErrCancelledLocked)
	assert.ErrorIs(t, f.svc.DeleteOrder(order.ID), ErrCancelledLocked)
}

func TestDeleteOrder(t *testing.T) {
	f := setupOrderService(t)

	order, err := f.svc.BuyNow(f.user.ID, f.shirt.ID, 1, "")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteOrder(order.ID))

	_, err = f.svc.GetOrder(order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
