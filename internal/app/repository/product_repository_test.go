package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/db"
)

func setupProductTest(t *testing.T) (*gorm.DB, ProductRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB, NewProductRepository(testDB)
}

func TestProductRepository_FindAllByCategory(t *testing.T) {
	testDB, repo := setupProductTest(t)

	testDB.Create(&model.Product{Title: "Mũ len", Price: 90000, Category: "Mũ"})
	testDB.Create(&model.Product{Title: "Mũ bucket", Price: 110000, Category: "Mũ"})
	testDB.Create(&model.Product{Title: "Áo thun", Price: 150000, Category: "Áo"})

	hats, err := repo.FindAll(ProductFilter{Category: "Mũ"})
	require.NoError(t, err)
	assert.Len(t, hats, 2)

	all, err := repo.FindAll(ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductRepository_Categories(t *testing.T) {
	testDB, repo := setupProductTest(t)

	testDB.Create(&model.Product{Title: "Mũ len", Price: 90000, Category: "Mũ"})
	testDB.Create(&model.Product{Title: "Mũ bucket", Price: 110000, Category: "Mũ"})
	testDB.Create(&model.Product{Title: "Áo thun", Price: 150000, Category: "Áo"})
	testDB.Create(&model.Product{Title: "Không danh mục", Price: 50000, Category: ""})

	categories, err := repo.Categories()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Mũ", "Áo"}, categories)
}

func TestProductRepository_RelatedByCategoryOrdersBySold(t *testing.T) {
	testDB, repo := setupProductTest(t)

	current := model.Product{Title: "Áo thun", Price: 150000, Category: "Áo"}
	slow := model.Product{Title: "Áo sơ mi", Price: 250000, Category: "Áo"}
	hot := model.Product{Title: "Áo hoodie", Price: 280000, Category: "Áo"}
	other := model.Product{Title: "Quần jeans", Price: 450000, Category: "Quần"}
	for _, p := range []*model.Product{&current, &slow, &hot, &other} {
		require.NoError(t, testDB.Create(p).Error)
	}

	user := model.User{Name: "U", Email: "u@example.com", PasswordHash: "h"}
	require.NoError(t, testDB.Create(&user).Error)

	order := model.Order{
		UserID: user.ID,
		Total:  810000,
		Status: model.OrderStatusPaid,
		OrderItems: []model.OrderItem{
			{ProductID: hot.ID, Quantity: 3, Price: 280000},
			{ProductID: slow.ID, Quantity: 1, Price: 250000},
		},
	}
	require.NoError(t, testDB.Create(&order).Error)

	related, err := repo.RelatedByCategory("Áo", current.ID, 50)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, hot.ID, related[0].Product.ID)
	assert.Equal(t, int64(3), related[0].Sold)
	assert.Equal(t, slow.ID, related[1].Product.ID)
}

func TestProductRepository_RelatedByCategoryEmptyCategory(t *testing.T) {
	_, repo := setupProductTest(t)

	related, err := repo.RelatedByCategory("", 1, 50)
	require.NoError(t, err)
	assert.Empty(t, related)
}

func TestProductRepository_SearchCandidatesBounded(t *testing.T) {
	testDB, repo := setupProductTest(t)

	products := make([]model.Product, 0, 510)
	for i := 0; i < 510; i++ {
		products = append(products, model.Product{Title: "Sản phẩm", Price: 1000})
	}
	require.NoError(t, testDB.CreateInBatches(&products, 100).Error)

	candidates, err := repo.SearchCandidates()
	require.NoError(t, err)
	assert.Len(t, candidates, searchCandidateWindow)
}
