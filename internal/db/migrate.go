package db

import (
	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/pkg/logger"
	"github.com/minhvo/tiemao-backend/pkg/util"
)

// Migrate runs database migrations and seeds the baseline data.
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Address{},
		&model.CartRecord{},
		&model.Session{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	if err := seedAdmin(); err != nil {
		logger.Error("Failed to seed admin account", err)
		return err
	}
	if err := seedProducts(); err != nil {
		logger.Error("Failed to seed sample products", err)
		return err
	}
	return nil
}

// seedAdmin creates the bootstrap admin account when missing.
func seedAdmin() error {
	var count int64
	if err := DB.Model(&model.User{}).Where("email = ?", "admin@local").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := util.HashPassword("adminpass")
	if err != nil {
		return err
	}

	admin := model.User{
		Name:         "Admin",
		Email:        "admin@local",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("Seeded admin account", map[string]interface{}{
		"email": admin.Email,
	})
	return nil
}

// SampleProducts is the default catalog seeded into an empty database.
var SampleProducts = []model.Product{
	{Title: "Áo thun basic", Description: "Áo thun cotton comfortable", Price: 150000, Image: "/images/shirt1.jpg", Stock: 20, Category: "Áo"},
	{Title: "Áo len mùa đông", Description: "Áo len dày ấm", Price: 350000, Image: "/images/cozy_sweater.jpg", Stock: 8, Category: "Áo mùa đông"},
	{Title: "Quần jeans nam", Description: "Quần jeans xanh rách nhẹ", Price: 450000, Image: "/images/jeans1.jpg", Stock: 10, Category: "Quần"},
	{Title: "Quần short nam", Description: "Quần short nhẹ nhàng", Price: 220000, Image: "/images/shorts1.jpg", Stock: 12, Category: "Quần"},
	{Title: "Váy nữ", Description: "Váy nữ hoa nhí", Price: 350000, Image: "/images/dress1.jpg", Stock: 15, Category: "Áo"},
	{Title: "Mũ lưỡi trai", Description: "Mũ thời trang", Price: 120000, Image: "/images/cap1.jpg", Stock: 30, Category: "Mũ"},
	{Title: "Mũ len", Description: "Mũ len ấm áp", Price: 90000, Image: "/images/beanie1.jpg", Stock: 25, Category: "Mũ"},
	{Title: "Áo khoác mùa đông", Description: "Áo khoác dày", Price: 800000, Image: "/images/coat1.jpg", Stock: 5, Category: "Áo mùa đông"},
	{Title: "Áo sơ mi", Description: "Sơ mi công sở", Price: 250000, Image: "/images/shirt2.jpg", Stock: 18, Category: "Áo"},
	{Title: "Quần tây nữ", Description: "Quần tây nữ công sở", Price: 300000, Image: "/images/trousers1.jpg", Stock: 10, Category: "Quần"},
	{Title: "Áo polo nam", Description: "Áo polo thấm hút", Price: 200000, Image: "/images/polo1.jpg", Stock: 22, Category: "Áo"},
	{Title: "Áo hoodie", Description: "Hoodie unisex", Price: 280000, Image: "/images/hoodie1.jpg", Stock: 14, Category: "Áo"},
	{Title: "Quần jogger", Description: "Quần jogger thun", Price: 240000, Image: "/images/jogger1.jpg", Stock: 16, Category: "Quần"},
	{Title: "Mũ bucket", Description: "Mũ bucket thời trang", Price: 110000, Image: "/images/bucket1.jpg", Stock: 20, Category: "Mũ"},
	{Title: "Áo khoác nhẹ", Description: "Áo khoác mỏng", Price: 320000, Image: "/images/jacket1.jpg", Stock: 9, Category: "Áo mùa đông"},
	{Title: "Đầm maxi", Description: "Đầm maxi xòe", Price: 420000, Image: "/images/maxi1.jpg", Stock: 7, Category: "Áo"},
	{Title: "Quần shorts nữ", Description: "Quần shorts nữ", Price: 190000, Image: "/images/shorts2.jpg", Stock: 11, Category: "Quần"},
	{Title: "Mũ snapback", Description: "Mũ snapback", Price: 130000, Image: "/images/snapback1.jpg", Stock: 18, Category: "Mũ"},
	{Title: "Áo vest nam", Description: "Áo vest công sở", Price: 550000, Image: "/images/vest1.jpg", Stock: 6, Category: "Áo"},
	{Title: "Áo len cổ lọ", Description: "Áo len cổ lọ ấm", Price: 270000, Image: "/images/turtle_knit.jpg", Stock: 12, Category: "Áo mùa đông"},
}

// seedProducts fills an empty catalog with the sample products.
func seedProducts() error {
	var count int64
	if err := DB.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	products := make([]model.Product, len(SampleProducts))
	copy(products, SampleProducts)
	if err := DB.Create(&products).Error; err != nil {
		return err
	}

	logger.Info("Seeded sample products", map[string]interface{}{
		"count": len(products),
	})
	return nil
}
