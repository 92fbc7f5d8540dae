package repository

import (
	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/pkg/logger"
)

// searchCandidateWindow bounds how many rows diacritics-insensitive search
// scans in memory.
const searchCandidateWindow = 500

type ProductFilter struct {
	Category string
	Limit    int
}

// RelatedProduct is a related-product row with its lifetime units sold.
type RelatedProduct struct {
	Product model.Product
	Sold    int64
}

type ProductRepository interface {
	Create(product *model.Product) error
	Update(product *model.Product) error
	Delete(id uint) error
	FindByID(id uint) (*model.Product, error)
	FindAll(filter ProductFilter) ([]model.Product, error)
	SearchCandidates() ([]model.Product, error)
	Categories() ([]string, error)
	RelatedByCategory(category string, excludeID uint, limit int) ([]RelatedProduct, error)
	Count() (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"title": product.Title,
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"title": product.Title,
		})
		return err
	}
	return nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	if err := r.db.Delete(&model.Product{}, id).Error; err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindAll(filter ProductFilter) ([]model.Product, error) {
	query := r.db.Model(&model.Product{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var products []model.Product
	if err := query.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SearchCandidates returns the bounded window of products that in-memory
// search filters through.
func (r *productRepository) SearchCandidates() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Order("id").Limit(searchCandidateWindow).Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Categories() ([]string, error) {
	var categories []string
	err := r.db.Model(&model.Product{}).
		Distinct("category").
		Where("category <> ''").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// RelatedByCategory lists other products in the same category ordered by
// lifetime units sold, best sellers first.
func (r *productRepository) RelatedByCategory(category string, excludeID uint, limit int) ([]RelatedProduct, error) {
	if category == "" {
		return nil, nil
	}

	type row struct {
		model.Product
		Sold int64
	}
	var rows []row
	err := r.db.Model(&model.Product{}).
		Select("products.*, COALESCE(oi.qty_sum, 0) AS sold").
		Joins("LEFT JOIN (SELECT product_id, SUM(quantity) AS qty_sum FROM order_items GROUP BY product_id) oi ON oi.product_id = products.id").
		Where("products.category = ? AND products.id <> ?", category, excludeID).
		Order("sold DESC, products.id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	related := make([]RelatedProduct, len(rows))
	for i, rr := range rows {
		related[i] = RelatedProduct{Product: rr.Product, Sold: rr.Sold}
	}
	return related, nil
}

func (r *productRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}
