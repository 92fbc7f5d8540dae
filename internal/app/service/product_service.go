package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/pkg/images"
	"github.com/minhvo/tiemao-backend/pkg/logger"
	"github.com/minhvo/tiemao-backend/pkg/util"
)

var ErrProductNotFound = errors.New("product not found")

// searchResultCap bounds how many matches a search returns.
const searchResultCap = 100

// ProductView is a product with its display image resolved.
type ProductView struct {
	model.Product
	SafeImage string   `json:"safe_image"`
	AllImages []string `json:"all_images"`
}

// RelatedView is the compact related-product row for detail-page navigation.
type RelatedView struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
}

type ProductService interface {
	List(category string) ([]ProductView, error)
	Get(id uint) (*ProductView, []RelatedView, error)
	Search(query string) ([]ProductView, error)
	Categories() ([]string, error)
	Create(product *model.Product) error
	Update(product *model.Product) error
	Delete(id uint) error
}

type productService struct {
	productRepo repository.ProductRepository
	resolver    *images.Resolver
}

func NewProductService(productRepo repository.ProductRepository, resolver *images.Resolver) ProductService {
	return &productService{
		productRepo: productRepo,
		resolver:    resolver,
	}
}

func (s *productService) view(p model.Product) ProductView {
	return ProductView{
		Product:   p,
		SafeImage: s.resolver.Resolve(p.Image, p.Title),
		AllImages: s.resolver.ResolveAll(p.AllImages(), p.Title),
	}
}

func (s *productService) List(category string) ([]ProductView, error) {
	products, err := s.productRepo.FindAll(repository.ProductFilter{Category: category})
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = s.view(p)
	}
	return views, nil
}

// Get returns the product with its related products: same category, ordered
// by units sold, the current product first for cyclic navigation.
func (s *productService) Get(id uint) (*ProductView, []RelatedView, error) {
	product, err := s.productRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrProductNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	view := s.view(*product)

	related := []RelatedView{{ID: view.ID, Title: view.Title, Image: view.SafeImage}}
	rows, err := s.productRepo.RelatedByCategory(product.Category, product.ID, 50)
	if err != nil {
		logger.Error("Failed to load related products", err, map[string]interface{}{
			"product_id": id,
		})
	} else {
		for _, row := range rows {
			imgs := row.Product.AllImages()
			img := ""
			if len(imgs) > 0 {
				img = imgs[0]
			}
			related = append(related, RelatedView{
				ID:    row.Product.ID,
				Title: row.Product.Title,
				Image: s.resolver.Resolve(img, row.Product.Title),
			})
		}
	}

	return &view, related, nil
}

// Search runs a diacritics-insensitive whole-word search over title and
// description. Every token of the query must match; candidates come from a
// bounded window and results are capped.
func (s *productService) Search(query string) ([]ProductView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		products, err := s.productRepo.FindAll(repository.ProductFilter{Limit: searchResultCap})
		if err != nil {
			return nil, err
		}
		views := make([]ProductView, len(products))
		for i, p := range products {
			views[i] = s.view(p)
		}
		return views, nil
	}

	tokens := strings.Fields(util.RemoveDiacritics(query))
	if len(tokens) == 0 {
		return []ProductView{}, nil
	}

	candidates, err := s.productRepo.SearchCandidates()
	if err != nil {
		return nil, err
	}

	views := []ProductView{}
	for _, p := range candidates {
		haystack := util.RemoveDiacritics(p.Title + " " + p.Description)
		matched := true
		for _, token := range tokens {
			if !util.ContainsWord(haystack, token) {
				matched = false
				break
			}
		}
		if matched {
			views = append(views, s.view(p))
			if len(views) >= searchResultCap {
				break
			}
		}
	}
	return views, nil
}

func (s *productService) Categories() ([]string, error) {
	return s.productRepo.Categories()
}

func (s *productService) Create(product *model.Product) error {
	product.SetImages(product.Images)
	return s.productRepo.Create(product)
}

func (s *productService) Update(product *model.Product) error {
	existing, err := s.productRepo.FindByID(product.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}

	// keep the legacy image column mirroring the first gallery entry
	if len(product.Images) > 0 {
		product.SetImages(product.Images)
	} else if product.Image == "" {
		product.Image = existing.Image
		product.Images = existing.Images
	}

	return s.productRepo.Update(product)
}

func (s *productService) Delete(id uint) error {
	if _, err := s.productRepo.FindByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProductNotFound
	} else if err != nil {
		return err
	}
	return s.productRepo.Delete(id)
}
