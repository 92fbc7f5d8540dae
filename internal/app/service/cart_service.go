package service

import (
	"strconv"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/repository"
	"github.com/minhvo/tiemao-backend/pkg/images"
	"github.com/minhvo/tiemao-backend/pkg/logger"
)

// CartLine is one cart row resolved against the current catalog.
type CartLine struct {
	Key       string        `json:"key"`
	Product   model.Product `json:"product"`
	SafeImage string        `json:"safe_image"`
	Quantity  int           `json:"quantity"`
	Option    string        `json:"option,omitempty"`
	Subtotal  int64         `json:"subtotal"`
}

// CartDetail is the cart resolved for display: live lines and their total.
type CartDetail struct {
	Lines []CartLine `json:"lines"`
	Total int64      `json:"total"`
	Count int        `json:"count"`
}

type CartService interface {
	Detail(cart model.Cart) (*CartDetail, error)
	Add(cart model.Cart, productID uint, option string, qty int) (model.Cart, error)
	UpdateQuantity(cart model.Cart, key string, qty int) model.Cart
	BulkUpdate(rows []model.CartRow) model.Cart
	Remove(cart model.Cart, productID string) model.Cart
	MergeOnLogin(userID uint, sessionCart model.Cart) (model.Cart, error)
	PersistForUser(userID uint, cart model.Cart) error
	ClearForUser(userID uint) error
}

type cartService struct {
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	resolver    *images.Resolver
}

func NewCartService(
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	resolver *images.Resolver,
) CartService {
	return &cartService{
		productRepo: productRepo,
		cartRepo:    cartRepo,
		resolver:    resolver,
	}
}

// Detail resolves cart keys against the catalog. Lines whose product has
// disappeared are skipped rather than failing the whole cart.
func (s *cartService) Detail(cart model.Cart) (*CartDetail, error) {
	detail := &CartDetail{Lines: []CartLine{}}

	for _, key := range cart.SortedKeys() {
		qty := cart[key]
		productID, option := model.DecodeLineKey(key)
		id, err := strconv.ParseUint(productID, 10, 64)
		if err != nil {
			continue
		}

		product, err := s.productRepo.FindByID(uint(id))
		if err != nil {
			continue
		}

		line := CartLine{
			Key:       key,
			Product:   *product,
			SafeImage: s.resolver.Resolve(product.Image, product.Title),
			Quantity:  qty,
			Option:    option,
			Subtotal:  product.Price * int64(qty),
		}
		detail.Lines = append(detail.Lines, line)
		detail.Total += line.Subtotal
	}

	detail.Count = cart.Count()
	return detail, nil
}

// Add puts qty units of the product (with optional variant) into the cart.
func (s *cartService) Add(cart model.Cart, productID uint, option string, qty int) (model.Cart, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		return cart, ErrProductNotFound
	}

	cart.Add(strconv.FormatUint(uint64(productID), 10), option, qty)
	return cart, nil
}

func (s *cartService) UpdateQuantity(cart model.Cart, key string, qty int) model.Cart {
	cart.SetQuantity(key, qty)
	return cart
}

// BulkUpdate rebuilds the cart from posted rows, dropping zero quantities
// and summing duplicate keys.
func (s *cartService) BulkUpdate(rows []model.CartRow) model.Cart {
	cart := model.Cart{}
	cart.BulkReplace(rows)
	return cart
}

func (s *cartService) Remove(cart model.Cart, productID string) model.Cart {
	cart.Remove(productID)
	return cart
}

// MergeOnLogin folds the guest session cart into the user's persisted cart,
// summing quantities on shared keys, and saves the result.
func (s *cartService) MergeOnLogin(userID uint, sessionCart model.Cart) (model.Cart, error) {
	saved, err := s.cartRepo.Load(userID)
	if err != nil {
		return sessionCart, err
	}

	merged := model.MergeCarts(saved, sessionCart)
	if err := s.cartRepo.Save(userID, merged); err != nil {
		return merged, err
	}

	logger.Debug("Merged session cart into user cart", map[string]interface{}{
		"user_id": userID,
		"items":   merged.Count(),
	})
	return merged, nil
}

func (s *cartService) PersistForUser(userID uint, cart model.Cart) error {
	return s.cartRepo.Save(userID, cart)
}

func (s *cartService) ClearForUser(userID uint) error {
	return s.cartRepo.Save(userID, model.Cart{})
}
