package controller

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	apperrors "github.com/minhvo/tiemao-backend/internal/errors"
	"github.com/minhvo/tiemao-backend/internal/middleware"
	"github.com/minhvo/tiemao-backend/internal/storage"
)

// AdminController is the back office: product management, order management
// and the sales report. Every route behind it requires the admin role.
type AdminController struct {
	productService service.ProductService
	orderService   service.OrderService
	reportService  service.ReportService
	storage        *storage.LocalStorage
}

func NewAdminController(
	productService service.ProductService,
	orderService service.OrderService,
	reportService service.ReportService,
	storage *storage.LocalStorage,
) *AdminController {
	return &AdminController{
		productService: productService,
		orderService:   orderService,
		reportService:  reportService,
		storage:        storage,
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// productForm reads the multipart product fields shared by create and update.
func productForm(c *gin.Context) (model.Product, error) {
	price, err := strconv.ParseInt(c.PostForm("price"), 10, 64)
	if err != nil {
		return model.Product{}, errors.New("invalid price")
	}
	stock := 0
	if raw := c.PostForm("stock"); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil {
			return model.Product{}, errors.New("invalid stock")
		}
	}
	return model.Product{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Price:       price,
		Category:    c.PostForm("category"),
		Stock:       stock,
	}, nil
}

// imageFiles collects uploaded product images from either field name the
// admin form has used over time.
func imageFiles(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	if files := form.File["images"]; len(files) > 0 {
		return files
	}
	return form.File["image"]
}

// CreateProduct adds a catalog product with optional image uploads.
// POST /api/v1/admin/products
func (ctrl *AdminController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	product, err := productForm(c)
	if err != nil || product.Title == "" {
		log.Warn("Invalid product form", map[string]interface{}{
			"title": c.PostForm("title"),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng nhập tên và giá sản phẩm")
		return
	}

	if files := imageFiles(c); len(files) > 0 {
		paths, err := ctrl.storage.SaveImages(files)
		if err != nil {
			log.Warn("Rejected product image upload", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Tệp ảnh không hợp lệ")
			return
		}
		product.SetImages(paths)
	}

	if err := ctrl.productService.Create(&product); err != nil {
		log.Error("Failed to create product", err, map[string]interface{}{
			"title": product.Title,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"title":      product.Title,
		"images":     len(product.Images),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đã thêm sản phẩm",
		"product": product,
	})
}

// UpdateProduct edits one product. Without new uploads the existing images
// are kept.
// PUT /api/v1/admin/products/:id
func (ctrl *AdminController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã sản phẩm không hợp lệ")
		return
	}

	product, err := productForm(c)
	if err != nil || product.Title == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng nhập tên và giá sản phẩm")
		return
	}
	product.ID = productID

	if files := imageFiles(c); len(files) > 0 {
		paths, err := ctrl.storage.SaveImages(files)
		if err != nil {
			log.Warn("Rejected product image upload", map[string]interface{}{
				"product_id": productID,
				"error":      err.Error(),
			})
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Tệp ảnh không hợp lệ")
			return
		}
		product.SetImages(paths)
	}

	if err := ctrl.productService.Update(&product); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Không tìm thấy sản phẩm")
			return
		}
		log.Error("Failed to update product", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Product updated", map[string]interface{}{
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật sản phẩm",
		"product": product,
	})
}

// DeleteProduct removes a product from the catalog.
// DELETE /api/v1/admin/products/:id
func (ctrl *AdminController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã sản phẩm không hợp lệ")
		return
	}

	if err := ctrl.productService.Delete(productID); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Không tìm thấy sản phẩm")
			return
		}
		log.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Product deleted", map[string]interface{}{
		"product_id": productID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã xóa sản phẩm",
	})
}

// ListOrders returns every order for the back office.
// GET /api/v1/admin/orders
func (ctrl *AdminController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orders, err := ctrl.orderService.AllOrders()
	if err != nil {
		log.Error("Failed to list all orders", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder returns one order with items, buyer and address.
// GET /api/v1/admin/orders/:id
func (ctrl *AdminController) GetOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã đơn hàng không hợp lệ")
		return
	}

	order, err := ctrl.orderService.GetOrder(orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Không tìm thấy đơn hàng")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// UpdateOrderStatus moves an order along pending, paid, shipped or cancelled.
// Cancelled orders are locked.
// PUT /api/v1/admin/orders/:id/status
func (ctrl *AdminController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã đơn hàng không hợp lệ")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng chọn trạng thái")
		return
	}

	err := ctrl.orderService.UpdateStatus(orderID, model.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Không tìm thấy đơn hàng")
		case errors.Is(err, service.ErrInvalidOrderState):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Trạng thái không hợp lệ")
		case errors.Is(err, service.ErrCancelledLocked):
			apperrors.BadRequest(c, apperrors.OrderCancelledLocked, "Đơn hàng đã hủy, không thể thay đổi")
		case errors.Is(err, service.ErrBadTransition):
			apperrors.BadRequest(c, apperrors.OrderInvalidTransition, "Không thể chuyển sang trạng thái này")
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": orderID,
				"status":   req.Status,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   req.Status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật trạng thái đơn hàng",
	})
}

// UpdateOrderShipping replaces the shipping address on an order that has
// not reached a final state. Cancelled orders are locked.
// PUT /api/v1/admin/orders/:id/shipping
func (ctrl *AdminController) UpdateOrderShipping(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã đơn hàng không hợp lệ")
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng điền đầy đủ thông tin địa chỉ")
		return
	}

	if err := ctrl.orderService.UpdateShippingAsAdmin(orderID, req.toAddress()); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Không tìm thấy đơn hàng")
		case errors.Is(err, service.ErrCancelledLocked):
			apperrors.BadRequest(c, apperrors.OrderCancelledLocked, "Đơn hàng đã hủy, không thể thay đổi")
		case errors.Is(err, service.ErrOrderTerminal):
			apperrors.BadRequest(c, apperrors.OrderTerminal, "Đơn hàng đã hoàn tất, không thể sửa")
		case errors.Is(err, service.ErrIncompleteAddress):
			apperrors.BadRequest(c, apperrors.ValidationRequired, "Vui lòng điền đầy đủ thông tin địa chỉ")
		default:
			log.Error("Failed to update order shipping", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Order shipping updated by admin", map[string]interface{}{
		"order_id": orderID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật địa chỉ giao hàng",
	})
}

// DeleteOrder removes an order and its items. Cancelled orders stay on
// record and cannot be deleted.
// DELETE /api/v1/admin/orders/:id
func (ctrl *AdminController) DeleteOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã đơn hàng không hợp lệ")
		return
	}

	if err := ctrl.orderService.DeleteOrder(orderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Không tìm thấy đơn hàng")
		case errors.Is(err, service.ErrCancelledLocked):
			apperrors.BadRequest(c, apperrors.OrderCancelledLocked, "Đơn hàng đã hủy, không thể xóa")
		default:
			log.Error("Failed to delete order", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Order deleted", map[string]interface{}{
		"order_id": orderID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã xóa đơn hàng",
	})
}

// SalesReport aggregates revenue per product for the last day, week or month.
// GET /api/v1/admin/reports/sales?period=
func (ctrl *AdminController) SalesReport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	period := c.DefaultQuery("period", "month")

	report, err := ctrl.reportService.Sales(period)
	if err != nil {
		log.Error("Failed to build sales report", err, map[string]interface{}{
			"period": period,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report": report,
	})
}
