package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo pairs an error code with a user-facing message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError translates database and infrastructure errors into user-facing
// Vietnamese messages. Sensitive detail stays out of the response; the
// context string ("create order", "update product") shapes the fallback text.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Đã xảy ra lỗi máy chủ",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	// 1. GORM built-ins
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 2. Constraint violations. SQLite reports "UNIQUE constraint failed:
	// users.email", PostgreSQL "duplicate key value violates unique
	// constraint"; both are caught here.
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStr)
	}

	if strings.Contains(errStrLower, "foreign key constraint") {
		return parseForeignKeyError(errStr)
	}

	if strings.Contains(errStrLower, "not null constraint") ||
		(strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "not-null constraint")) {
		return parseNotNullError(errStr)
	}

	// 3. Network/connection failures (Stripe, SMTP, Redis)
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Không thể kết nối dịch vụ bên ngoài. Vui lòng thử lại sau",
		}
	}

	// 4. Default
	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func parseDuplicateKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "users.email") || strings.Contains(errLower, "idx_users_email") || strings.Contains(errLower, "email") {
		return ErrorInfo{
			Code:    AuthEmailAlreadyExists,
			Message: "Email đã được sử dụng",
		}
	}

	if strings.Contains(errLower, "carts.user_id") || strings.Contains(errLower, "idx_carts_user_id") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Giỏ hàng đã tồn tại. Vui lòng thử lại",
		}
	}

	if strings.Contains(errLower, "pkey") || strings.Contains(errLower, "primary key") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "Dữ liệu đã tồn tại. Vui lòng thử lại",
		}
	}

	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "Dữ liệu đã tồn tại",
	}
}

func parseForeignKeyError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "still referenced") || strings.Contains(errLower, "is still referenced by") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "Không thể xoá vì còn dữ liệu liên quan",
		}
	}

	if strings.Contains(errLower, "user_id") || strings.Contains(errLower, "fk_users") {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: "Người dùng không tồn tại",
		}
	}
	if strings.Contains(errLower, "product_id") || strings.Contains(errLower, "fk_products") {
		return ErrorInfo{
			Code:    ProductNotFound,
			Message: "Sản phẩm không tồn tại",
		}
	}
	if strings.Contains(errLower, "order_id") || strings.Contains(errLower, "fk_orders") {
		return ErrorInfo{
			Code:    OrderNotFound,
			Message: "Đơn hàng không tồn tại",
		}
	}
	if strings.Contains(errLower, "address_id") || strings.Contains(errLower, "fk_addresses") {
		return ErrorInfo{
			Code:    AddressNotFound,
			Message: "Địa chỉ không tồn tại",
		}
	}

	return ErrorInfo{
		Code:    ResourceNotFound,
		Message: "Không tìm thấy dữ liệu tham chiếu",
	}
}

func parseNotNullError(errStr string) ErrorInfo {
	errLower := strings.ToLower(errStr)

	if strings.Contains(errLower, "email") {
		return ErrorInfo{Code: ValidationRequired, Message: "Email là bắt buộc"}
	}
	if strings.Contains(errLower, "password") {
		return ErrorInfo{Code: ValidationRequired, Message: "Mật khẩu là bắt buộc"}
	}
	if strings.Contains(errLower, "name") || strings.Contains(errLower, "title") {
		return ErrorInfo{Code: ValidationRequired, Message: "Tên là bắt buộc"}
	}

	return ErrorInfo{
		Code:    ValidationRequired,
		Message: "Thiếu thông tin bắt buộc",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "product") {
		return "Không tìm thấy sản phẩm"
	}
	if strings.Contains(contextLower, "order") {
		return "Không tìm thấy đơn hàng"
	}
	if strings.Contains(contextLower, "user") {
		return "Không tìm thấy người dùng"
	}
	if strings.Contains(contextLower, "address") {
		return "Không tìm thấy địa chỉ"
	}
	if strings.Contains(contextLower, "cart") {
		return "Không tìm thấy giỏ hàng"
	}

	return "Không tìm thấy dữ liệu yêu cầu"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") || strings.Contains(contextLower, "register") {
		return "Có lỗi khi tạo dữ liệu. Vui lòng thử lại sau"
	}
	if strings.Contains(contextLower, "update") {
		return "Có lỗi khi cập nhật. Vui lòng thử lại sau"
	}
	if strings.Contains(contextLower, "delete") {
		return "Có lỗi khi xoá. Vui lòng thử lại sau"
	}
	if strings.Contains(contextLower, "checkout") || strings.Contains(contextLower, "payment") {
		return "Có lỗi khi xử lý thanh toán. Vui lòng thử lại sau"
	}

	return "Đã xảy ra lỗi máy chủ. Vui lòng thử lại sau"
}
