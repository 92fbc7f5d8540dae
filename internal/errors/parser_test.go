package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseErrorRecordNotFound(t *testing.T) {
	info := ParseError(gorm.ErrRecordNotFound, "get product")
	assert.Equal(t, ResourceNotFound, info.Code)
	assert.Equal(t, "Không tìm thấy sản phẩm", info.Message)

	info = ParseError(gorm.ErrRecordNotFound, "get order")
	assert.Equal(t, "Không tìm thấy đơn hàng", info.Message)
}

func TestParseErrorDuplicateEmail(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"sqlite", errors.New("UNIQUE constraint failed: users.email")},
		{"postgres", errors.New(`duplicate key value violates unique constraint "idx_users_email"`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, "register user")
			assert.Equal(t, AuthEmailAlreadyExists, info.Code)
			assert.Equal(t, "Email đã được sử dụng", info.Message)
		})
	}
}

func TestParseErrorForeignKey(t *testing.T) {
	info := ParseError(errors.New("FOREIGN KEY constraint failed: product_id"), "create order")
	assert.Equal(t, ProductNotFound, info.Code)
}

func TestParseErrorNetwork(t *testing.T) {
	info := ParseError(errors.New("dial tcp: connection refused"), "checkout")
	assert.Equal(t, InternalExternalAPI, info.Code)
}

func TestParseErrorDefaultByContext(t *testing.T) {
	err := errors.New("something exploded")

	info := ParseError(err, "update product")
	assert.Equal(t, InternalServerError, info.Code)
	assert.Contains(t, info.Message, "cập nhật")

	info = ParseError(err, "checkout cart")
	assert.Contains(t, info.Message, "thanh toán")
}
