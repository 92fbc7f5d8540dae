package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	apperrors "github.com/minhvo/tiemao-backend/internal/errors"
	"github.com/minhvo/tiemao-backend/internal/middleware"
	"github.com/minhvo/tiemao-backend/internal/storage"
)

// AccountController covers the signed-in user's own data: profile, password,
// avatar and shipping addresses.
type AccountController struct {
	authService    service.AuthService
	addressService service.AddressService
	storage        *storage.LocalStorage
}

func NewAccountController(
	authService service.AuthService,
	addressService service.AddressService,
	storage *storage.LocalStorage,
) *AccountController {
	return &AccountController{
		authService:    authService,
		addressService: addressService,
		storage:        storage,
	}
}

type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Gender string `json:"gender"`
	DOB    string `json:"dob"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type AddressRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	Postcode  string `json:"postcode"`
	IsDefault bool   `json:"is_default"`
}

// GetProfile returns the signed-in user's profile.
// GET /api/v1/account/profile
func (ctrl *AccountController) GetProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Không tìm thấy tài khoản")
			return
		}
		log.Error("Failed to fetch profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// UpdateProfile updates name, phone, gender and date of birth.
// PUT /api/v1/account/profile
func (ctrl *AccountController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid profile update request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Dữ liệu nhập không hợp lệ")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, service.ProfileUpdate{
		Name:   req.Name,
		Phone:  req.Phone,
		Gender: req.Gender,
		DOB:    req.DOB,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Không tìm thấy tài khoản")
			return
		}
		log.Error("Failed to update profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Profile updated", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật hồ sơ",
		"user":    user,
	})
}

// ChangePassword changes the signed-in user's password. The admin account
// manages its credentials elsewhere and is refused here.
// POST /api/v1/account/change-password
func (ctrl *AccountController) ChangePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	if role, ok := middleware.GetUserRole(c); ok && role == model.RoleAdmin {
		log.Warn("Admin attempted password change via account endpoint", map[string]interface{}{
			"user_id": userID,
		})
		apperrors.Forbidden(c, "Tài khoản quản trị không đổi mật khẩu tại đây")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng điền đầy đủ thông tin")
		return
	}

	err := ctrl.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Mật khẩu xác nhận không khớp")
		case errors.Is(err, service.ErrPasswordTooShort):
			apperrors.BadRequest(c, apperrors.AuthWeakPassword, "Mật khẩu mới phải có ít nhất 6 ký tự")
		case errors.Is(err, service.ErrWrongPassword):
			apperrors.BadRequest(c, apperrors.AuthInvalidCredentials, "Mật khẩu hiện tại không đúng")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Không tìm thấy tài khoản")
		default:
			log.Error("Failed to change password", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("Password changed", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã đổi mật khẩu",
	})
}

// UploadAvatar stores a new avatar image and points the profile at it.
// POST /api/v1/account/avatar
func (ctrl *AccountController) UploadAvatar(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Vui lòng chọn ảnh đại diện")
		return
	}

	path, err := ctrl.storage.SaveImage(file)
	if err != nil {
		log.Warn("Rejected avatar upload", map[string]interface{}{
			"user_id":  userID,
			"filename": file.Filename,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Tệp ảnh không hợp lệ")
		return
	}

	user, err := ctrl.authService.UpdateProfile(userID, service.ProfileUpdate{Avatar: path})
	if err != nil {
		log.Error("Failed to save avatar path", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Avatar updated", map[string]interface{}{
		"user_id": userID,
		"avatar":  path,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật ảnh đại diện",
		"user":    user,
	})
}

// ListAddresses returns the user's shipping addresses, default first.
// GET /api/v1/account/addresses
func (ctrl *AccountController) ListAddresses(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	addresses, err := ctrl.addressService.List(userID)
	if err != nil {
		log.Error("Failed to list addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"addresses": addresses,
	})
}

// CreateAddress adds a shipping address. The first address becomes the
// default automatically.
// POST /api/v1/account/addresses
func (ctrl *AccountController) CreateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng điền đầy đủ thông tin địa chỉ")
		return
	}

	address := model.Address{
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Street:    req.Street,
		City:      req.City,
		Postcode:  req.Postcode,
		IsDefault: req.IsDefault,
	}

	if err := ctrl.addressService.Create(userID, &address); err != nil {
		if ctrl.respondAddressError(c, err) {
			return
		}
		log.Error("Failed to create address", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Address created", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đã thêm địa chỉ",
		"address": address,
	})
}

// UpdateAddress edits one of the user's addresses.
// PUT /api/v1/account/addresses/:id
func (ctrl *AccountController) UpdateAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã địa chỉ không hợp lệ")
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng điền đầy đủ thông tin địa chỉ")
		return
	}

	address := model.Address{
		ID:        addressID,
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Street:    req.Street,
		City:      req.City,
		Postcode:  req.Postcode,
		IsDefault: req.IsDefault,
	}

	if err := ctrl.addressService.Update(userID, &address); err != nil {
		if ctrl.respondAddressError(c, err) {
			return
		}
		log.Error("Failed to update address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Address updated", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã cập nhật địa chỉ",
		"address": address,
	})
}

// DeleteAddress removes one of the user's addresses.
// DELETE /api/v1/account/addresses/:id
func (ctrl *AccountController) DeleteAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã địa chỉ không hợp lệ")
		return
	}

	if err := ctrl.addressService.Delete(userID, addressID); err != nil {
		if ctrl.respondAddressError(c, err) {
			return
		}
		log.Error("Failed to delete address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Address deleted", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã xóa địa chỉ",
	})
}

// SetDefaultAddress marks one address as the shipping default.
// POST /api/v1/account/addresses/:id/default
func (ctrl *AccountController) SetDefaultAddress(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "")
		return
	}

	addressID, ok := parseIDParam(c, "id")
	if !ok {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Mã địa chỉ không hợp lệ")
		return
	}

	if err := ctrl.addressService.SetDefault(userID, addressID); err != nil {
		if ctrl.respondAddressError(c, err) {
			return
		}
		log.Error("Failed to set default address", err, map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
		})
		apperrors.InternalError(c, "")
		return
	}

	log.Info("Default address set", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã đặt địa chỉ mặc định",
	})
}

// respondAddressError writes the response for known address errors and
// reports whether it handled the error.
func (ctrl *AccountController) respondAddressError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.AddressNotFound, "Không tìm thấy địa chỉ")
	case errors.Is(err, service.ErrInvalidPhone):
		apperrors.BadRequest(c, apperrors.ValidationInvalidPhone, "Số điện thoại không hợp lệ")
	case errors.Is(err, service.ErrAddressFields):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Vui lòng điền đầy đủ thông tin địa chỉ")
	default:
		return false
	}
	return true
}

// parseIDParam reads an unsigned integer path parameter.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
