package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/minhvo/tiemao-backend/internal/app/model"
	"github.com/minhvo/tiemao-backend/internal/app/service"
	apperrors "github.com/minhvo/tiemao-backend/internal/errors"
	"github.com/minhvo/tiemao-backend/internal/middleware"
	"github.com/minhvo/tiemao-backend/internal/session"
)

// AuthController handles registration, login and logout.
type AuthController struct {
	authService service.AuthService
	cartService service.CartService
}

func NewAuthController(authService service.AuthService, cartService service.CartService) *AuthController {
	return &AuthController{
		authService: authService,
		cartService: cartService,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new customer account.
// POST /api/v1/auth/register
func (ctrl *AuthController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid register request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng điền đầy đủ thông tin đăng ký")
		return
	}

	user, err := ctrl.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			log.Warn("Registration with existing email", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.Conflict(c, apperrors.AuthEmailAlreadyExists, "Email đã được sử dụng")
		case errors.Is(err, service.ErrInvalidEmail):
			apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Email không hợp lệ")
		case errors.Is(err, service.ErrWeakPassword):
			apperrors.BadRequest(c, apperrors.AuthWeakPassword,
				"Mật khẩu phải có ít nhất 8 ký tự, một chữ hoa và một ký tự @, ! hoặc ?")
		default:
			log.Error("Failed to register user", err, map[string]interface{}{
				"email": req.Email,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	log.Info("User registered", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đăng ký thành công",
		"user":    user,
	})
}

// Login verifies credentials, issues a token pair and merges the guest
// session cart into the account's persisted cart.
// POST /api/v1/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Vui lòng nhập email và mật khẩu")
		return
	}

	user, tokens, err := ctrl.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Failed login attempt", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized,
				apperrors.AuthInvalidCredentials, "Email hoặc mật khẩu không đúng")
			return
		}
		log.Error("Failed to log in user", err, map[string]interface{}{
			"email": req.Email,
		})
		apperrors.InternalError(c, "")
		return
	}

	sess := session.Get(c)
	merged, err := ctrl.cartService.MergeOnLogin(user.ID, sess.Data.Cart)
	if err != nil {
		// A failed merge should not block the login itself.
		log.Error("Failed to merge session cart on login", err, map[string]interface{}{
			"user_id": user.ID,
		})
	} else {
		sess.Data.Cart = merged
		if err := sess.Save(); err != nil {
			log.Error("Failed to save session after cart merge", err, map[string]interface{}{
				"user_id": user.ID,
			})
		}
	}

	log.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":       "Đăng nhập thành công",
		"user":          user,
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

// Logout revokes the current access token and empties the session cart.
// POST /api/v1/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	authHeader := c.GetHeader("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token != "" && token != authHeader {
		if err := ctrl.authService.Logout(c.Request.Context(), token); err != nil {
			log.Error("Failed to revoke token on logout", err, nil)
		}
	}

	sess := session.Get(c)
	sess.Data = model.SessionData{Cart: model.Cart{}}
	if err := sess.Save(); err != nil {
		log.Error("Failed to reset session on logout", err, nil)
	}

	if userID, ok := middleware.GetUserID(c); ok {
		log.Info("User logged out", map[string]interface{}{
			"user_id": userID,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã đăng xuất",
	})
}
