package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/observability"
	"github.com/dmitrijs2005/movieapi/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AuthAPI is implemented by services.AuthService.
type AuthAPI interface {
	Register(ctx context.Context, req services.RegisterRequest) (*services.TokenPair, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// PasswordResetAPI is implemented by services.OtpResetManager.
type PasswordResetAPI interface {
	RequestReset(ctx context.Context, email string) error
	VerifyOtp(ctx context.Context, email string, otp int) error
	ChangePassword(ctx context.Context, email, password, repeatPassword string) error
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	Password       string `json:"password"`
	RepeatPassword string `json:"repeatPassword"`
}

// AuthHandler serves /auth and /forgotPassword.
type AuthHandler struct {
	auth    AuthAPI
	reset   PasswordResetAPI
	metrics *observability.Metrics
	logger  logging.Logger
}

func NewAuthHandler(a AuthAPI, r PasswordResetAPI, m *observability.Metrics, l logging.Logger) *AuthHandler {
	return &AuthHandler{auth: a, reset: r, metrics: m, logger: l.With("module", "auth_handler")}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !h.bind(c, &req) {
		return
	}

	pair, err := h.auth.Register(c.Request.Context(), req)
	h.metrics.RecordAuthEvent(observability.EventRegister, err)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bind(c, &req) {
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	h.metrics.RecordAuthEvent(observability.EventLogin, err)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.bind(c, &req) {
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	h.metrics.RecordAuthEvent(observability.EventRefresh, err)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) VerifyMail(c *gin.Context) {
	err := h.reset.RequestReset(c.Request.Context(), c.Param("email"))
	h.metrics.RecordAuthEvent(observability.EventResetRequest, err)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, "Email sent for verification")
}

func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	otp, err := strconv.Atoi(c.Param("otp"))
	if err != nil {
		abortWithError(c, h.logger, fmt.Errorf("%w: otp must be a number", common.ErrValidation))
		return
	}

	err = h.reset.VerifyOtp(c.Request.Context(), c.Param("email"), otp)
	h.metrics.RecordAuthEvent(observability.EventOtpVerify, err)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, "OTP is verified")
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !h.bind(c, &req) {
		return
	}

	err := h.reset.ChangePassword(c.Request.Context(), c.Param("email"), req.Password, req.RepeatPassword)
	h.metrics.RecordAuthEvent(observability.EventPasswordChange, err)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, "Password changed successfully!")
}

func (h *AuthHandler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWithError(c, h.logger, fmt.Errorf("%w: malformed request body", common.ErrValidation))
		return false
	}
	return true
}
