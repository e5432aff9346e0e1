package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zozz909/cafe-drive/internal/config"
	"github.com/zozz909/cafe-drive/internal/middleware"
	"github.com/zozz909/cafe-drive/internal/usecase"
)

// /customers の会員API（電話番号+PIN）
type CustomerHandler struct {
	uc  *usecase.AuthUsecase
	cfg config.Config
}

// DI
func NewCustomerHandler(uc *usecase.AuthUsecase, cfg config.Config) *CustomerHandler {
	return &CustomerHandler{uc: uc, cfg: cfg}
}

func (h *CustomerHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/customers", h.checkPhone)
	e.POST("/customers", h.register)
	e.POST("/customers/login", h.login)
	e.POST("/customers/send-code", h.sendCode)
	e.POST("/customers/verify-code", h.verifyCode)

	e.GET("/customers/me", h.me, middleware.AuthJWT(h.cfg))
}

func (h *CustomerHandler) checkPhone(c echo.Context) error {
	out, err := h.uc.CheckPhone(c.Request().Context(), c.QueryParam("phone"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type RegisterRequest struct {
	Phone  string `json:"phone"`
	Pin    string `json:"pin"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Action string `json:"action"`
}

func (h *CustomerHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Phone:  req.Phone,
		Pin:    req.Pin,
		Name:   req.Name,
		Email:  req.Email,
		Action: req.Action,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type LoginRequest struct {
	Phone string `json:"phone"`
	Pin   string `json:"pin"`
}

func (h *CustomerHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Login(c.Request().Context(), req.Phone, req.Pin)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type SendCodeRequest struct {
	Phone string `json:"phone"`
}

func (h *CustomerHandler) sendCode(c echo.Context) error {
	var req SendCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.SendCode(c.Request().Context(), req.Phone)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type VerifyCodeRequest struct {
	ChallengeID string `json:"challenge_id"`
	Code        string `json:"code"`
}

func (h *CustomerHandler) verifyCode(c echo.Context) error {
	var req VerifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.VerifyCode(c.Request().Context(), req.ChallengeID, req.Code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CustomerHandler) me(c echo.Context) error {
	customerID, ok := c.Get(middleware.CtxCustomerIDKey).(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Me(c.Request().Context(), customerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
