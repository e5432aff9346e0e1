package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/zozz909/cafe-drive/internal/config"
)

// ルートを登録できるもの（各Handlerが満たす）
type Router interface {
	RegisterRoutes(e *echo.Echo)
}

// New はechoインスタンスを組み立てる。起動はしない（テストでも使う）。
func New(cfg config.Config, routers ...Router) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// フロントURLが指定されていればCORSを絞る
	if cfg.FrontendURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{cfg.FrontendURL},
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}))
	}

	for _, r := range routers {
		r.RegisterRoutes(e)
	}

	return e
}

func Start(cfg config.Config, routers ...Router) error {
	e := New(cfg, routers...)
	return e.Start(":" + cfg.Port)
}
