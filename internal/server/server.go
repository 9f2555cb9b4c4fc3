package server

import (
	"net/http"

	"ecofinds/internal/config"
	"ecofinds/web"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// New はechoを初期化して共通ミドルウェアとSPAを登録する
func New(cfg config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	//アクセスログ・panic回復・CORS
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{cfg.FEURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, "X-Idempotency-Key"},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"ok": true, "service": "EcoFinds API"})
	})

	//埋め込みSPA（カタログ・カート・出品管理画面）
	e.StaticFS("/", web.FS)

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
