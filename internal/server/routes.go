package server

import (
	"ecofinds/internal/config"
	"ecofinds/internal/handler"
	"ecofinds/internal/repository"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes は全ハンドラのルートをまとめて登録する
func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	userRepo repository.UserRepository,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	cartH *handler.CartHandler,
	orderH *handler.OrderHandler,
) {
	authH.RegisterRoutes(e, cfg, userRepo)
	productH.RegisterRoutes(e, cfg, userRepo)
	cartH.RegisterRoutes(e, cfg, userRepo)
	orderH.RegisterRoutes(e, cfg, userRepo)
}
