package main

import (
	"log"
	"os"

	"ecofinds/internal/config"
	"ecofinds/internal/domain/model"
	"ecofinds/internal/handler"
	"ecofinds/internal/infra/db"
	infrarepo "ecofinds/internal/infra/repository"
	"ecofinds/internal/server"
	"ecofinds/internal/usecase"
	"ecofinds/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envはローカル用。本番は環境変数を直接渡す
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DATABASE_URLがあれば優先（Render等のマネージドDB向け）
	gormDB, err := db.Connect(cfg, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	//開発用の自動マイグレーション
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//repository
	userRepo := infrarepo.NewUserGormRepository(gormDB)
	productRepo := infrarepo.NewProductGormRepository(gormDB)
	cartRepo := infrarepo.NewCartGormRepository(gormDB)
	auditRepo := infrarepo.NewAuditLogGormRepository(gormDB)
	txManager := infrarepo.NewTxManagerGorm(gormDB)

	//usecase
	authUC := usecase.NewAuthUsecase(cfg, userRepo, validator.NewAuthValidator())
	productUC := usecase.NewProductUsecase(productRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, txManager)
	orderUC := usecase.NewOrderUsecase(txManager)

	//handler
	authH := handler.NewAuthHandler(authUC)
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)
	orderH := handler.NewOrderHandler(orderUC)

	e := server.New(cfg)
	server.RegisterRoutes(e, cfg, userRepo, authH, productH, cartH, orderH)

	if err := server.Start(e, ":"+cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
