package main

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/zozz909/cafe-drive/internal/config"
	"github.com/zozz909/cafe-drive/internal/domain/model"
	"github.com/zozz909/cafe-drive/internal/handler"
	"github.com/zozz909/cafe-drive/internal/infra/db"
	"github.com/zozz909/cafe-drive/internal/infra/otp"
	infraRepo "github.com/zozz909/cafe-drive/internal/infra/repository"
	repo "github.com/zozz909/cafe-drive/internal/repository"
	"github.com/zozz909/cafe-drive/internal/server"
	"github.com/zozz909/cafe-drive/internal/usecase"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(customerID int64, phone string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(customerID, 10),
		"phone": phone,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// .envは無くても良い（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// DB接続。失敗してもメモリ退避で起動は続ける
	var primary repo.TransactionManager
	var ping func(ctx context.Context) error

	gormDB, err := db.Connect()
	if err != nil {
		log.Warnf("db connect failed, starting in degraded mode: %v", err)
	} else {
		if err := gormDB.AutoMigrate(
			&model.Category{},
			&model.Product{},
			&model.Customer{},
			&model.Order{},
			&model.OrderItem{},
			&model.OrderStatusLog{},
		); err != nil {
			panic(err)
		}

		sqlDB, err := gormDB.DB()
		if err != nil {
			panic(err)
		}

		primary = infraRepo.NewTxManagerGorm(gormDB)
		ping = sqlDB.PingContext
	}

	// 退避先（インメモリ）と切り替え
	memory := infraRepo.NewMemoryStore()
	tx := infraRepo.NewFailoverTxManager(primary, memory, ping)
	tx.StartProbe(context.Background(), time.Duration(cfg.ProbeIntervalSeconds)*time.Second)

	// usecaseに渡す部品
	clock := &realClock{}
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}
	sender := otp.NewDevSender()
	numGen := &usecase.RandomOrderNumberGenerator{}

	// Usecase生成
	orderUC := usecase.NewOrderUsecase(tx, numGen)
	statusUC := usecase.NewOrderStatusUsecase(tx)
	catalogUC := usecase.NewCatalogUsecase(tx)
	authUC := usecase.NewAuthUsecase(tx, sender, issuer, clock, 12)

	// Handler生成
	orderH := handler.NewOrderHandler(orderUC, statusUC)
	catalogH := handler.NewCatalogHandler(catalogUC)
	customerH := handler.NewCustomerHandler(authUC, cfg)
	healthH := handler.NewHealthHandler(tx, cfg.PollIntervalSeconds)

	// Server起動
	if err := server.Start(cfg, orderH, catalogH, customerH, healthH); err != nil {
		panic(err)
	}
}
