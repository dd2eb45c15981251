package main

import (
	"time"

	"github.com/kharido-next/internal/config"
	"github.com/kharido-next/internal/constants"
	"github.com/kharido-next/internal/logger"
	"github.com/kharido-next/internal/models"
	"github.com/kharido-next/internal/repository"
	"github.com/kharido-next/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	// 打开数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 建表
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 演示用户
	var user models.User
	if err := models.DB.Where("email = ?", "demo@kharido.in").First(&user).Error; err != nil {
		hash, hashErr := service.HashPassword("demo123456")
		if hashErr != nil {
			stdLog.Fatalf("Failed to hash password: %v", hashErr)
		}
		user = models.User{
			Email:        "demo@kharido.in",
			Name:         "Demo Shopper",
			PasswordHash: hash,
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Fatalf("Failed to create demo user: %v", err)
		}
		stdLog.Printf("Created demo user: %s", user.Email)
	} else {
		stdLog.Printf("Demo user already exists: %s", user.Email)
	}

	// 钱包余额与金币
	walletSvc := service.NewWalletService(repository.NewWalletRepository(models.DB))
	account, err := walletSvc.GetAccount(user.ID)
	if err != nil {
		stdLog.Fatalf("Failed to load wallet account: %v", err)
	}
	if account.Balance.IsZero() && account.CoinBalance == 0 {
		if _, _, err := walletSvc.Recharge(service.WalletRechargeInput{
			UserID: user.ID,
			Amount: models.NewMoneyFromInt(500),
			Remark: "seed recharge",
		}); err != nil {
			stdLog.Printf("Failed to recharge wallet: %v", err)
		}
		if _, _, err := walletSvc.GrantCoins(service.WalletCoinGrantInput{
			UserID: user.ID,
			Coins:  240,
			Remark: "seed coins",
		}); err != nil {
			stdLog.Printf("Failed to grant coins: %v", err)
		}
		stdLog.Printf("Seeded wallet: balance ₹500, 240 coins")
	}

	// 购物车条目
	cartItems := []models.CartItem{
		{
			UserID:       user.ID,
			ProductRef:   "sku-keyboard-87",
			ProductName:  "Mechanical Keyboard 87-key",
			ListPrice:    models.NewMoneyFromDecimal(decimal.NewFromInt(2499)),
			Discount:     models.NewMoneyFromDecimal(decimal.NewFromInt(300)),
			Quantity:     1,
			ReturnOption: constants.ReturnOptionStandard,
			Selected:     true,
		},
		{
			UserID:       user.ID,
			ProductRef:   "sku-mouse-pro",
			ProductName:  "Wireless Mouse Pro",
			ListPrice:    models.NewMoneyFromDecimal(decimal.NewFromInt(899)),
			Discount:     models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
			Quantity:     2,
			ReturnOption: constants.ReturnOptionNone,
			Selected:     true,
		},
	}
	for _, item := range cartItems {
		var existing models.CartItem
		if err := models.DB.Where("user_id = ? AND product_ref = ?", item.UserID, item.ProductRef).First(&existing).Error; err != nil {
			if err := models.DB.Create(&item).Error; err != nil {
				stdLog.Printf("Failed to create cart item %s: %v", item.ProductRef, err)
			} else {
				stdLog.Printf("Created cart item: %s", item.ProductRef)
			}
		} else {
			stdLog.Printf("Cart item already exists: %s", item.ProductRef)
		}
	}

	// 优惠券
	endsAt := time.Now().AddDate(0, 1, 0)
	coupons := []models.Coupon{
		{
			Code:         "WELCOME100",
			Type:         constants.CouponTypeFixed,
			Value:        models.NewMoneyFromInt(100),
			MinAmount:    models.NewMoneyFromInt(999),
			IsActive:     true,
			EndsAt:       &endsAt,
			UsageLimit:   1000,
			PerUserLimit: 1,
		},
		{
			Code:        "FEST10",
			Type:        constants.CouponTypePercent,
			Value:       models.NewMoneyFromInt(10),
			MaxDiscount: models.NewMoneyFromInt(250),
			IsActive:    true,
			EndsAt:      &endsAt,
		},
	}
	for _, coupon := range coupons {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&coupon).Error; err != nil {
				stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			} else {
				stdLog.Printf("Created coupon: %s", coupon.Code)
			}
		} else {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
		}
	}

	stdLog.Printf("Seed finished")
}
