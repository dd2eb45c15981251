package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kharido-next/internal/constants"
	"github.com/kharido-next/internal/models"
	"github.com/kharido-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupWalletServiceTest(t *testing.T) (*WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:wallet_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewWalletService(repository.NewWalletRepository(db)), db
}

func TestWalletServiceGetSnapshotCreatesAccount(t *testing.T) {
	svc, db := setupWalletServiceTest(t)

	snapshot, err := svc.GetSnapshot(7)
	if err != nil {
		t.Fatalf("get snapshot failed: %v", err)
	}
	if !snapshot.WalletBalance.IsZero() || snapshot.CoinBalance != 0 {
		t.Fatalf("fresh snapshot should be zero, got %s / %d", snapshot.WalletBalance, snapshot.CoinBalance)
	}

	var count int64
	if err := db.Model(&models.WalletAccount{}).Where("user_id = ?", 7).Count(&count).Error; err != nil {
		t.Fatalf("count accounts failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("account should be auto created, count=%d", count)
	}
}

func TestWalletServiceRechargeAndGrantCoins(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)

	account, txn, err := svc.Recharge(WalletRechargeInput{
		UserID: 11,
		Amount: money(t, "500"),
		Remark: "top up",
	})
	if err != nil {
		t.Fatalf("recharge failed: %v", err)
	}
	assertMoney(t, "balance", account.Balance, "500")
	if txn.Direction != constants.WalletTxnDirectionIn {
		t.Fatalf("direction want in got %s", txn.Direction)
	}

	account, txn, err = svc.GrantCoins(WalletCoinGrantInput{
		UserID: 11,
		Coins:  240,
		Remark: "festival",
	})
	if err != nil {
		t.Fatalf("grant coins failed: %v", err)
	}
	if account.CoinBalance != 240 {
		t.Fatalf("coin balance want 240 got %d", account.CoinBalance)
	}
	if txn.CoinAmount != 240 {
		t.Fatalf("txn coin amount want 240 got %d", txn.CoinAmount)
	}
}

func TestWalletServiceRechargeRejectsInvalidAmount(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)

	if _, _, err := svc.Recharge(WalletRechargeInput{UserID: 1, Amount: money(t, "0")}); !errors.Is(err, ErrWalletInvalidAmount) {
		t.Fatalf("want ErrWalletInvalidAmount got %v", err)
	}
	if _, _, err := svc.Recharge(WalletRechargeInput{UserID: 1, Amount: money(t, "-5")}); !errors.Is(err, ErrWalletInvalidAmount) {
		t.Fatalf("want ErrWalletInvalidAmount got %v", err)
	}
}

func TestWalletServiceDebitForOrder(t *testing.T) {
	svc, db := setupWalletServiceTest(t)

	if _, _, err := svc.Recharge(WalletRechargeInput{UserID: 21, Amount: money(t, "300")}); err != nil {
		t.Fatalf("recharge failed: %v", err)
	}
	if _, _, err := svc.GrantCoins(WalletCoinGrantInput{UserID: 21, Coins: 100}); err != nil {
		t.Fatalf("grant coins failed: %v", err)
	}

	input := OrderDebitInput{
		OrderID:      900,
		UserID:       21,
		WalletAmount: money(t, "120.50"),
		CoinAmount:   40,
		CoinValue:    money(t, "10"),
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		txn, err := svc.DebitForOrderTx(tx, input)
		if err != nil {
			return err
		}
		assertMoney(t, "debit amount", txn.Amount, "120.5")
		if txn.CoinAmount != 40 {
			t.Fatalf("debit coins want 40 got %d", txn.CoinAmount)
		}
		assertMoney(t, "balance after", txn.BalanceAfter, "179.5")
		if txn.CoinAfter != 60 {
			t.Fatalf("coin after want 60 got %d", txn.CoinAfter)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("debit transaction failed: %v", err)
	}

	account, err := svc.GetAccount(21)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	assertMoney(t, "balance", account.Balance, "179.5")
	if account.CoinBalance != 60 {
		t.Fatalf("coin balance want 60 got %d", account.CoinBalance)
	}
}

func TestWalletServiceDebitForOrderIsIdempotent(t *testing.T) {
	svc, db := setupWalletServiceTest(t)

	if _, _, err := svc.Recharge(WalletRechargeInput{UserID: 22, Amount: money(t, "200")}); err != nil {
		t.Fatalf("recharge failed: %v", err)
	}

	input := OrderDebitInput{
		OrderID:      901,
		UserID:       22,
		WalletAmount: money(t, "50"),
	}
	for i := 0; i < 2; i++ {
		if err := db.Transaction(func(tx *gorm.DB) error {
			_, err := svc.DebitForOrderTx(tx, input)
			return err
		}); err != nil {
			t.Fatalf("debit attempt %d failed: %v", i+1, err)
		}
	}

	account, err := svc.GetAccount(22)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	assertMoney(t, "balance", account.Balance, "150")

	var count int64
	if err := db.Model(&models.WalletTransaction{}).Where("user_id = ?", 22).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 2 { // recharge + one debit
		t.Fatalf("transaction count want 2 got %d", count)
	}
}

func TestWalletServiceDebitForOrderInsufficient(t *testing.T) {
	svc, db := setupWalletServiceTest(t)

	if _, _, err := svc.Recharge(WalletRechargeInput{UserID: 23, Amount: money(t, "30")}); err != nil {
		t.Fatalf("recharge failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.DebitForOrderTx(tx, OrderDebitInput{
			OrderID:      902,
			UserID:       23,
			WalletAmount: money(t, "100"),
		})
		return err
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance got %v", err)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.DebitForOrderTx(tx, OrderDebitInput{
			OrderID:    903,
			UserID:     23,
			CoinAmount: 5,
		})
		return err
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("coin overdraft want ErrInsufficientBalance got %v", err)
	}
}

func TestWalletServiceDebitForOrderNoop(t *testing.T) {
	svc, db := setupWalletServiceTest(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		txn, err := svc.DebitForOrderTx(tx, OrderDebitInput{OrderID: 904, UserID: 24})
		if err != nil {
			return err
		}
		if txn != nil {
			t.Fatalf("zero debit should return nil txn")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("noop debit failed: %v", err)
	}
}

func TestWalletServiceRefundForOrder(t *testing.T) {
	svc, db := setupWalletServiceTest(t)

	if _, _, err := svc.Recharge(WalletRechargeInput{UserID: 25, Amount: money(t, "200")}); err != nil {
		t.Fatalf("recharge failed: %v", err)
	}
	if _, _, err := svc.GrantCoins(WalletCoinGrantInput{UserID: 25, Coins: 80}); err != nil {
		t.Fatalf("grant coins failed: %v", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.DebitForOrderTx(tx, OrderDebitInput{
			OrderID:      905,
			UserID:       25,
			WalletAmount: money(t, "150"),
			CoinAmount:   80,
		})
		return err
	}); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	order := &models.Order{
		ID:               905,
		UserID:           25,
		WalletPaidAmount: money(t, "150"),
		CoinPaidAmount:   80,
	}
	for i := 0; i < 2; i++ { // 重复退款应幂等
		if err := db.Transaction(func(tx *gorm.DB) error {
			_, err := svc.RefundForOrderTx(tx, order, "订单取消")
			return err
		}); err != nil {
			t.Fatalf("refund attempt %d failed: %v", i+1, err)
		}
	}

	account, err := svc.GetAccount(25)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	assertMoney(t, "balance", account.Balance, "200")
	if account.CoinBalance != 80 {
		t.Fatalf("coin balance want 80 got %d", account.CoinBalance)
	}
}
