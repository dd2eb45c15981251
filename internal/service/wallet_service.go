package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/kharido-next/internal/constants"
	"github.com/kharido-next/internal/models"
	"github.com/kharido-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletService 钱包服务，管理余额与金币两种资产
type WalletService struct {
	walletRepo repository.WalletRepository
}

// WalletRechargeInput 充值参数
type WalletRechargeInput struct {
	UserID uint
	Amount models.Money
	Remark string
}

// WalletCoinGrantInput 金币发放输入
type WalletCoinGrantInput struct {
	UserID uint
	Coins  int64
	Remark string
}

// OrderDebitInput 订单提交时的扣减输入
type OrderDebitInput struct {
	OrderID      uint
	UserID       uint
	WalletAmount models.Money
	CoinAmount   int64
	CoinValue    models.Money
}

// walletMutation 描述一次余额/金币变动，delta 带符号
type walletMutation struct {
	userID    uint
	orderID   *uint
	balance   decimal.Decimal
	coins     int64
	txnType   string
	reference string
	remark    string
}

func (m walletMutation) direction() string {
	if m.balance.LessThan(decimal.Zero) || m.coins < 0 {
		return constants.WalletTxnDirectionOut
	}
	return constants.WalletTxnDirectionIn
}

// NewWalletService 构造钱包服务
func NewWalletService(walletRepo repository.WalletRepository) *WalletService {
	return &WalletService{walletRepo: walletRepo}
}

// GetSnapshot 获取用户余额快照（账户不存在时自动创建）
func (s *WalletService) GetSnapshot(userID uint) (BalanceSnapshot, error) {
	account, err := s.GetAccount(userID)
	if err != nil {
		return BalanceSnapshot{}, err
	}
	return BalanceSnapshot{
		WalletBalance: account.Balance,
		CoinBalance:   account.CoinBalance,
	}, nil
}

// GetAccount 读取钱包账户，首次访问时落库创建
func (s *WalletService) GetAccount(userID uint) (*models.WalletAccount, error) {
	if userID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	account, err := s.walletRepo.GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = newWalletAccount(userID, time.Now())
	if err := s.walletRepo.CreateAccount(account); err != nil {
		// 并发创建冲突时读已有行
		if created, queryErr := s.walletRepo.GetAccountByUserID(userID); queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return account, nil
}

// ListTransactions 分页查询流水
func (s *WalletService) ListTransactions(filter repository.WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	return s.walletRepo.ListTransactions(filter)
}

// Recharge 为用户增加余额
func (s *WalletService) Recharge(input WalletRechargeInput) (*models.WalletAccount, *models.WalletTransaction, error) {
	if input.UserID == 0 {
		return nil, nil, ErrWalletAccountNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrWalletInvalidAmount
	}
	return s.mutate(walletMutation{
		userID:    input.UserID,
		balance:   amount,
		txnType:   constants.WalletTxnTypeRecharge,
		reference: walletReference("recharge", input.UserID),
		remark:    remarkOr(input.Remark, "用户充值"),
	})
}

// GrantCoins 发放金币奖励
func (s *WalletService) GrantCoins(input WalletCoinGrantInput) (*models.WalletAccount, *models.WalletTransaction, error) {
	if input.UserID == 0 {
		return nil, nil, ErrWalletAccountNotFound
	}
	if input.Coins <= 0 {
		return nil, nil, ErrWalletInvalidAmount
	}
	return s.mutate(walletMutation{
		userID:    input.UserID,
		coins:     input.Coins,
		txnType:   constants.WalletTxnTypeCoinReward,
		reference: walletReference("coin_reward", input.UserID),
		remark:    remarkOr(input.Remark, "金币奖励"),
	})
}

// DebitForOrderTx 在事务内为订单扣减余额与金币并记录流水
// 账户行加锁读取，余额不足返回 ErrInsufficientBalance；
// 以订单号为参考号保证幂等，重复提交不会二次扣减。
func (s *WalletService) DebitForOrderTx(tx *gorm.DB, input OrderDebitInput) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	if input.UserID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	walletAmount := input.WalletAmount.Decimal.Round(2)
	if walletAmount.LessThan(decimal.Zero) || input.CoinAmount < 0 {
		return nil, ErrWalletInvalidAmount
	}
	if walletAmount.IsZero() && input.CoinAmount == 0 {
		return nil, nil
	}

	orderID := input.OrderID
	_, txn, err := s.applyTx(tx, walletMutation{
		userID:    input.UserID,
		orderID:   &orderID,
		balance:   walletAmount.Neg(),
		coins:     -input.CoinAmount,
		txnType:   constants.WalletTxnTypeOrderPay,
		reference: orderWalletReference(input.OrderID, constants.WalletTxnTypeOrderPay),
		remark:    "订单支付抵扣",
	})
	return txn, err
}

// RefundForOrderTx 在事务内将订单已扣余额与金币退回钱包
// 同一订单重复退回由参考号幂等保护。
func (s *WalletService) RefundForOrderTx(tx *gorm.DB, order *models.Order, remark string) (*models.WalletTransaction, error) {
	if tx == nil {
		return nil, ErrWalletAccountUpdateFailed
	}
	if order == nil || order.UserID == 0 {
		return nil, nil
	}
	amount := order.WalletPaidAmount.Decimal.Round(2)
	coins := order.CoinPaidAmount
	if amount.LessThanOrEqual(decimal.Zero) && coins <= 0 {
		return nil, nil
	}

	orderID := order.ID
	_, txn, err := s.applyTx(tx, walletMutation{
		userID:    order.UserID,
		orderID:   &orderID,
		balance:   amount,
		coins:     coins,
		txnType:   constants.WalletTxnTypeOrderRefund,
		reference: orderWalletReference(order.ID, constants.WalletTxnTypeOrderRefund),
		remark:    remarkOr(remark, "订单退回"),
	})
	return txn, err
}

// mutate 在独立事务中应用一次变动
func (s *WalletService) mutate(m walletMutation) (*models.WalletAccount, *models.WalletTransaction, error) {
	var account *models.WalletAccount
	var txn *models.WalletTransaction
	err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		var innerErr error
		account, txn, innerErr = s.applyTx(tx, m)
		return innerErr
	})
	if err != nil {
		return nil, nil, err
	}
	return account, txn, nil
}

// applyTx 在调用方事务内应用变动：幂等检查、锁行、改余额、记流水
func (s *WalletService) applyTx(tx *gorm.DB, m walletMutation) (*models.WalletAccount, *models.WalletTransaction, error) {
	repo := s.walletRepo.WithTx(tx)
	now := time.Now()

	existing, err := repo.GetTransactionByReference(m.reference)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, existing, nil
	}

	account, err := lockOrCreateAccount(repo, m.userID, now)
	if err != nil {
		return nil, nil, err
	}

	balanceBefore := account.Balance.Decimal.Round(2)
	balanceAfter := balanceBefore.Add(m.balance).Round(2)
	coinBefore := account.CoinBalance
	coinAfter := coinBefore + m.coins
	if balanceAfter.LessThan(decimal.Zero) || coinAfter < 0 {
		return nil, nil, ErrInsufficientBalance
	}

	account.Balance = models.NewMoneyFromDecimal(balanceAfter)
	account.CoinBalance = coinAfter
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return nil, nil, ErrWalletAccountUpdateFailed
	}

	coinAmount := m.coins
	if coinAmount < 0 {
		coinAmount = -coinAmount
	}
	txn := &models.WalletTransaction{
		UserID:        m.userID,
		OrderID:       m.orderID,
		Type:          m.txnType,
		Direction:     m.direction(),
		Amount:        models.NewMoneyFromDecimal(m.balance.Abs().Round(2)),
		CoinAmount:    coinAmount,
		BalanceBefore: models.NewMoneyFromDecimal(balanceBefore),
		BalanceAfter:  models.NewMoneyFromDecimal(balanceAfter),
		CoinBefore:    coinBefore,
		CoinAfter:     coinAfter,
		Currency:      constants.DefaultCurrency,
		Reference:     m.reference,
		Remark:        m.remark,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	return account, txn, nil
}

func newWalletAccount(userID uint, now time.Time) *models.WalletAccount {
	return &models.WalletAccount{
		UserID:    userID,
		Balance:   models.ZeroMoney(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func lockOrCreateAccount(repo *repository.GormWalletRepository, userID uint, now time.Time) (*models.WalletAccount, error) {
	account, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = newWalletAccount(userID, now)
	if err := repo.CreateAccount(account); err != nil {
		if created, queryErr := repo.GetAccountByUserIDForUpdate(userID); queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return account, nil
}

func remarkOr(raw string, fallback string) string {
	if remark := strings.TrimSpace(raw); remark != "" {
		return remark
	}
	return fallback
}

func orderWalletReference(orderID uint, action string) string {
	if strings.TrimSpace(action) == "" {
		action = "wallet"
	}
	return fmt.Sprintf("order:%d:%s", orderID, action)
}

// walletReference 非订单类流水的参考号，时间戳保证唯一
func walletReference(prefix string, id uint) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = "wallet"
	}
	return fmt.Sprintf("%s:%d:%d", prefix, id, time.Now().UnixNano())
}
