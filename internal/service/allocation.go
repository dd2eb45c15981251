package service

import (
	"strings"

	"github.com/kharido-next/internal/constants"
	"github.com/kharido-next/internal/models"

	"github.com/shopspring/decimal"
)

// coinRate 金币兑换率：4 金币 = ₹1
var coinRate = decimal.RequireFromString(constants.CoinToRupeeRate)

// BalanceSnapshot 结算开始时的余额快照
// 结算过程中作为上限使用，提交成功前不做任何扣减。
type BalanceSnapshot struct {
	WalletBalance models.Money `json:"wallet_balance"`
	CoinBalance   int64        `json:"coin_balance"`
}

// AllocationPolicy 分摊策略
type AllocationPolicy struct {
	// ResetCoinsOnCOD 用户选择货到付款时清零金币抵扣，避免现金结算时重复抵扣
	ResetCoinsOnCOD bool
}

// AllocationInput 分摊计算输入
type AllocationInput struct {
	GrandTotal      models.Money
	Balances        BalanceSnapshot
	RequestedWallet models.Money
	RequestedCoins  int64
	Channel         string
	Policy          AllocationPolicy
}

// AllocationState 分摊结果
// 每次输入变化都整体重建，任何时刻都满足内部一致性约束。
type AllocationState struct {
	GrandTotal      models.Money `json:"grand_total"`
	WalletAmount    models.Money `json:"wallet_amount"`
	CoinAmount      int64        `json:"coin_amount"`
	CoinValue       models.Money `json:"coin_value"`
	RemainingAmount models.Money `json:"remaining_amount"`
	Channel         string       `json:"channel"`
}

// CoinValue 计算金币的货币价值
func CoinValue(coins int64) models.Money {
	if coins <= 0 {
		return models.ZeroMoney()
	}
	return models.NewMoneyFromDecimal(decimal.NewFromInt(coins).Mul(coinRate))
}

// Reconcile 计算一次内部一致的支付分摊
// 纯函数，永不报错：越界输入一律收敛到边界值。任何输入变化
// （余额刷新、用户改动钱包/金币输入、渠道切换、总价变化）后都必须重新调用。
func Reconcile(input AllocationInput) AllocationState {
	grandTotal := input.GrandTotal.Decimal.Round(2)
	if grandTotal.LessThan(decimal.Zero) {
		grandTotal = decimal.Zero
	}

	channel := normalizeChannel(input.Channel)

	requestedCoins := input.RequestedCoins
	// 货到付款清零金币抵扣是业务规则而非推导约束，由策略开关控制
	if channel == constants.PaymentChannelCOD && input.Policy.ResetCoinsOnCOD {
		requestedCoins = 0
	}

	// 钱包金额收敛：0 ≤ wallet ≤ min(钱包余额, 应付总额)
	wallet := input.RequestedWallet.Decimal.Round(2)
	if wallet.LessThan(decimal.Zero) {
		wallet = decimal.Zero
	}
	walletBalance := input.Balances.WalletBalance.Decimal.Round(2)
	if walletBalance.LessThan(decimal.Zero) {
		walletBalance = decimal.Zero
	}
	if wallet.GreaterThan(walletBalance) {
		wallet = walletBalance
	}
	if wallet.GreaterThan(grandTotal) {
		wallet = grandTotal
	}

	// 金币收敛：0 ≤ coins ≤ 金币余额，且货币价值不超过钱包扣完后的剩余空间
	coins := requestedCoins
	if coins < 0 {
		coins = 0
	}
	coinBalance := input.Balances.CoinBalance
	if coinBalance < 0 {
		coinBalance = 0
	}
	if coins > coinBalance {
		coins = coinBalance
	}
	coins = capCoinsToRoom(coins, grandTotal.Sub(wallet))

	// 输入编辑过程中可能出现短暂超额，先削金币（单位价值更小）再削钱包
	coinValue := decimal.NewFromInt(coins).Mul(coinRate)
	if wallet.Add(coinValue).GreaterThan(grandTotal) {
		coins = capCoinsToRoom(coins, grandTotal.Sub(wallet))
		coinValue = decimal.NewFromInt(coins).Mul(coinRate)
		if wallet.Add(coinValue).GreaterThan(grandTotal) {
			wallet = grandTotal.Sub(coinValue)
			if wallet.LessThan(decimal.Zero) {
				wallet = decimal.Zero
			}
		}
	}

	remaining := grandTotal.Sub(wallet).Sub(coinValue)
	if remaining.LessThan(decimal.Zero) {
		remaining = decimal.Zero
	}

	// 全额覆盖的订单不需要网关，在线渠道自动降级为货到付款；
	// 反向（cod → online）永远不自动发生，只能由用户显式切换。
	if remaining.IsZero() && channel == constants.PaymentChannelOnline {
		channel = constants.PaymentChannelCOD
	}

	return AllocationState{
		GrandTotal:      models.NewMoneyFromDecimal(grandTotal),
		WalletAmount:    models.NewMoneyFromDecimal(wallet),
		CoinAmount:      coins,
		CoinValue:       models.NewMoneyFromDecimal(coinValue),
		RemainingAmount: models.NewMoneyFromDecimal(remaining),
		Channel:         channel,
	}
}

// capCoinsToRoom 将金币数量限制在给定货币空间内：floor(room × 4)
func capCoinsToRoom(coins int64, room decimal.Decimal) int64 {
	if coins <= 0 {
		return 0
	}
	if room.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	maxCoins := room.Mul(decimal.NewFromInt(constants.CoinsPerRupee)).Floor().IntPart()
	if coins > maxCoins {
		return maxCoins
	}
	return coins
}

func normalizeChannel(channel string) string {
	switch strings.ToLower(strings.TrimSpace(channel)) {
	case constants.PaymentChannelCOD:
		return constants.PaymentChannelCOD
	default:
		return constants.PaymentChannelOnline
	}
}
