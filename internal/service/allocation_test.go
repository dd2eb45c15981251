package service

import (
	"testing"

	"github.com/kharido-next/internal/constants"
	"github.com/kharido-next/internal/models"

	"github.com/shopspring/decimal"
)

func money(t *testing.T, value string) models.Money {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse money %s failed: %v", value, err)
	}
	return models.NewMoneyFromDecimal(d)
}

func assertMoney(t *testing.T, name string, got models.Money, want string) {
	t.Helper()
	if !got.Decimal.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s want %s got %s", name, want, got.Decimal.String())
	}
}

func TestReconcilePartialWalletAndCoins(t *testing.T) {
	state := Reconcile(AllocationInput{
		GrandTotal: money(t, "1000"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "500"),
			CoinBalance:   100,
		},
		RequestedWallet: money(t, "300"),
		RequestedCoins:  40,
		Channel:         constants.PaymentChannelOnline,
	})

	assertMoney(t, "wallet", state.WalletAmount, "300")
	if state.CoinAmount != 40 {
		t.Fatalf("coins want 40 got %d", state.CoinAmount)
	}
	assertMoney(t, "coin value", state.CoinValue, "10")
	assertMoney(t, "remaining", state.RemainingAmount, "690")
	if state.Channel != constants.PaymentChannelOnline {
		t.Fatalf("channel want online got %s", state.Channel)
	}
}

func TestReconcileFullWalletCoverageDowngradesToCOD(t *testing.T) {
	state := Reconcile(AllocationInput{
		GrandTotal: money(t, "500"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "800"),
		},
		RequestedWallet: money(t, "500"),
		Channel:         constants.PaymentChannelOnline,
	})

	assertMoney(t, "wallet", state.WalletAmount, "500")
	assertMoney(t, "remaining", state.RemainingAmount, "0")
	if state.Channel != constants.PaymentChannelCOD {
		t.Fatalf("fully covered order should downgrade to cod, got %s", state.Channel)
	}
}

func TestReconcileNeverUpgradesCODToOnline(t *testing.T) {
	state := Reconcile(AllocationInput{
		GrandTotal: money(t, "500"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "100"),
		},
		RequestedWallet: money(t, "100"),
		Channel:         constants.PaymentChannelCOD,
	})

	assertMoney(t, "remaining", state.RemainingAmount, "400")
	if state.Channel != constants.PaymentChannelCOD {
		t.Fatalf("cod with remaining due must stay cod, got %s", state.Channel)
	}
}

func TestReconcileCapsCoinsToRemainingRoom(t *testing.T) {
	state := Reconcile(AllocationInput{
		GrandTotal: money(t, "200"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "50"),
			CoinBalance:   1000,
		},
		RequestedWallet: money(t, "50"),
		RequestedCoins:  1000,
		Channel:         constants.PaymentChannelOnline,
	})

	// 钱包扣完剩 150 卢比空间，最多 600 金币
	if state.CoinAmount != 600 {
		t.Fatalf("coins want 600 got %d", state.CoinAmount)
	}
	assertMoney(t, "coin value", state.CoinValue, "150")
	assertMoney(t, "remaining", state.RemainingAmount, "0")
	if state.Channel != constants.PaymentChannelCOD {
		t.Fatalf("fully covered order should downgrade to cod, got %s", state.Channel)
	}
}

func TestReconcileCoinRoomFloorsFractionalCoins(t *testing.T) {
	state := Reconcile(AllocationInput{
		GrandTotal: money(t, "10.30"),
		Balances: BalanceSnapshot{
			CoinBalance: 500,
		},
		RequestedCoins: 500,
	})

	// 10.30 × 4 = 41.2 → 41 金币
	if state.CoinAmount != 41 {
		t.Fatalf("coins want 41 got %d", state.CoinAmount)
	}
	assertMoney(t, "coin value", state.CoinValue, "10.25")
	assertMoney(t, "remaining", state.RemainingAmount, "0.05")
}

func TestReconcileClampsRequestsToBalances(t *testing.T) {
	state := Reconcile(AllocationInput{
		GrandTotal: money(t, "1000"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "120"),
			CoinBalance:   30,
		},
		RequestedWallet: money(t, "900"),
		RequestedCoins:  400,
	})

	assertMoney(t, "wallet", state.WalletAmount, "120")
	if state.CoinAmount != 30 {
		t.Fatalf("coins want 30 got %d", state.CoinAmount)
	}
	assertMoney(t, "remaining", state.RemainingAmount, "872.5")
}

func TestReconcileClampsNegativeInputs(t *testing.T) {
	state := Reconcile(AllocationInput{
		GrandTotal: money(t, "100"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "-5"),
			CoinBalance:   -10,
		},
		RequestedWallet: money(t, "-50"),
		RequestedCoins:  -20,
	})

	assertMoney(t, "wallet", state.WalletAmount, "0")
	if state.CoinAmount != 0 {
		t.Fatalf("coins want 0 got %d", state.CoinAmount)
	}
	assertMoney(t, "remaining", state.RemainingAmount, "100")
}

func TestReconcileZeroGrandTotal(t *testing.T) {
	state := Reconcile(AllocationInput{
		GrandTotal: money(t, "0"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "100"),
			CoinBalance:   100,
		},
		RequestedWallet: money(t, "100"),
		RequestedCoins:  100,
		Channel:         constants.PaymentChannelOnline,
	})

	assertMoney(t, "wallet", state.WalletAmount, "0")
	if state.CoinAmount != 0 {
		t.Fatalf("coins want 0 got %d", state.CoinAmount)
	}
	assertMoney(t, "remaining", state.RemainingAmount, "0")
	if state.Channel != constants.PaymentChannelCOD {
		t.Fatalf("zero total should need no gateway, got %s", state.Channel)
	}
}

func TestReconcileResetCoinsOnCOD(t *testing.T) {
	input := AllocationInput{
		GrandTotal: money(t, "400"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "100"),
			CoinBalance:   200,
		},
		RequestedWallet: money(t, "100"),
		RequestedCoins:  200,
		Channel:         constants.PaymentChannelCOD,
		Policy:          AllocationPolicy{ResetCoinsOnCOD: true},
	}

	state := Reconcile(input)
	if state.CoinAmount != 0 {
		t.Fatalf("cod with reset policy should zero coins, got %d", state.CoinAmount)
	}
	assertMoney(t, "remaining", state.RemainingAmount, "300")

	input.Policy.ResetCoinsOnCOD = false
	state = Reconcile(input)
	if state.CoinAmount != 200 {
		t.Fatalf("cod without reset policy should keep coins, got %d", state.CoinAmount)
	}
	assertMoney(t, "remaining", state.RemainingAmount, "250")
}

func TestReconcileForcedDowngradeKeepsCoins(t *testing.T) {
	// 用户选择 online，全额抵扣触发自动降级为 cod，
	// 此时清零策略不生效，否则会清掉促成全额覆盖的金币。
	state := Reconcile(AllocationInput{
		GrandTotal: money(t, "200"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "50"),
			CoinBalance:   1000,
		},
		RequestedWallet: money(t, "50"),
		RequestedCoins:  600,
		Channel:         constants.PaymentChannelOnline,
		Policy:          AllocationPolicy{ResetCoinsOnCOD: true},
	})

	if state.Channel != constants.PaymentChannelCOD {
		t.Fatalf("channel want cod got %s", state.Channel)
	}
	if state.CoinAmount != 600 {
		t.Fatalf("forced downgrade must keep coins, got %d", state.CoinAmount)
	}
	assertMoney(t, "remaining", state.RemainingAmount, "0")
}

func TestReconcileIsIdempotent(t *testing.T) {
	input := AllocationInput{
		GrandTotal: money(t, "753.40"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "321.55"),
			CoinBalance:   777,
		},
		RequestedWallet: money(t, "400"),
		RequestedCoins:  900,
		Channel:         constants.PaymentChannelOnline,
	}

	first := Reconcile(input)
	second := Reconcile(AllocationInput{
		GrandTotal:      first.GrandTotal,
		Balances:        input.Balances,
		RequestedWallet: first.WalletAmount,
		RequestedCoins:  first.CoinAmount,
		Channel:         first.Channel,
	})

	if !first.WalletAmount.Decimal.Equal(second.WalletAmount.Decimal) {
		t.Fatalf("wallet not stable: %s vs %s", first.WalletAmount, second.WalletAmount)
	}
	if first.CoinAmount != second.CoinAmount {
		t.Fatalf("coins not stable: %d vs %d", first.CoinAmount, second.CoinAmount)
	}
	if !first.RemainingAmount.Decimal.Equal(second.RemainingAmount.Decimal) {
		t.Fatalf("remaining not stable: %s vs %s", first.RemainingAmount, second.RemainingAmount)
	}
}

func TestReconcileInvariantSum(t *testing.T) {
	cases := []struct {
		name    string
		total   string
		wallet  string
		balance string
		coins   int64
		request int64
	}{
		{name: "partial", total: "999.99", wallet: "100.50", balance: "200", coins: 500, request: 123},
		{name: "overshoot", total: "50", wallet: "100", balance: "100", coins: 1000, request: 1000},
		{name: "exact", total: "75.25", wallet: "75.25", balance: "80", coins: 0, request: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := Reconcile(AllocationInput{
				GrandTotal: money(t, tc.total),
				Balances: BalanceSnapshot{
					WalletBalance: money(t, tc.balance),
					CoinBalance:   tc.coins,
				},
				RequestedWallet: money(t, tc.wallet),
				RequestedCoins:  tc.request,
			})

			sum := state.WalletAmount.Decimal.
				Add(state.CoinValue.Decimal).
				Add(state.RemainingAmount.Decimal)
			if !sum.Equal(state.GrandTotal.Decimal) {
				t.Fatalf("wallet+coinValue+remaining=%s want %s", sum, state.GrandTotal.Decimal)
			}
			if state.RemainingAmount.Decimal.LessThan(decimal.Zero) {
				t.Fatalf("remaining must be non-negative, got %s", state.RemainingAmount)
			}
		})
	}
}

func TestReconcileWalletRequestMonotonic(t *testing.T) {
	// 提高钱包抵扣请求时，待付金额不增加，且降幅不超过请求的增量
	step := decimal.NewFromInt(25)
	input := AllocationInput{
		GrandTotal: money(t, "1000"),
		Balances: BalanceSnapshot{
			WalletBalance: money(t, "600"),
			CoinBalance:   100,
		},
		RequestedCoins: 40,
		Channel:        constants.PaymentChannelOnline,
	}

	prev := Reconcile(input).RemainingAmount.Decimal
	for requested := step; requested.LessThanOrEqual(decimal.NewFromInt(1200)); requested = requested.Add(step) {
		input.RequestedWallet = models.NewMoneyFromDecimal(requested)
		remaining := Reconcile(input).RemainingAmount.Decimal

		if remaining.GreaterThan(prev) {
			t.Fatalf("requested %s: remaining %s > previous %s", requested, remaining, prev)
		}
		if prev.Sub(remaining).GreaterThan(step) {
			t.Fatalf("requested %s: remaining dropped by %s, more than the %s increase", requested, prev.Sub(remaining), step)
		}
		prev = remaining
	}
}

func TestCoinValue(t *testing.T) {
	assertMoney(t, "zero coins", CoinValue(0), "0")
	assertMoney(t, "negative coins", CoinValue(-5), "0")
	assertMoney(t, "four coins", CoinValue(4), "1")
	assertMoney(t, "odd coins", CoinValue(7), "1.75")
}

func TestNormalizeChannel(t *testing.T) {
	if got := normalizeChannel(" COD "); got != constants.PaymentChannelCOD {
		t.Fatalf("want cod got %s", got)
	}
	if got := normalizeChannel(""); got != constants.PaymentChannelOnline {
		t.Fatalf("empty channel should default to online, got %s", got)
	}
	if got := normalizeChannel("upi"); got != constants.PaymentChannelOnline {
		t.Fatalf("unknown channel should default to online, got %s", got)
	}
}
