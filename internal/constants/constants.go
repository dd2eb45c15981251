package constants

// 订单状态常量
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusCodPending     = "cod_pending"
	OrderStatusCanceled       = "canceled"
)

// 结算会话状态常量
const (
	CheckoutStateIdle            = "idle"
	CheckoutStateAllocating      = "allocating"
	CheckoutStateAwaitingGateway = "awaiting_gateway"
	CheckoutStateVerifying       = "verifying"
	CheckoutStateCommitting      = "committing"
	CheckoutStateConfirmed       = "confirmed"
	CheckoutStateRolledBack      = "rolled_back"
)

// 支付渠道常量
const (
	PaymentChannelOnline = "online"
	PaymentChannelCOD    = "cod"
)

// 支付状态常量
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	// PaymentStatusCaptured 网关已扣款但订单未落库，需人工对账
	PaymentStatusCaptured = "captured"
)

// 支付提供方常量
const (
	PaymentProviderRazorpay = "razorpay"
	PaymentProviderWallet   = "wallet"
	PaymentProviderCOD      = "cod"
)

// 优惠券类型常量
const (
	CouponTypeFixed   = "fixed"
	CouponTypePercent = "percent"
)

// 退换货选项常量
const (
	ReturnOptionNone     = "none"
	ReturnOptionStandard = "standard"
	ReturnOptionInstant  = "instant"
)

// 钱包交易类型常量
const (
	WalletTxnTypeRecharge    = "recharge"
	WalletTxnTypeOrderPay    = "order_pay"
	WalletTxnTypeOrderRefund = "order_refund"
	WalletTxnTypeCoinReward  = "coin_reward"
)

// 钱包交易方向常量
const (
	WalletTxnDirectionIn  = "in"
	WalletTxnDirectionOut = "out"
)

// 金币兑换常量：4 金币 = ₹1
const (
	CoinsPerRupee   = 4
	CoinToRupeeRate = "0.25"
	DefaultCurrency = "INR"
)

// 队列常量
const (
	QueueDefault = "default"

	TaskOrderConfirmed = "checkout:order_confirmed"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
