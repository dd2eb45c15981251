package service

import (
	"context"

	"github.com/kharido-next/internal/config"
	"github.com/kharido-next/internal/models"
	"github.com/kharido-next/internal/payment/razorpay"
)

// GatewayInitiateInput 网关下单输入
type GatewayInitiateInput struct {
	Receipt string
	Amount  models.Money
	UserID  uint
}

// GatewayOrder 网关订单
type GatewayOrder struct {
	GatewayOrderID string `json:"gateway_order_id"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
}

// PaymentVerification 支付回调凭据，恰好消费一次
type PaymentVerification struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
}

// PaymentGateway 支付网关适配接口
type PaymentGateway interface {
	Initiate(ctx context.Context, input GatewayInitiateInput) (*GatewayOrder, error)
	Verify(input PaymentVerification) error
	CheckoutOptions(order *GatewayOrder, prefill map[string]string) map[string]interface{}
}

// RazorpayGateway Razorpay 网关实现
type RazorpayGateway struct {
	cfg *razorpay.Config
}

// NewRazorpayGateway 创建 Razorpay 网关
func NewRazorpayGateway(cfg config.RazorpayConfig) (*RazorpayGateway, error) {
	parsed, err := razorpay.ParseConfig(map[string]interface{}{
		"key_id":     cfg.KeyID,
		"key_secret": cfg.KeySecret,
		"api_base":   cfg.APIBase,
		"currency":   cfg.Currency,
		"timeout_ms": cfg.TimeoutMS,
	})
	if err != nil {
		return nil, err
	}
	if err := razorpay.ValidateConfig(parsed); err != nil {
		return nil, err
	}
	return &RazorpayGateway{cfg: parsed}, nil
}

// Initiate 创建网关订单
func (g *RazorpayGateway) Initiate(ctx context.Context, input GatewayInitiateInput) (*GatewayOrder, error) {
	result, err := razorpay.CreateOrder(ctx, g.cfg, razorpay.CreateInput{
		Receipt: input.Receipt,
		Amount:  input.Amount.Decimal,
	})
	if err != nil {
		return nil, err
	}
	return &GatewayOrder{
		GatewayOrderID: result.GatewayOrderID,
		AmountPaise:    result.AmountPaise,
		Currency:       result.Currency,
	}, nil
}

// Verify 校验回调签名
func (g *RazorpayGateway) Verify(input PaymentVerification) error {
	return razorpay.VerifySignature(g.cfg, razorpay.CallbackInput{
		GatewayOrderID:   input.GatewayOrderID,
		GatewayPaymentID: input.GatewayPaymentID,
		Signature:        input.Signature,
	})
}

// CheckoutOptions 生成前端收银台参数
func (g *RazorpayGateway) CheckoutOptions(order *GatewayOrder, prefill map[string]string) map[string]interface{} {
	if order == nil {
		return nil
	}
	return razorpay.BuildCheckoutOptions(g.cfg, &razorpay.CreateResult{
		GatewayOrderID: order.GatewayOrderID,
		AmountPaise:    order.AmountPaise,
		Currency:       order.Currency,
	}, prefill)
}
