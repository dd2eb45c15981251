package public

import (
	"strings"

	"github.com/kharido-next/internal/http/response"
	"github.com/kharido-next/internal/models"
	"github.com/kharido-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CheckoutQuoteRequest 结算试算请求
type CheckoutQuoteRequest struct {
	CouponCode   string `json:"coupon_code"`
	WalletAmount string `json:"wallet_amount"`
	Coins        int64  `json:"coins"`
	Channel      string `json:"channel"`
}

func (r CheckoutQuoteRequest) toQuoteInput() (service.QuoteInput, error) {
	wallet := models.ZeroMoney()
	if trimmed := strings.TrimSpace(r.WalletAmount); trimmed != "" {
		amount, err := decimal.NewFromString(trimmed)
		if err != nil {
			return service.QuoteInput{}, err
		}
		wallet = models.NewMoneyFromDecimal(amount)
	}
	return service.QuoteInput{
		CouponCode:      strings.TrimSpace(r.CouponCode),
		RequestedWallet: wallet,
		RequestedCoins:  r.Coins,
		Channel:         strings.TrimSpace(r.Channel),
	}, nil
}

// GetCheckoutBalance 获取当前用户可用于结算的余额快照
func (h *Handler) GetCheckoutBalance(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	snapshot, err := h.WalletService.GetSnapshot(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"wallet_balance": snapshot.WalletBalance,
		"coin_balance":   snapshot.CoinBalance,
		"coin_value":     service.CoinValue(snapshot.CoinBalance),
	})
}

// QuoteCheckout 结算试算：不落库，仅刷新会话内的价格拆解与支付分摊
func (h *Handler) QuoteCheckout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toQuoteInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", err)
		return
	}
	result, err := h.CheckoutService.Quote(uid, input)
	if err != nil {
		respondMapped(c, err, checkoutPlaceErrorRules, response.CodeInternal, "error.checkout_quote_failed")
		return
	}
	response.Success(c, result)
}

// PlaceOrder 提交结算：cod 或全额抵扣直接落库，在线渠道挂起等待网关回调
func (h *Handler) PlaceOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input, err := req.toQuoteInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.amount_invalid", err)
		return
	}
	result, err := h.CheckoutService.PlaceOrder(c.Request.Context(), uid, service.PlaceOrderInput{
		CouponCode:      input.CouponCode,
		RequestedWallet: input.RequestedWallet,
		RequestedCoins:  input.RequestedCoins,
		Channel:         input.Channel,
		ClientIP:        c.ClientIP(),
	})
	if err != nil {
		respondMapped(c, err, checkoutPlaceErrorRules, response.CodeInternal, "error.order_create_failed")
		return
	}
	response.Success(c, result)
}

// ConfirmCheckoutPayment 网关回调确认：验签通过后落库
func (h *Handler) ConfirmCheckoutPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var verification service.PaymentVerification
	if err := c.ShouldBindJSON(&verification); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.CheckoutService.ConfirmPayment(c.Request.Context(), uid, verification)
	if err != nil {
		respondMapped(c, err, checkoutConfirmErrorRules, response.CodeInternal, "error.payment_confirm_failed")
		return
	}
	response.Success(c, order)
}

// CancelCheckoutPayment 用户关闭收银台：回滚会话
func (h *Handler) CancelCheckoutPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CheckoutService.CancelPayment(uid); err != nil {
		respondMapped(c, err, checkoutCancelErrorRules, response.CodeInternal, "error.payment_cancel_failed")
		return
	}
	response.Success(c, nil)
}

// GetCheckoutSession 获取当前结算会话
func (h *Handler) GetCheckoutSession(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	session, err := h.CheckoutService.GetSession(uid)
	if err != nil {
		respondMapped(c, err, checkoutCancelErrorRules, response.CodeNotFound, "error.checkout_session_not_found")
		return
	}
	response.Success(c, session)
}
