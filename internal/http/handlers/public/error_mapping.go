package public

import (
	"errors"

	"github.com/kharido-next/internal/http/response"
	"github.com/kharido-next/internal/service"

	"github.com/gin-gonic/gin"
)

// errorRule 将业务错误映射为接口状态码与消息键
type errorRule struct {
	target error
	code   int
	key    string
}

// respondMapped 按规则表响应业务错误，未命中走兜底并落日志
func respondMapped(c *gin.Context, err error, rules []errorRule, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func mergeRules(groups ...[]errorRule) []errorRule {
	var merged []errorRule
	for _, group := range groups {
		merged = append(merged, group...)
	}
	return merged
}

var couponErrorRules = []errorRule{
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, key: "error.coupon_invalid"},
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, key: "error.coupon_not_found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, key: "error.coupon_inactive"},
	{target: service.ErrCouponNotStarted, code: response.CodeBadRequest, key: "error.coupon_not_started"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, key: "error.coupon_expired"},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, key: "error.coupon_usage_limit"},
	{target: service.ErrCouponPerUserLimit, code: response.CodeBadRequest, key: "error.coupon_per_user_limit"},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest, key: "error.coupon_min_amount"},
}

// 报价与下单共用购物车和优惠券校验错误
var checkoutQuoteErrorRules = mergeRules([]errorRule{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrInvalidChannel, code: response.CodeBadRequest, key: "error.channel_invalid"},
}, couponErrorRules)

var checkoutPlaceErrorRules = mergeRules(checkoutQuoteErrorRules, []errorRule{
	{target: service.ErrCheckoutInProgress, code: response.CodeTooManyRequests, key: "error.checkout_in_progress"},
	{target: service.ErrInsufficientBalance, code: response.CodeBadRequest, key: "error.wallet_insufficient_balance"},
	{target: service.ErrGatewayInit, code: response.CodeInternal, key: "error.gateway_init_failed"},
})

var checkoutConfirmErrorRules = []errorRule{
	{target: service.ErrSessionNotFound, code: response.CodeNotFound, key: "error.checkout_session_not_found"},
	{target: service.ErrInvalidTransition, code: response.CodeBadRequest, key: "error.checkout_state_invalid"},
	{target: service.ErrVerificationFailed, code: response.CodeBadRequest, key: "error.payment_verification_failed"},
	{target: service.ErrOrderNotConfirmed, code: response.CodeInternal, key: "error.payment_captured_order_unconfirmed"},
}

var checkoutCancelErrorRules = []errorRule{
	{target: service.ErrSessionNotFound, code: response.CodeNotFound, key: "error.checkout_session_not_found"},
	{target: service.ErrInvalidTransition, code: response.CodeBadRequest, key: "error.checkout_state_invalid"},
	{target: service.ErrGatewayCanceled, code: response.CodeBadRequest, key: "error.payment_canceled"},
}
