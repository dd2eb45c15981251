package service

import "errors"

// 结算流程错误
var (
	ErrCartEmpty          = errors.New("购物车为空")
	ErrSessionNotFound    = errors.New("结算会话不存在")
	ErrCheckoutInProgress = errors.New("已有进行中的结算，请勿重复提交")
	ErrInvalidTransition  = errors.New("结算状态流转非法")
	ErrInvalidChannel     = errors.New("支付渠道无效")
	ErrGatewayInit        = errors.New("支付网关下单失败")
	ErrGatewayCanceled    = errors.New("用户取消了支付")
	ErrVerificationFailed = errors.New("支付签名校验失败")
	ErrOrderNotConfirmed  = errors.New("支付已扣款但订单未确认，请联系客服处理")
)

// 钱包错误
var (
	ErrWalletAccountNotFound         = errors.New("钱包账户不存在")
	ErrWalletAccountCreateFailed     = errors.New("钱包账户创建失败")
	ErrWalletAccountUpdateFailed     = errors.New("钱包账户更新失败")
	ErrWalletTransactionCreateFailed = errors.New("钱包流水写入失败")
	ErrWalletInvalidAmount           = errors.New("金额无效")
	ErrInsufficientBalance           = errors.New("余额或金币不足，请重新结算")
)

// 优惠券错误
var (
	ErrCouponInvalid      = errors.New("优惠券无效")
	ErrCouponNotFound     = errors.New("优惠券不存在")
	ErrCouponInactive     = errors.New("优惠券已停用")
	ErrCouponNotStarted   = errors.New("优惠券未生效")
	ErrCouponExpired      = errors.New("优惠券已过期")
	ErrCouponUsageLimit   = errors.New("优惠券已被领完")
	ErrCouponPerUserLimit = errors.New("优惠券使用次数已达上限")
	ErrCouponMinAmount    = errors.New("未达到优惠券最低消费金额")
)

// 订单错误
var (
	ErrOrderNotFound     = errors.New("订单不存在")
	ErrOrderCreateFailed = errors.New("订单创建失败")
	ErrOrderFetchFailed  = errors.New("订单查询失败")
	ErrOrderUpdateFailed = errors.New("订单更新失败")
)

// 用户错误
var (
	ErrUserNotFound      = errors.New("用户不存在")
	ErrUserDisabled      = errors.New("账户已被禁用")
	ErrPasswordIncorrect = errors.New("邮箱或密码错误")
)
