package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/kharido-next/internal/config"
	"github.com/kharido-next/internal/constants"
	"github.com/kharido-next/internal/logger"
	"github.com/kharido-next/internal/models"
	"github.com/kharido-next/internal/queue"
	"github.com/kharido-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// allowedCheckoutTransitions 结算状态机允许的流转
var allowedCheckoutTransitions = map[string]map[string]bool{
	constants.CheckoutStateIdle: {
		constants.CheckoutStateAllocating: true,
	},
	constants.CheckoutStateAllocating: {
		constants.CheckoutStateAwaitingGateway: true,
		constants.CheckoutStateCommitting:      true,
		constants.CheckoutStateIdle:            true,
		constants.CheckoutStateRolledBack:      true,
	},
	constants.CheckoutStateAwaitingGateway: {
		constants.CheckoutStateVerifying:  true,
		constants.CheckoutStateRolledBack: true,
	},
	constants.CheckoutStateVerifying: {
		constants.CheckoutStateCommitting: true,
		constants.CheckoutStateRolledBack: true,
	},
	constants.CheckoutStateCommitting: {
		constants.CheckoutStateConfirmed:  true,
		constants.CheckoutStateRolledBack: true,
	},
}

// inFlightStates PlaceOrder 进行中的状态，期间拒绝第二次提交
var inFlightStates = map[string]bool{
	constants.CheckoutStateAllocating:      true,
	constants.CheckoutStateAwaitingGateway: true,
	constants.CheckoutStateVerifying:       true,
	constants.CheckoutStateCommitting:      true,
}

// CheckoutSession 结算会话
// 每个用户同一时刻最多一个；终态（confirmed/rolled_back）后可重新从 idle 开始。
type CheckoutSession struct {
	ID             string                `json:"id"`
	UserID         uint                  `json:"user_id"`
	State          string                `json:"state"`
	Breakdown      models.PriceBreakdown `json:"breakdown"`
	Allocation     AllocationState       `json:"allocation"`
	Snapshot       BalanceSnapshot       `json:"snapshot"`
	GatewayOrderID string                `json:"gateway_order_id,omitempty"`
	OrderID        uint                  `json:"order_id,omitempty"`
	OrderNo        string                `json:"order_no,omitempty"`
	FailureReason  string                `json:"failure_reason,omitempty"`
	UpdatedAt      time.Time             `json:"updated_at"`

	// preAllocation 为进入 allocating 时的快照，rolled_back 时整体恢复
	preAllocation BalanceSnapshot
	items         []models.CartItem
	couponID      *uint
	couponCode    string
	paymentID     uint
	clientIP      string
}

// CheckoutService 结算服务：分摊计算与订单终结状态机
type CheckoutService struct {
	cfg         *config.Config
	pricingSvc  *PricingService
	couponSvc   *CouponService
	walletSvc   *WalletService
	gateway     PaymentGateway
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	couponRepo  repository.CouponRepository
	usageRepo   repository.CouponUsageRepository
	walletRepo  repository.WalletRepository
	queueClient *queue.Client

	mu         sync.Mutex
	sessions   map[uint]*CheckoutSession
	sessionTTL time.Duration
	policy     AllocationPolicy
}

// QuoteInput 结算试算输入
type QuoteInput struct {
	CouponCode      string
	RequestedWallet models.Money
	RequestedCoins  int64
	Channel         string
}

// QuoteResult 结算试算结果
type QuoteResult struct {
	Session    *CheckoutSession `json:"session"`
	Advisories []string         `json:"advisories,omitempty"`
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	CouponCode      string
	RequestedWallet models.Money
	RequestedCoins  int64
	Channel         string
	ClientIP        string
}

// PlaceOrderResult 下单结果
// Order 非空表示已直接落库（cod 或全额抵扣）；否则 CheckoutOptions
// 携带收银台参数，等待网关回调。
type PlaceOrderResult struct {
	Session         *CheckoutSession       `json:"session"`
	Order           *models.Order          `json:"order,omitempty"`
	CheckoutOptions map[string]interface{} `json:"checkout_options,omitempty"`
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(
	cfg *config.Config,
	pricingSvc *PricingService,
	couponSvc *CouponService,
	walletSvc *WalletService,
	gateway PaymentGateway,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	couponRepo repository.CouponRepository,
	usageRepo repository.CouponUsageRepository,
	walletRepo repository.WalletRepository,
	queueClient *queue.Client,
) *CheckoutService {
	ttlMinutes := 30
	resetCoins := true
	if cfg != nil {
		if cfg.Checkout.SessionExpireMinutes > 0 {
			ttlMinutes = cfg.Checkout.SessionExpireMinutes
		}
		resetCoins = cfg.Checkout.ResetCoinsOnCOD
	}
	return &CheckoutService{
		cfg:         cfg,
		pricingSvc:  pricingSvc,
		couponSvc:   couponSvc,
		walletSvc:   walletSvc,
		gateway:     gateway,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		couponRepo:  couponRepo,
		usageRepo:   usageRepo,
		walletRepo:  walletRepo,
		queueClient: queueClient,
		sessions:    make(map[uint]*CheckoutSession),
		sessionTTL:  time.Duration(ttlMinutes) * time.Minute,
		policy:      AllocationPolicy{ResetCoinsOnCOD: resetCoins},
	}
}

// Policy 当前分摊策略
func (s *CheckoutService) Policy() AllocationPolicy {
	return s.policy
}

// GetSession 获取当前结算会话
func (s *CheckoutService) GetSession(userID uint) (*CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Quote 结算试算
// 购物车、优惠券、钱包/金币输入或渠道任一变化都重新调用；
// 结果整体替换会话中的价格拆解与分摊状态。
func (s *CheckoutService) Quote(userID uint, input QuoteInput) (*QuoteResult, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}
	items, err := s.cartRepo.ListSelectedByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	snapshot, err := s.walletSvc.GetSnapshot(userID)
	if err != nil {
		return nil, err
	}

	breakdown, couponID, couponCode, err := s.valueCart(userID, items, input.CouponCode)
	if err != nil {
		return nil, err
	}

	allocation := Reconcile(AllocationInput{
		GrandTotal:      breakdown.GrandTotal,
		Balances:        snapshot,
		RequestedWallet: input.RequestedWallet,
		RequestedCoins:  input.RequestedCoins,
		Channel:         input.Channel,
		Policy:          s.policy,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	if ok && inFlightStates[session.State] {
		return nil, ErrCheckoutInProgress
	}
	if !ok || session.State != constants.CheckoutStateIdle {
		session = &CheckoutSession{
			ID:     uuid.NewString(),
			UserID: userID,
			State:  constants.CheckoutStateIdle,
		}
		s.sessions[userID] = session
	}
	session.Breakdown = breakdown
	session.Allocation = allocation
	session.Snapshot = snapshot
	session.items = items
	session.couponID = couponID
	session.couponCode = couponCode
	session.UpdatedAt = time.Now()

	return &QuoteResult{
		Session:    session,
		Advisories: buildAdvisories(input.RequestedWallet, input.RequestedCoins, allocation),
	}, nil
}

// PlaceOrder 下单：结算状态机入口
// 渠道为 cod 或剩余应付为 0 时跳过网关直接落库；
// 在线渠道且剩余应付大于 0 时创建网关订单并挂起等待回调。
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uint, input PlaceOrderInput) (*PlaceOrderResult, error) {
	if userID == 0 {
		return nil, ErrUserNotFound
	}

	items, err := s.cartRepo.ListSelectedByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	// 一个会话同一时刻最多一次进行中的下单，后到的直接拒绝而非排队
	s.mu.Lock()
	existing, ok := s.sessions[userID]
	if ok && inFlightStates[existing.State] {
		s.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}
	session := &CheckoutSession{
		ID:     uuid.NewString(),
		UserID: userID,
		State:  constants.CheckoutStateIdle,
	}
	if ok && existing.State == constants.CheckoutStateIdle {
		session = existing
	} else {
		s.sessions[userID] = session
	}
	if err := s.transition(session, constants.CheckoutStateAllocating); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	priorAllocation := session.Allocation
	hadQuote := ok && !priorAllocation.GrandTotal.Decimal.IsZero()
	s.mu.Unlock()

	// 以最新权威余额重新校验，防止快照加载后余额被带外变更
	snapshot, err := s.walletSvc.GetSnapshot(userID)
	if err != nil {
		s.failAttempt(session, constants.CheckoutStateIdle, err.Error())
		return nil, err
	}
	if hadQuote && s.snapshotStale(priorAllocation, snapshot) {
		s.mu.Lock()
		session.State = constants.CheckoutStateIdle
		session.Snapshot = snapshot
		session.FailureReason = ErrInsufficientBalance.Error()
		session.UpdatedAt = time.Now()
		s.mu.Unlock()
		return nil, ErrInsufficientBalance
	}

	breakdown, couponID, couponCode, err := s.valueCart(userID, items, input.CouponCode)
	if err != nil {
		s.failAttempt(session, constants.CheckoutStateIdle, err.Error())
		return nil, err
	}

	allocation := Reconcile(AllocationInput{
		GrandTotal:      breakdown.GrandTotal,
		Balances:        snapshot,
		RequestedWallet: input.RequestedWallet,
		RequestedCoins:  input.RequestedCoins,
		Channel:         input.Channel,
		Policy:          s.policy,
	})

	s.mu.Lock()
	session.Breakdown = breakdown
	session.Allocation = allocation
	session.Snapshot = snapshot
	session.preAllocation = snapshot
	session.items = items
	session.couponID = couponID
	session.couponCode = couponCode
	session.clientIP = strings.TrimSpace(input.ClientIP)
	session.UpdatedAt = time.Now()
	s.mu.Unlock()

	if allocation.Channel == constants.PaymentChannelOnline && allocation.RemainingAmount.Decimal.GreaterThan(decimal.Zero) {
		return s.initiateGateway(ctx, session)
	}
	return s.commitDirect(session)
}

// ConfirmPayment 网关回调：校验签名并提交订单
func (s *CheckoutService) ConfirmPayment(_ context.Context, userID uint, verification PaymentVerification) (*models.Order, error) {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	if session.State != constants.CheckoutStateAwaitingGateway {
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	if session.GatewayOrderID == "" || session.GatewayOrderID != strings.TrimSpace(verification.GatewayOrderID) {
		s.mu.Unlock()
		return nil, ErrVerificationFailed
	}
	if err := s.transition(session, constants.CheckoutStateVerifying); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	// 签名校验恰好一次；失败绝不进入订单创建
	if err := s.gateway.Verify(verification); err != nil {
		logger.Warnw("checkout_verify_failed",
			"user_id", userID,
			"gateway_order_id", verification.GatewayOrderID,
			"error", err,
		)
		s.markPaymentFailed(session, "签名校验失败")
		s.rollback(session, ErrVerificationFailed.Error())
		return nil, ErrVerificationFailed
	}

	s.mu.Lock()
	if err := s.transition(session, constants.CheckoutStateCommitting); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	order, err := s.commit(session, &verification)
	if err != nil {
		if errors.Is(err, ErrOrderNotConfirmed) {
			// 网关已扣款但订单未落库：留存 captured 支付凭据，不自动重试
			s.markPaymentCaptured(session, &verification)
			s.rollback(session, ErrOrderNotConfirmed.Error())
			return nil, ErrOrderNotConfirmed
		}
		s.markPaymentFailed(session, err.Error())
		s.rollback(session, err.Error())
		return nil, err
	}

	s.finishPayment(session, order, &verification)
	s.confirm(session, order)
	return order, nil
}

// CancelPayment 用户关闭收银台：回滚且除 initiate 外无任何副作用
func (s *CheckoutService) CancelPayment(userID uint) error {
	s.mu.Lock()
	session, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if session.State != constants.CheckoutStateAwaitingGateway {
		s.mu.Unlock()
		return ErrInvalidTransition
	}
	s.mu.Unlock()

	s.markPaymentFailed(session, "用户取消支付")
	s.rollback(session, ErrGatewayCanceled.Error())
	logger.Infow("checkout_gateway_canceled",
		"user_id", userID,
		"session_id", session.ID,
		"gateway_order_id", session.GatewayOrderID,
	)
	return nil
}

// ExpireStaleSessions 清理超时会话，返回清理数量
// 等待网关回调超时的会话按取消处理回滚。
func (s *CheckoutService) ExpireStaleSessions(now time.Time) int {
	s.mu.Lock()
	var stale []*CheckoutSession
	for userID, session := range s.sessions {
		if now.Sub(session.UpdatedAt) < s.sessionTTL {
			continue
		}
		if session.State == constants.CheckoutStateAwaitingGateway {
			stale = append(stale, session)
			continue
		}
		if !inFlightStates[session.State] {
			delete(s.sessions, userID)
			stale = append(stale, nil)
		}
	}
	s.mu.Unlock()

	count := 0
	for _, session := range stale {
		count++
		if session == nil {
			continue
		}
		s.markPaymentFailed(session, "等待支付超时")
		s.rollback(session, "等待支付超时")
	}
	return count
}

// valueCart 计算购物车价格拆解并解析优惠券
func (s *CheckoutService) valueCart(userID uint, items []models.CartItem, couponCode string) (models.PriceBreakdown, *uint, string, error) {
	couponDiscount := models.ZeroMoney()
	var couponID *uint
	code := strings.TrimSpace(couponCode)
	if code != "" {
		base := s.pricingSvc.ComputeBreakdown(items, models.ZeroMoney())
		discount, coupon, err := s.couponSvc.ApplyCoupon(base.SubTotal, code, userID)
		if err != nil {
			return models.PriceBreakdown{}, nil, "", err
		}
		couponDiscount = discount
		id := coupon.ID
		couponID = &id
	}
	return s.pricingSvc.ComputeBreakdown(items, couponDiscount), couponID, code, nil
}

// snapshotStale 判断上次试算的分摊是否超出最新权威余额
func (s *CheckoutService) snapshotStale(prior AllocationState, fresh BalanceSnapshot) bool {
	if prior.WalletAmount.Decimal.GreaterThan(fresh.WalletBalance.Decimal) {
		return true
	}
	if prior.CoinAmount > fresh.CoinBalance {
		return true
	}
	return false
}

// initiateGateway 创建网关订单并挂起会话
func (s *CheckoutService) initiateGateway(ctx context.Context, session *CheckoutSession) (*PlaceOrderResult, error) {
	if s.gateway == nil {
		s.failAttempt(session, constants.CheckoutStateIdle, ErrGatewayInit.Error())
		return nil, ErrGatewayInit
	}
	receipt := generateOrderNo()
	gatewayOrder, err := s.gateway.Initiate(ctx, GatewayInitiateInput{
		Receipt: receipt,
		Amount:  session.Allocation.RemainingAmount,
		UserID:  session.UserID,
	})
	if err != nil || gatewayOrder == nil || gatewayOrder.GatewayOrderID == "" {
		logger.Warnw("checkout_gateway_init_failed",
			"user_id", session.UserID,
			"session_id", session.ID,
			"error", err,
		)
		// initiate 失败留在 idle，可直接重试
		s.failAttempt(session, constants.CheckoutStateIdle, ErrGatewayInit.Error())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGatewayInit, err)
		}
		return nil, ErrGatewayInit
	}

	now := time.Now()
	payment := &models.Payment{
		UserID:         session.UserID,
		Provider:       constants.PaymentProviderRazorpay,
		GatewayOrderID: gatewayOrder.GatewayOrderID,
		Amount:         session.Allocation.RemainingAmount,
		Currency:       gatewayOrder.Currency,
		Status:         constants.PaymentStatusInitiated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		s.failAttempt(session, constants.CheckoutStateIdle, ErrGatewayInit.Error())
		return nil, fmt.Errorf("%w: %v", ErrGatewayInit, err)
	}

	s.mu.Lock()
	if err := s.transition(session, constants.CheckoutStateAwaitingGateway); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	session.GatewayOrderID = gatewayOrder.GatewayOrderID
	session.OrderNo = receipt
	session.paymentID = payment.ID
	session.UpdatedAt = time.Now()
	s.mu.Unlock()

	logger.Infow("checkout_gateway_initiated",
		"user_id", session.UserID,
		"session_id", session.ID,
		"gateway_order_id", gatewayOrder.GatewayOrderID,
		"amount", session.Allocation.RemainingAmount.String(),
	)
	return &PlaceOrderResult{
		Session:         session,
		CheckoutOptions: s.gateway.CheckoutOptions(gatewayOrder, nil),
	}, nil
}

// commitDirect 无需网关的提交路径（cod 或全额抵扣）
func (s *CheckoutService) commitDirect(session *CheckoutSession) (*PlaceOrderResult, error) {
	s.mu.Lock()
	if err := s.transition(session, constants.CheckoutStateCommitting); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	order, err := s.commit(session, nil)
	if err != nil {
		s.rollback(session, err.Error())
		return nil, err
	}
	s.confirm(session, order)
	return &PlaceOrderResult{Session: session, Order: order}, nil
}

// commit 单事务提交：扣减余额金币、创建订单与订单项、核销优惠券、清空购物车
func (s *CheckoutService) commit(session *CheckoutSession, verification *PaymentVerification) (*models.Order, error) {
	allocation := session.Allocation
	breakdown := session.Breakdown
	now := time.Now()

	orderNo := session.OrderNo
	if orderNo == "" {
		orderNo = generateOrderNo()
	}

	status := constants.OrderStatusCodPending
	var paidAt *time.Time
	codDue := allocation.RemainingAmount
	if allocation.Channel == constants.PaymentChannelOnline {
		// 在线渠道走到 commit 必然已通过签名校验
		status = constants.OrderStatusPaid
		paidAt = &now
		codDue = models.ZeroMoney()
	} else if allocation.RemainingAmount.Decimal.IsZero() {
		// 全额抵扣的 cod 订单没有到付尾款，直接视为已支付
		status = constants.OrderStatusPaid
		paidAt = &now
	}

	onlinePaid := models.ZeroMoney()
	if allocation.Channel == constants.PaymentChannelOnline {
		onlinePaid = allocation.RemainingAmount
	}

	order := &models.Order{
		OrderNo:          orderNo,
		UserID:           session.UserID,
		Status:           status,
		Currency:         constants.DefaultCurrency,
		TotalMRP:         breakdown.TotalMRP,
		ItemDiscount:     breakdown.ItemDiscount,
		SubTotal:         breakdown.SubTotal,
		CouponDiscount:   breakdown.CouponDiscount,
		ReturnCharges:    breakdown.ReturnCharges,
		GrandTotal:       breakdown.GrandTotal,
		WalletPaidAmount: allocation.WalletAmount,
		CoinPaidAmount:   allocation.CoinAmount,
		CoinPaidValue:    allocation.CoinValue,
		OnlinePaidAmount: onlinePaid,
		CodDueAmount:     codDue,
		Channel:          allocation.Channel,
		CouponID:         session.couponID,
		ClientIP:         session.clientIP,
		PaidAt:           paidAt,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	orderItems := buildOrderItems(session.items, s.pricingSvc.returnChargeFee)

	if err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, orderItems); err != nil {
			return ErrOrderCreateFailed
		}
		if _, err := s.walletSvc.DebitForOrderTx(tx, OrderDebitInput{
			OrderID:      order.ID,
			UserID:       session.UserID,
			WalletAmount: allocation.WalletAmount,
			CoinAmount:   allocation.CoinAmount,
			CoinValue:    allocation.CoinValue,
		}); err != nil {
			return err
		}
		if session.couponID != nil {
			if err := s.couponRepo.WithTx(tx).IncrementUsedCount(*session.couponID, 1); err != nil {
				return ErrOrderCreateFailed
			}
			usage := &models.CouponUsage{
				CouponID:  *session.couponID,
				UserID:    session.UserID,
				OrderID:   order.ID,
				Discount:  breakdown.CouponDiscount,
				CreatedAt: now,
			}
			if err := s.usageRepo.WithTx(tx).Create(usage); err != nil {
				return ErrOrderCreateFailed
			}
		}
		if err := s.cartRepo.WithTx(tx).DeleteByUser(session.UserID); err != nil {
			return ErrOrderCreateFailed
		}
		return nil
	}); err != nil {
		logger.Errorw("checkout_commit_failed",
			"user_id", session.UserID,
			"session_id", session.ID,
			"order_no", orderNo,
			"error", err,
		)
		// 已扣款的在线支付只要订单未落库就升级为不可自动重试的对账场景，
		// 等待支付期间余额被其他消费抽走导致的扣减失败同样属于此类
		if verification != nil {
			return nil, ErrOrderNotConfirmed
		}
		return nil, err
	}

	logger.Infow("checkout_commit_success",
		"user_id", session.UserID,
		"session_id", session.ID,
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"channel", order.Channel,
		"grand_total", order.GrandTotal.String(),
		"wallet_paid", order.WalletPaidAmount.String(),
		"coin_paid", order.CoinPaidAmount,
		"online_paid", order.OnlinePaidAmount.String(),
		"cod_due", order.CodDueAmount.String(),
	)
	return order, nil
}

// confirm 落盘成功：更新会话为终态并发出确认通知
func (s *CheckoutService) confirm(session *CheckoutSession, order *models.Order) {
	s.mu.Lock()
	_ = s.transition(session, constants.CheckoutStateConfirmed)
	session.OrderID = order.ID
	session.OrderNo = order.OrderNo
	// 乐观更新本地快照；下次加载以数据库为准
	session.Snapshot = BalanceSnapshot{
		WalletBalance: models.NewMoneyFromDecimal(session.Snapshot.WalletBalance.Decimal.Sub(order.WalletPaidAmount.Decimal)),
		CoinBalance:   session.Snapshot.CoinBalance - order.CoinPaidAmount,
	}
	session.UpdatedAt = time.Now()
	s.mu.Unlock()

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderConfirmed(queue.OrderConfirmedPayload{
			OrderID: order.ID,
			OrderNo: order.OrderNo,
			Channel: order.Channel,
		}); err != nil {
			logger.Warnw("checkout_enqueue_confirmed_failed", "order_id", order.ID, "error", err)
		}
	}
}

// rollback 回滚：恢复进入 allocating 前的余额快照，会话可从 idle 重试
func (s *CheckoutService) rollback(session *CheckoutSession, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.transition(session, constants.CheckoutStateRolledBack)
	session.Snapshot = session.preAllocation
	session.FailureReason = reason
	session.UpdatedAt = time.Now()
}

// failAttempt 将会话退回指定状态并记录原因
func (s *CheckoutService) failAttempt(session *CheckoutSession, state string, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.State = state
	session.FailureReason = reason
	session.UpdatedAt = time.Now()
}

// transition 执行一次状态流转，调用方需持有 s.mu
func (s *CheckoutService) transition(session *CheckoutSession, target string) error {
	if session.State == target {
		return nil
	}
	nexts, ok := allowedCheckoutTransitions[session.State]
	if !ok || !nexts[target] {
		return ErrInvalidTransition
	}
	session.State = target
	return nil
}

func (s *CheckoutService) markPaymentFailed(session *CheckoutSession, remark string) {
	s.updatePayment(session, func(payment *models.Payment) {
		payment.Status = constants.PaymentStatusFailed
		payment.Remark = remark
	})
}

func (s *CheckoutService) markPaymentCaptured(session *CheckoutSession, verification *PaymentVerification) {
	s.updatePayment(session, func(payment *models.Payment) {
		payment.Status = constants.PaymentStatusCaptured
		payment.Remark = "网关已扣款但订单未确认"
		if verification != nil {
			payment.GatewayPaymentID = verification.GatewayPaymentID
			payment.Signature = verification.Signature
		}
	})
}

func (s *CheckoutService) finishPayment(session *CheckoutSession, order *models.Order, verification *PaymentVerification) {
	now := time.Now()
	s.updatePayment(session, func(payment *models.Payment) {
		payment.Status = constants.PaymentStatusSuccess
		payment.OrderID = &order.ID
		payment.PaidAt = &now
		if verification != nil {
			payment.GatewayPaymentID = verification.GatewayPaymentID
			payment.Signature = verification.Signature
		}
	})
}

func (s *CheckoutService) updatePayment(session *CheckoutSession, apply func(*models.Payment)) {
	if session.paymentID == 0 {
		return
	}
	payment, err := s.paymentRepo.GetByID(session.paymentID)
	if err != nil || payment == nil {
		logger.Warnw("checkout_payment_fetch_failed", "payment_id", session.paymentID, "error", err)
		return
	}
	apply(payment)
	payment.UpdatedAt = time.Now()
	if err := s.paymentRepo.Update(payment); err != nil {
		logger.Warnw("checkout_payment_update_failed", "payment_id", session.paymentID, "error", err)
	}
}

// buildAdvisories 对比请求值与收敛后的结果，生成提示信息
func buildAdvisories(requestedWallet models.Money, requestedCoins int64, state AllocationState) []string {
	var advisories []string
	if requestedWallet.Decimal.Round(2).GreaterThan(state.WalletAmount.Decimal) {
		advisories = append(advisories, fmt.Sprintf("钱包最多可用 ₹%s", state.WalletAmount.String()))
	}
	if requestedCoins > state.CoinAmount {
		advisories = append(advisories, fmt.Sprintf("金币最多可用 %d", state.CoinAmount))
	}
	return advisories
}

func buildOrderItems(items []models.CartItem, returnChargeFee decimal.Decimal) []models.OrderItem {
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		quantity := decimal.NewFromInt(int64(qty))
		lineTotal := item.ListPrice.Decimal.Sub(item.Discount.Decimal).Mul(quantity)
		if lineTotal.LessThan(decimal.Zero) {
			lineTotal = decimal.Zero
		}
		returnCharge := decimal.Zero
		if hasReturnCharge(item.ReturnOption) {
			returnCharge = returnChargeFee
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductRef:   item.ProductRef,
			ProductName:  item.ProductName,
			ListPrice:    item.ListPrice,
			Discount:     item.Discount,
			Quantity:     qty,
			ReturnOption: item.ReturnOption,
			ReturnCharge: models.NewMoneyFromDecimal(returnCharge),
			TotalPrice:   models.NewMoneyFromDecimal(lineTotal),
		})
	}
	return orderItems
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("KH%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
