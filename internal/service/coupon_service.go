package service

import (
	"strings"
	"time"

	"github.com/kharido-next/internal/constants"
	"github.com/kharido-next/internal/models"
	"github.com/kharido-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponService 优惠券校验与折扣计算
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponService 构造优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}
}

// ApplyCoupon 校验优惠券并计算折扣金额
// 折扣不会超过商品小计
func (s *CouponService) ApplyCoupon(subtotal models.Money, code string, userID uint) (models.Money, *models.Coupon, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return models.Money{}, nil, ErrCouponInvalid
	}

	coupon, err := s.couponRepo.GetByCode(trimmed)
	if err != nil {
		return models.Money{}, nil, err
	}
	if coupon == nil {
		return models.Money{}, nil, ErrCouponNotFound
	}

	if err := s.checkEligibility(coupon, subtotal, userID); err != nil {
		return models.Money{}, coupon, err
	}

	discount, err := couponDiscount(coupon, subtotal)
	if err != nil {
		return models.Money{}, coupon, err
	}
	if discount.GreaterThan(subtotal.Decimal) {
		discount = subtotal.Decimal
	}
	return models.NewMoneyFromDecimal(discount), coupon, nil
}

// checkEligibility 按状态、时间窗、用量、门槛的顺序校验
func (s *CouponService) checkEligibility(coupon *models.Coupon, subtotal models.Money, userID uint) error {
	if !coupon.IsActive {
		return ErrCouponInactive
	}

	now := time.Now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return ErrCouponNotStarted
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return ErrCouponExpired
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return ErrCouponUsageLimit
	}
	if coupon.PerUserLimit > 0 && userID != 0 {
		used, err := s.usageRepo.CountByUser(coupon.ID, userID)
		if err != nil {
			return err
		}
		if int(used) >= coupon.PerUserLimit {
			return ErrCouponPerUserLimit
		}
	}

	if subtotal.Decimal.Cmp(coupon.MinAmount.Decimal) < 0 {
		return ErrCouponMinAmount
	}
	return nil
}

func couponDiscount(coupon *models.Coupon, subtotal models.Money) (decimal.Decimal, error) {
	if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrCouponInvalid
	}
	switch strings.ToLower(strings.TrimSpace(coupon.Type)) {
	case constants.CouponTypeFixed:
		return coupon.Value.Decimal, nil
	case constants.CouponTypePercent:
		discount := subtotal.Decimal.Mul(coupon.Value.Decimal).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
			discount = coupon.MaxDiscount.Decimal
		}
		return discount, nil
	}
	return decimal.Zero, ErrCouponInvalid
}
