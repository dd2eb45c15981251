package service

import (
	"strings"

	"github.com/kharido-next/internal/constants"
	"github.com/kharido-next/internal/models"

	"github.com/shopspring/decimal"
)

// PricingService 购物车定价服务
type PricingService struct {
	returnChargeFee decimal.Decimal
}

// NewPricingService 创建定价服务
// returnChargeFee 为每件退换货商品加收的固定费用（卢比字符串，解析失败按 0 处理）。
func NewPricingService(returnChargeFee string) *PricingService {
	fee, err := decimal.NewFromString(strings.TrimSpace(returnChargeFee))
	if err != nil || fee.LessThan(decimal.Zero) {
		fee = decimal.Zero
	}
	return &PricingService{returnChargeFee: fee}
}

// ComputeBreakdown 计算购物车价格拆解
// 纯函数：购物车、选中项或优惠券任一变化都重新计算，结果整体替换不做原地修改。
// couponDiscount 由调用方经 CouponService 校验后传入，这里只做金额收敛。
func (s *PricingService) ComputeBreakdown(items []models.CartItem, couponDiscount models.Money) models.PriceBreakdown {
	totalMRP := decimal.Zero
	itemDiscount := decimal.Zero
	returnCharges := decimal.Zero

	for _, item := range items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		quantity := decimal.NewFromInt(int64(qty))
		totalMRP = totalMRP.Add(item.ListPrice.Decimal.Mul(quantity))
		itemDiscount = itemDiscount.Add(item.Discount.Decimal.Mul(quantity))
		if hasReturnCharge(item.ReturnOption) {
			returnCharges = returnCharges.Add(s.returnChargeFee)
		}
	}

	subTotal := totalMRP.Sub(itemDiscount)
	if subTotal.LessThan(decimal.Zero) {
		subTotal = decimal.Zero
	}

	discount := couponDiscount.Decimal.Round(2)
	if discount.LessThan(decimal.Zero) {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subTotal) {
		discount = subTotal
	}

	grandTotal := subTotal.Sub(discount).Add(returnCharges)
	if grandTotal.LessThan(decimal.Zero) {
		grandTotal = decimal.Zero
	}

	return models.PriceBreakdown{
		TotalMRP:       models.NewMoneyFromDecimal(totalMRP),
		ItemDiscount:   models.NewMoneyFromDecimal(itemDiscount),
		SubTotal:       models.NewMoneyFromDecimal(subTotal),
		CouponDiscount: models.NewMoneyFromDecimal(discount),
		ReturnCharges:  models.NewMoneyFromDecimal(returnCharges),
		GrandTotal:     models.NewMoneyFromDecimal(grandTotal),
	}
}

func hasReturnCharge(option string) bool {
	switch strings.ToLower(strings.TrimSpace(option)) {
	case constants.ReturnOptionStandard, constants.ReturnOptionInstant:
		return true
	default:
		return false
	}
}
