package models

// PriceBreakdown 购物车价格拆解
// 纯值对象，不落库；购物车或优惠券变化时整体重建，不做原地修改。
type PriceBreakdown struct {
	TotalMRP       Money `json:"total_mrp"`
	ItemDiscount   Money `json:"item_discount"`
	SubTotal       Money `json:"sub_total"`
	CouponDiscount Money `json:"coupon_discount"`
	ReturnCharges  Money `json:"return_charges"`
	GrandTotal     Money `json:"grand_total"`
}
