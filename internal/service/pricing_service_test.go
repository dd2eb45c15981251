package service

import (
	"testing"

	"github.com/kharido-next/internal/constants"
	"github.com/kharido-next/internal/models"
)

func TestComputeBreakdown(t *testing.T) {
	svc := NewPricingService("50")
	items := []models.CartItem{
		{
			ProductRef:   "sku-a",
			ListPrice:    money(t, "2499"),
			Discount:     money(t, "300"),
			Quantity:     1,
			ReturnOption: constants.ReturnOptionStandard,
		},
		{
			ProductRef:   "sku-b",
			ListPrice:    money(t, "899"),
			Discount:     money(t, "100"),
			Quantity:     2,
			ReturnOption: constants.ReturnOptionNone,
		},
	}

	breakdown := svc.ComputeBreakdown(items, money(t, "0"))

	assertMoney(t, "total mrp", breakdown.TotalMRP, "4297")
	assertMoney(t, "item discount", breakdown.ItemDiscount, "500")
	assertMoney(t, "subtotal", breakdown.SubTotal, "3797")
	assertMoney(t, "return charges", breakdown.ReturnCharges, "50")
	assertMoney(t, "grand total", breakdown.GrandTotal, "3847")
}

func TestComputeBreakdownChargesEachReturnableItem(t *testing.T) {
	svc := NewPricingService("50")
	items := []models.CartItem{
		{ListPrice: money(t, "100"), Quantity: 1, ReturnOption: constants.ReturnOptionStandard},
		{ListPrice: money(t, "100"), Quantity: 1, ReturnOption: constants.ReturnOptionInstant},
		{ListPrice: money(t, "100"), Quantity: 1, ReturnOption: constants.ReturnOptionNone},
	}

	breakdown := svc.ComputeBreakdown(items, models.ZeroMoney())
	assertMoney(t, "return charges", breakdown.ReturnCharges, "100")
	assertMoney(t, "grand total", breakdown.GrandTotal, "400")
}

func TestComputeBreakdownClampsCouponToSubtotal(t *testing.T) {
	svc := NewPricingService("0")
	items := []models.CartItem{
		{ListPrice: money(t, "200"), Quantity: 1},
	}

	breakdown := svc.ComputeBreakdown(items, money(t, "500"))
	assertMoney(t, "coupon discount", breakdown.CouponDiscount, "200")
	assertMoney(t, "grand total", breakdown.GrandTotal, "0")
}

func TestComputeBreakdownNormalizesQuantity(t *testing.T) {
	svc := NewPricingService("0")
	items := []models.CartItem{
		{ListPrice: money(t, "100"), Discount: money(t, "10"), Quantity: 0},
	}

	breakdown := svc.ComputeBreakdown(items, models.ZeroMoney())
	assertMoney(t, "total mrp", breakdown.TotalMRP, "100")
	assertMoney(t, "grand total", breakdown.GrandTotal, "90")
}

func TestNewPricingServiceRejectsInvalidFee(t *testing.T) {
	svc := NewPricingService("not-a-number")
	items := []models.CartItem{
		{ListPrice: money(t, "100"), Quantity: 1, ReturnOption: constants.ReturnOptionInstant},
	}

	breakdown := svc.ComputeBreakdown(items, models.ZeroMoney())
	assertMoney(t, "return charges", breakdown.ReturnCharges, "0")

	svc = NewPricingService("-10")
	breakdown = svc.ComputeBreakdown(items, models.ZeroMoney())
	assertMoney(t, "return charges", breakdown.ReturnCharges, "0")
}
