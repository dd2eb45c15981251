package public

import (
	"strconv"

	"github.com/kharido-next/internal/http/response"
	"github.com/kharido-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListOrders 获取当前用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   c.Query("status"),
		Channel:  c.Query("channel"),
		OrderNo:  c.Query("order_no"),
	}
	orders, total, err := h.OrderRepo.ListByUser(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 获取当前用户订单详情，只允许查自己的订单
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.order_id_invalid", err)
		return
	}
	order, err := h.OrderRepo.GetByIDAndUser(uint(id), uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.order_fetch_failed", err)
		return
	}
	if order == nil {
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		return
	}
	response.Success(c, order)
}
