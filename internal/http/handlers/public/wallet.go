package public

import (
	"github.com/kharido-next/internal/http/response"
	"github.com/kharido-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetMyWallet 获取当前用户钱包账户
func (h *Handler) GetMyWallet(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	account, err := h.WalletService.GetAccount(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_fetch_failed", err)
		return
	}
	response.Success(c, account)
}

// GetMyWalletTransactions 获取当前用户钱包流水，支持按类型与方向过滤
func (h *Handler) GetMyWalletTransactions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	filter := repository.WalletTransactionListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    uid,
		Type:      c.Query("type"),
		Direction: c.Query("direction"),
	}
	transactions, total, err := h.WalletService.ListTransactions(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.wallet_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, transactions, response.BuildPagination(page, pageSize, total))
}
