package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"phone-shop/internal/money"
	"phone-shop/internal/repository"
	"phone-shop/internal/service"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
)

// BalanceHandler 负责余额、利润和流水查询
type BalanceHandler struct {
	Engine *service.Engine
}

func NewBalanceHandler(eng *service.Engine) *BalanceHandler {
	return &BalanceHandler{Engine: eng}
}

type adjustReq struct {
	Delta money.Amounts `json:"delta"`
	Note  string        `json:"note" binding:"required,max=255"`
}

// GetBalance 返回当前现金余额
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	snap, err := h.Engine.Balance(c.Request.Context())
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"balance": snap.Balance})
}

// GetProfit 返回累计利润
func (h *BalanceHandler) GetProfit(c *gin.Context) {
	snap, err := h.Engine.Balance(c.Request.Context())
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"profit": snap.Profit})
}

// AdjustBalance 手工调整余额（开账、盘点差额），只有店主可以调用
func (h *BalanceHandler) AdjustBalance(c *gin.Context) {
	var req adjustReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	entry, err := h.Engine.AdjustBalance(c.Request.Context(), req.Delta, req.Note)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": entry})
}

// ListTransactions 分页列出资金流水（类型 + 时间筛选）
func (h *BalanceHandler) ListTransactions(c *gin.Context) {
	f, page, size, ok := parseListFilter(c)
	if !ok {
		return
	}
	f.Limit = size
	f.Offset = (page - 1) * size

	rows, total, err := h.Engine.Transactions(c.Request.Context(), f)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{
		"items": rows,
		"total": total,
		"page":  page,
		"size":  size,
	})
}

// parseListFilter 解析 type / start / end（YYYY-MM-DD）和分页参数
func parseListFilter(c *gin.Context) (repository.ListFilter, int, int, bool) {
	var f repository.ListFilter

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}

	f.Type = strings.TrimSpace(c.Query("type"))

	if s := c.Query("start"); s != "" {
		start, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "开始日期格式错误")
			return f, 0, 0, false
		}
		f.Start = start
	}
	if s := c.Query("end"); s != "" {
		end, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "结束日期格式错误")
			return f, 0, 0, false
		}
		// 包含结束日期当天
		f.End = end.Add(24 * time.Hour)
	}
	return f, page, size, true
}
