package handler

import (
	"net/http"

	"phone-shop/internal/money"
	"phone-shop/internal/service"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RateHandler 负责汇率查询和设置
type RateHandler struct {
	Engine *service.Engine
}

func NewRateHandler(eng *service.Engine) *RateHandler {
	return &RateHandler{Engine: eng}
}

type setRateReq struct {
	USDToLC decimal.Decimal `json:"usd_to_lc"`
}

// GetRates 返回当前汇率（两个方向）
func (h *RateHandler) GetRates(c *gin.Context) {
	rate, err := h.Engine.CurrentRate(c.Request.Context())
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"rate": rate})
}

// SetRate 设置 1 美元折合多少本币，反方向汇率同时更新
func (h *RateHandler) SetRate(c *gin.Context) {
	var req setRateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	ctx := c.Request.Context()
	if err := h.Engine.SetRate(ctx, money.USD, money.LC, req.USDToLC); err != nil {
		util.ErrorFrom(c, err)
		return
	}
	rate, err := h.Engine.CurrentRate(ctx)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"rate": rate})
}
