package handler

import (
	"net/http"

	"phone-shop/internal/money"
	"phone-shop/internal/service"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
)

// SaleHandler 负责销售和销售退货
type SaleHandler struct {
	Engine *service.Engine
}

func NewSaleHandler(eng *service.Engine) *SaleHandler {
	return &SaleHandler{Engine: eng}
}

type returnItemReq struct {
	Quantity int            `json:"quantity"` // 0 表示整行退货
	Refund   *money.Amounts `json:"refund,omitempty"`
}

// CreateSale 结算一笔销售（现金、赊账或双币种付款）
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req service.SaleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	res, err := h.Engine.CommitSale(c.Request.Context(), req)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}

// ReturnSale 整单退货
func (h *SaleHandler) ReturnSale(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 格式错误")
		return
	}

	res, err := h.Engine.ReturnSale(c.Request.Context(), id)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}

// ReturnSaleItem 退回某一行的部分或全部数量
func (h *SaleHandler) ReturnSaleItem(c *gin.Context) {
	saleID, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 格式错误")
		return
	}
	itemID, err := util.ParseID(c.Param("itemId"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 格式错误")
		return
	}

	var req returnItemReq
	// 请求体可以为空
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
			return
		}
	}

	res, err := h.Engine.ReturnSaleItem(c.Request.Context(), service.ReturnSaleItemInput{
		SaleID:   saleID,
		ItemID:   itemID,
		Quantity: req.Quantity,
		Refund:   req.Refund,
	})
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}
