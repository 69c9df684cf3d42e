package handler

import (
	"net/http"

	"phone-shop/internal/service"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
)

// PurchaseHandler 负责进货记录和退货给供应商
type PurchaseHandler struct {
	Engine *service.Engine
}

func NewPurchaseHandler(eng *service.Engine) *PurchaseHandler {
	return &PurchaseHandler{Engine: eng}
}

type returnPurchaseItemReq struct {
	Quantity int `json:"quantity"` // 0 表示整行退回
}

func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req service.PurchaseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	entry, err := h.Engine.RecordPurchase(c.Request.Context(), req)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"purchase": entry})
}

// ReturnPurchase 整单退回供应商
func (h *PurchaseHandler) ReturnPurchase(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 格式错误")
		return
	}

	res, err := h.Engine.ReturnBuyingHistoryEntry(c.Request.Context(), id)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}

func (h *PurchaseHandler) ReturnPurchaseItem(c *gin.Context) {
	entryID, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 格式错误")
		return
	}
	itemID, err := util.ParseID(c.Param("itemId"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 格式错误")
		return
	}

	var req returnPurchaseItemReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
			return
		}
	}

	res, err := h.Engine.ReturnBuyingHistoryItem(c.Request.Context(), service.ReturnPurchaseItemInput{
		EntryID:  entryID,
		ItemID:   itemID,
		Quantity: req.Quantity,
	})
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}
