package handler

import (
	"net/http"

	"phone-shop/internal/repository"
	"phone-shop/internal/service"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogHandler 负责商品（手机）和配件
type CatalogHandler struct {
	Engine *service.Engine
}

func NewCatalogHandler(eng *service.Engine) *CatalogHandler {
	return &CatalogHandler{Engine: eng}
}

// CreateItem 新增商品或配件，:kind 为 product / accessory
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req service.CatalogItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	item, err := h.Engine.AddCatalogItem(c.Request.Context(), c.Param("kind"), req)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"item": item})
}

// ListItems 列出商品或配件，?archived=true 时包含已下架的
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.Engine.ListCatalog(c.Request.Context(), c.Param("kind"), c.Query("archived") == "true")
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{
		"items": items,
		"total": len(items),
	})
}

// ArchiveItem 下架商品；退货补回库存时会自动重新上架
func (h *CatalogHandler) ArchiveItem(c *gin.Context) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 格式错误")
		return
	}

	ref := repository.CatalogRef{Kind: c.Param("kind"), ID: id}
	if err := h.Engine.ArchiveCatalogItem(c.Request.Context(), ref); err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"message": "已下架"})
}
