package handler

import (
	"net/http"
	"strings"

	"phone-shop/internal/money"
	"phone-shop/internal/service"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
)

// DebtHandler 负责客户欠款、供应商欠款和个人借款
type DebtHandler struct {
	Engine *service.Engine
}

func NewDebtHandler(eng *service.Engine) *DebtHandler {
	return &DebtHandler{Engine: eng}
}

// paymentReq 一次还款，两个币种可以同时付
type paymentReq struct {
	Payment money.Amounts `json:"payment"`
}

type companyPaymentReq struct {
	Payment money.Amounts       `json:"payment"`
	Mode    service.PaymentMode `json:"mode"` // any / force_usd / force_lc
}

// bindPayment 解析 :id 和还款金额
func bindPayment(c *gin.Context) (uint, money.Amounts, bool) {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "ID 格式错误")
		return 0, money.Amounts{}, false
	}
	var req paymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return 0, money.Amounts{}, false
	}
	return id, req.Payment, true
}

// ---------- 客户欠款 ----------

func (h *DebtHandler) CreateCustomerDebt(c *gin.Context) {
	var req service.CustomerDebtInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	debt, err := h.Engine.CreateCustomerDebt(c.Request.Context(), req)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"debt": debt})
}

func (h *DebtHandler) PayCustomerDebt(c *gin.Context) {
	id, payment, ok := bindPayment(c)
	if !ok {
		return
	}

	res, err := h.Engine.PayCustomerDebt(c.Request.Context(), id, payment)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}

// ---------- 供应商欠款 ----------

func (h *DebtHandler) CreateCompanyDebt(c *gin.Context) {
	var req service.CompanyDebtInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	debt, err := h.Engine.CreateCompanyDebt(c.Request.Context(), req)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"debt": debt})
}

func (h *DebtHandler) PayCompanyDebt(c *gin.Context) {
	id, payment, ok := bindPayment(c)
	if !ok {
		return
	}

	res, err := h.Engine.PayCompanyDebt(c.Request.Context(), id, payment)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}

// PayCompanyTotal 按时间先后一次性冲抵某个供应商的所有未结欠款
func (h *DebtHandler) PayCompanyTotal(c *gin.Context) {
	var req companyPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	res, err := h.Engine.PayCompanyDebtsTotal(c.Request.Context(), service.CompanyTotalPaymentInput{
		CompanyName: strings.TrimSpace(c.Param("name")),
		Payment:     req.Payment,
		Mode:        req.Mode,
	})
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}

// CompanyOutstanding 查询某个供应商尚未结清的金额
func (h *DebtHandler) CompanyOutstanding(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if err := util.ValidateName(name); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "公司名称错误")
		return
	}

	owed, err := h.Engine.OutstandingCompanyDebt(c.Request.Context(), name)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{
		"company_name": name,
		"outstanding":  owed,
	})
}

// ---------- 个人借款 ----------

func (h *DebtHandler) CreatePersonalLoan(c *gin.Context) {
	var req service.PersonalLoanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	loan, err := h.Engine.CreatePersonalLoan(c.Request.Context(), req)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"loan": loan})
}

func (h *DebtHandler) PayPersonalLoan(c *gin.Context) {
	id, payment, ok := bindPayment(c)
	if !ok {
		return
	}

	res, err := h.Engine.PayPersonalLoan(c.Request.Context(), id, payment)
	if err != nil {
		util.ErrorFrom(c, err)
		return
	}
	util.Success(c, util.Response{"result": res})
}
