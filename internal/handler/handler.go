package handler

import (
	"strconv"

	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/internal/service"
	"github.com/sunsun042505/sunwoobank/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler HTTP 处理器，聚合四个领域服务
type Handler struct {
	ledger    *service.LedgerService
	accounts  *service.AccountService
	customers *service.CustomerService
	products  *service.ProductService
}

func NewHandler(
	ledger *service.LedgerService,
	accounts *service.AccountService,
	customers *service.CustomerService,
	products *service.ProductService,
) *Handler {
	return &Handler{
		ledger:    ledger,
		accounts:  accounts,
		customers: customers,
		products:  products,
	}
}

// pageParams 解析分页参数，默认第 1 页每页 20 条
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// ============ 柜员侧 ============

// TellerAuth 柜员口令校验
// 口令已由中间件验证，走到这里即通过
func (h *Handler) TellerAuth(c *gin.Context) {
	response.Success(c, gin.H{"role": "teller"})
}

// CreateCustomer 客户建档
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	result, err := h.customers.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"customer":   result.Customer,
		"account_no": result.AccountNo,
		"created":    result.Created,
	})
}

// ListCustomers 客户列表
func (h *Handler) ListCustomers(c *gin.Context) {
	page, pageSize := pageParams(c)
	customers, total, err := h.customers.ListCustomers(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"customers": customers,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// OpenAccount 开户
func (h *Handler) OpenAccount(c *gin.Context) {
	var req service.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	account, err := h.accounts.OpenAccount(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"account": account})
}

// GetAccount 账户查询（含冻结记录）
func (h *Handler) GetAccount(c *gin.Context) {
	account, holds, err := h.accounts.GetAccount(c.Request.Context(), c.Param("no"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"account": account, "holds": holds})
}

// ListAccounts 账户列表
func (h *Handler) ListAccounts(c *gin.Context) {
	page, pageSize := pageParams(c)
	accounts, total, err := h.accounts.ListAccounts(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"accounts":  accounts,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Cash 现金存取
func (h *Handler) Cash(c *gin.Context) {
	var req service.CashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	result, err := h.ledger.CashInOut(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"balance": result.Balance, "tx": result.Txn})
}

// TellerTransfer 柜员代办转账（不做所有权校验）
func (h *Handler) TellerTransfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}
	req.ActorCustomerID = ""

	result, err := h.ledger.Transfer(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"from_balance": result.FromBalance,
		"tx_out":       result.TxOut,
		"tx_in":        result.TxIn,
	})
}

// ListTransactions 账户流水查询
func (h *Handler) ListTransactions(c *gin.Context) {
	accountNo := c.Query("account_no")
	if accountNo == "" {
		response.Fail(c, model.ErrValidation.WithDetail("缺少 account_no 参数"))
		return
	}
	page, pageSize := pageParams(c)
	txns, total, err := h.ledger.ListTransactions(c.Request.Context(), accountNo, page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"transactions": txns,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

// Restrict 限制标志设置
func (h *Handler) Restrict(c *gin.Context) {
	var req service.RestrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	result, err := h.accounts.Restrict(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"account": result.Account, "holds": result.Holds})
}

type releaseRestrictionRequest struct {
	AccountNo string `json:"account_no" binding:"required"`
	Kind      string `json:"kind" binding:"required,oneof=payment_stop seizure provisional_seizure limit_account"`
}

// ReleaseRestriction 限制解除
func (h *Handler) ReleaseRestriction(c *gin.Context) {
	var req releaseRestrictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	result, err := h.accounts.ReleaseRestriction(c.Request.Context(), req.AccountNo, req.Kind)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"account": result.Account, "holds": result.Holds})
}

// EnrollProduct 产品申请
func (h *Handler) EnrollProduct(c *gin.Context) {
	var req service.EnrollProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	product, err := h.products.EnrollProduct(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"product": product})
}

// IssueCard 发卡
func (h *Handler) IssueCard(c *gin.Context) {
	var req service.IssueCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	card, err := h.products.IssueCard(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"card": card})
}

// SubmitReport 제신고录入（柜员代办）
func (h *Handler) SubmitReport(c *gin.Context) {
	var req service.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	report, err := h.products.SubmitReport(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"report": report})
}

// ListReports 申告列表
func (h *Handler) ListReports(c *gin.Context) {
	page, pageSize := pageParams(c)
	reports, total, err := h.products.ListReports(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"reports":   reports,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// EnrollIB 互联网银行开通（柜员代客户办理）
func (h *Handler) EnrollIB(c *gin.Context) {
	var req service.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	result, err := h.customers.Enroll(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"customer":   result.Customer,
		"account_no": result.AccountNo,
		"created":    result.Created,
	})
}

// ============ 客户侧 ============

// GetMy 客户综合查询
func (h *Handler) GetMy(c *gin.Context) {
	customer := CurrentCustomer(c)

	result, err := h.customers.GetMy(c.Request.Context(), customer.CustomerID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"customer":     result.Customer,
		"accounts":     result.Accounts,
		"transactions": result.Transactions,
	})
}

// CustomerTransfer 客户本人转账
// 转出账户必须属于令牌对应的客户
func (h *Handler) CustomerTransfer(c *gin.Context) {
	var req service.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}
	req.ActorCustomerID = CurrentCustomer(c).CustomerID

	result, err := h.ledger.Transfer(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"from_balance": result.FromBalance,
		"tx_out":       result.TxOut,
		"tx_in":        result.TxIn,
	})
}

type customerReportRequest struct {
	Kind      string `json:"kind" binding:"required,oneof=change loss restriction form"`
	Text      string `json:"text" binding:"required"`
	Signature string `json:"signature"`
}

// CustomerSubmitReport 客户自助제신고（平板签名表单）
// Who 由鉴权上下文填充，客户无法替他人提交
func (h *Handler) CustomerSubmitReport(c *gin.Context) {
	var req customerReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailBind(c, err)
		return
	}

	report, err := h.products.SubmitReport(c.Request.Context(), &service.SubmitReportRequest{
		Who:       CurrentCustomer(c).CustomerID,
		Kind:      req.Kind,
		Text:      req.Text,
		Signature: req.Signature,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"report": report})
}
