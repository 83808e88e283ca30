package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/pkg/cardnum"
	"github.com/sunsun042505/sunwoobank/pkg/idgen"
)

// ProductService 柜台产品服务
// 产品申请、发卡、제신고（变更/事故申告）这类与客户松耦合的次级实体，
// 除引用存在性外没有额外不变量。
type ProductService struct {
	store Store
}

func NewProductService(store Store) *ProductService {
	return &ProductService{store: store}
}

type EnrollProductRequest struct {
	Who    string `json:"who" binding:"required"` // 客户号/邮箱/姓名
	Type   string `json:"type" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Months int    `json:"months" binding:"required,gt=0"`
	Memo   string `json:"memo"`
}

// EnrollProduct 产品申请（定期/积金等）
func (s *ProductService) EnrollProduct(ctx context.Context, req *EnrollProductRequest) (*model.Product, error) {
	customer, err := s.store.Customers().FindByWho(ctx, req.Who)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		ProductID:  idgen.GenerateProductID(),
		CustomerID: customer.CustomerID,
		Type:       req.Type,
		Amount:     req.Amount,
		Months:     req.Months,
		Memo:       req.Memo,
	}
	if err := s.store.Products().Create(ctx, product); err != nil {
		return nil, fmt.Errorf("创建产品申请失败: %w", err)
	}

	log.Printf("[Product] 产品申请: productID=%s, customerID=%s, type=%s",
		product.ProductID, customer.CustomerID, req.Type)
	return product, nil
}

type IssueCardRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
	AccountNo  string `json:"account_no" binding:"required"`
}

// IssueCard 发卡
// 卡号由 Luhn 算法生成，只校验客户与账户存在。
func (s *ProductService) IssueCard(ctx context.Context, req *IssueCardRequest) (*model.Card, error) {
	customer, err := s.store.Customers().GetByCustomerID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	account, err := s.store.Accounts().GetByNo(ctx, NormalizeAccountNo(req.AccountNo))
	if err != nil {
		return nil, err
	}

	card := &model.Card{
		CardNo:     cardnum.Generate(),
		CustomerID: customer.CustomerID,
		AccountNo:  account.AccountNo,
	}
	if err := s.store.Cards().Create(ctx, card); err != nil {
		return nil, fmt.Errorf("创建卡记录失败: %w", err)
	}

	log.Printf("[Product] 发卡: customerID=%s, accountNo=%s", customer.CustomerID, account.AccountNo)
	return card, nil
}

type SubmitReportRequest struct {
	// Who 柜员代办时为客户号/邮箱/姓名；客户自助提交时由鉴权上下文填充客户号
	Who       string `json:"who" binding:"required"`
	Kind      string `json:"kind" binding:"required,oneof=change loss restriction form"`
	Text      string `json:"text" binding:"required"`
	Signature string `json:"signature"` // 平板签名摘要，柜台代办可为空
}

// SubmitReport 제신고提交
// 柜员可代走访客户录入，客户也可以提交平板签名表单（kind=form）。
func (s *ProductService) SubmitReport(ctx context.Context, req *SubmitReportRequest) (*model.Report, error) {
	customer, err := s.store.Customers().FindByWho(ctx, req.Who)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, model.ErrValidation.WithDetail("申告内容不能为空")
	}

	report := &model.Report{
		ReportID:   idgen.GenerateReportID(),
		CustomerID: customer.CustomerID,
		Kind:       req.Kind,
		Text:       req.Text,
		Signature:  req.Signature,
	}
	if err := s.store.Reports().Create(ctx, report); err != nil {
		return nil, fmt.Errorf("创建申告记录失败: %w", err)
	}

	log.Printf("[Product] 제신고: reportID=%s, customerID=%s, kind=%s",
		report.ReportID, customer.CustomerID, req.Kind)
	return report, nil
}

// ListReports 申告分页列表（柜员待办）
func (s *ProductService) ListReports(ctx context.Context, page, pageSize int) ([]*model.Report, int64, error) {
	return s.store.Reports().List(ctx, page, pageSize)
}
