package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/pkg/idgen"
)

// CustomerService 客户服务
// 柜员建档与互联网银行注册共用同一条"按邮箱 upsert + 确保主账户"路径，
// 因此对同一邮箱重复注册是幂等的：不会产生重复客户或重复账户。
type CustomerService struct {
	store Store
}

func NewCustomerService(store Store) *CustomerService {
	return &CustomerService{store: store}
}

type EnrollRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

type EnrollResult struct {
	Customer  *model.Customer `json:"customer"`
	AccountNo string          `json:"account_no"`
	Created   bool            `json:"created"` // 本次是否新建了客户
}

// CreateCustomer 柜员建档
// 有邮箱时按邮箱 upsert（更新姓名/电话，不新建）；无邮箱时总是新建。
// 客户无主账户时自动开立一个（余额 0，limit_account=true）。
func (s *CustomerService) CreateCustomer(ctx context.Context, req *EnrollRequest) (*EnrollResult, error) {
	return s.upsert(ctx, req, false)
}

// Enroll 互联网银行注册
// 与建档同一条路径，额外打上 IB 开通标记。身份凭据的创建归外部
// 身份服务负责，这里只维护邮箱到客户的映射。
func (s *CustomerService) Enroll(ctx context.Context, req *EnrollRequest) (*EnrollResult, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, model.ErrValidation.WithDetail("互联网银行注册必须提供邮箱")
	}
	return s.upsert(ctx, req, true)
}

func (s *CustomerService) upsert(ctx context.Context, req *EnrollRequest, ibEnroll bool) (*EnrollResult, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, model.ErrValidation.WithDetail("姓名不能为空")
	}

	var result *EnrollResult
	err := s.store.Atomic(ctx, func(tx Store) error {
		var customer *model.Customer
		var err error
		if email != "" {
			customer, err = tx.Customers().GetByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("查询客户失败: %w", err)
			}
		}

		created := false
		if customer == nil {
			customer = &model.Customer{
				CustomerID: idgen.GenerateCustomerID(),
				Name:       name,
				Email:      email,
				Phone:      req.Phone,
				IBEnrolled: ibEnroll,
			}
			if err := tx.Customers().Create(ctx, customer); err != nil {
				return fmt.Errorf("创建客户失败: %w", err)
			}
			created = true
		} else {
			customer.Name = name
			if req.Phone != "" {
				customer.Phone = req.Phone
			}
			if ibEnroll {
				customer.IBEnrolled = true
			}
			if err := tx.Customers().Update(ctx, customer); err != nil {
				return fmt.Errorf("更新客户失败: %w", err)
			}
		}

		// 确保主账户存在
		if customer.PrimaryAccount == "" {
			account := &model.Account{
				AccountNo:    idgen.GenerateAccountNo(),
				CustomerID:   customer.CustomerID,
				Type:         model.AccountTypeDefault,
				Status:       model.AccountStatusNormal,
				Balance:      0,
				LimitAccount: true,
			}
			if err := tx.Accounts().Create(ctx, account); err != nil {
				return fmt.Errorf("创建主账户失败: %w", err)
			}
			customer.PrimaryAccount = account.AccountNo
			if err := tx.Customers().Update(ctx, customer); err != nil {
				return fmt.Errorf("回填主账户失败: %w", err)
			}
		}

		result = &EnrollResult{
			Customer:  customer,
			AccountNo: customer.PrimaryAccount,
			Created:   created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Created {
		log.Printf("[Customer] 客户建档: customerID=%s, accountNo=%s",
			result.Customer.CustomerID, result.AccountNo)
	}
	return result, nil
}

// GetByEmail 按邮箱定位客户（客户侧鉴权后使用）
// 未建档的邮箱返回 ErrNotEnrolled，提示先到柜台办理互联网银行开通。
func (s *CustomerService) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	customer, err := s.store.Customers().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, model.ErrNotEnrolled.WithDetail("该邮箱尚未开通互联网银行")
	}
	return customer, nil
}

type MyPageResult struct {
	Customer     *model.Customer      `json:"customer"`
	Accounts     []*model.Account     `json:"accounts"`
	Transactions []*model.Transaction `json:"transactions"`
}

// 客户"我的页面"最多返回的最近流水条数
const myPageTxnLimit = 30

// GetMy 客户综合查询：本人信息、名下账户、最近流水
func (s *CustomerService) GetMy(ctx context.Context, customerID string) (*MyPageResult, error) {
	customer, err := s.store.Customers().GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.store.Accounts().ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	accountNos := make([]string, 0, len(accounts))
	for _, a := range accounts {
		accountNos = append(accountNos, a.AccountNo)
	}
	txns, err := s.store.Transactions().ListRecentByAccounts(ctx, accountNos, myPageTxnLimit)
	if err != nil {
		return nil, err
	}

	return &MyPageResult{
		Customer:     customer,
		Accounts:     accounts,
		Transactions: txns,
	}, nil
}

// ListCustomers 客户分页列表（柜员侧）
func (s *CustomerService) ListCustomers(ctx context.Context, page, pageSize int) ([]*model.Customer, int64, error) {
	return s.store.Customers().List(ctx, page, pageSize)
}
