package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/pkg/idgen"
	"github.com/sunsun042505/sunwoobank/pkg/pinhash"
)

// AccountService 账户管理服务
// 负责开户与限制标志（支付停止/扣押/假扣押/限额账户）的设置与解除
type AccountService struct {
	store Store
}

func NewAccountService(store Store) *AccountService {
	return &AccountService{store: store}
}

type OpenAccountRequest struct {
	CustomerID     string `json:"customer_id" binding:"required"`
	Type           string `json:"type"`
	InitialBalance int64  `json:"initial_balance" binding:"gte=0"`
	Pin            string `json:"pin" binding:"required"`
}

// OpenAccount 开户
// 新账户状态为 normal，默认带 limit_account 标志（待临柜核验后解除）。
// PIN 只保存 PBKDF2 哈希。初始余额大于 0 时补一条开户入金流水，
// 保证"余额 = 流水之和"的不变量从账户诞生起就成立。
func (s *AccountService) OpenAccount(ctx context.Context, req *OpenAccountRequest) (*model.Account, error) {
	if len(req.Pin) < 4 {
		return nil, model.ErrInvalidPin.WithDetail("PIN 至少 4 位")
	}
	if req.InitialBalance < 0 {
		return nil, model.ErrValidation.WithDetail("initial_balance 不能为负")
	}

	customer, err := s.store.Customers().GetByCustomerID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	hash, err := pinhash.Encode(req.Pin)
	if err != nil {
		return nil, fmt.Errorf("PIN 哈希失败: %w", err)
	}

	acctType := req.Type
	if acctType == "" {
		acctType = model.AccountTypeDefault
	}

	account := &model.Account{
		AccountNo:    idgen.GenerateAccountNo(),
		CustomerID:   customer.CustomerID,
		Type:         acctType,
		Status:       model.AccountStatusNormal,
		Balance:      req.InitialBalance,
		LimitAccount: true,
		PinHash:      hash,
	}

	err = s.store.Atomic(ctx, func(tx Store) error {
		if err := tx.Accounts().Create(ctx, account); err != nil {
			return fmt.Errorf("创建账户失败: %w", err)
		}
		if req.InitialBalance > 0 {
			txn := &model.Transaction{
				TxnNo:     idgen.GenerateTxnNo(),
				AccountNo: account.AccountNo,
				Kind:      model.TransactionKindDeposit,
				Amount:    req.InitialBalance,
				Memo:      "opening deposit",
			}
			if err := tx.Transactions().Append(ctx, txn); err != nil {
				return fmt.Errorf("记录开户流水失败: %w", err)
			}
		}
		// 客户尚无主账户时回填
		if customer.PrimaryAccount == "" {
			customer.PrimaryAccount = account.AccountNo
			if err := tx.Customers().Update(ctx, customer); err != nil {
				return fmt.Errorf("回填主账户失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Account] 开户成功: accountNo=%s, customerID=%s", account.AccountNo, customer.CustomerID)
	return account, nil
}

// RestrictRequest 限制标志设置请求
// 指针字段实现三值合并：nil 表示未提供、保持原值；只有显式给出的标志才会变更。
type RestrictRequest struct {
	AccountNo          string  `json:"account_no" binding:"required"`
	Status             *string `json:"status" binding:"omitempty,oneof=normal blocked"`
	PaymentStop        *bool   `json:"payment_stop"`
	Seizure            *bool   `json:"seizure"`
	ProvisionalSeizure *bool   `json:"provisional_seizure"`
	LimitAccount       *bool   `json:"limit_account"`
	HoldAmount         int64   `json:"hold_amount" binding:"gte=0"`
	Ref                string  `json:"ref"`
}

type RestrictResult struct {
	Account *model.Account `json:"account"`
	Holds   []*model.Hold  `json:"holds"`
}

// Restrict 设置限制标志（柜员专用）
// 部分更新语义：省略的标志保持不变。hold_amount > 0 且本次把
// 扣押/假扣押置为 true 时，为对应种类新增一条冻结记录（冻结只累积，
// 不与余额自动轧差）。
func (s *AccountService) Restrict(ctx context.Context, req *RestrictRequest) (*RestrictResult, error) {
	accountNo := NormalizeAccountNo(req.AccountNo)

	var result *RestrictResult
	err := s.store.Atomic(ctx, func(tx Store) error {
		account, err := tx.Accounts().GetByNo(ctx, accountNo)
		if err != nil {
			return err
		}

		if req.Status != nil {
			account.Status = *req.Status
		}
		if req.PaymentStop != nil {
			account.PaymentStop = *req.PaymentStop
		}
		if req.Seizure != nil {
			account.Seizure = *req.Seizure
		}
		if req.ProvisionalSeizure != nil {
			account.ProvisionalSeizure = *req.ProvisionalSeizure
		}
		if req.LimitAccount != nil {
			account.LimitAccount = *req.LimitAccount
		}
		if err := tx.Accounts().UpdateRestrictions(ctx, account); err != nil {
			return fmt.Errorf("更新限制标志失败: %w", err)
		}

		if req.HoldAmount > 0 {
			if req.Seizure != nil && *req.Seizure {
				if err := s.appendHold(ctx, tx, accountNo, model.HoldKindSeizure, req.HoldAmount, req.Ref); err != nil {
					return err
				}
			}
			if req.ProvisionalSeizure != nil && *req.ProvisionalSeizure {
				if err := s.appendHold(ctx, tx, accountNo, model.HoldKindProvisionalSeizure, req.HoldAmount, req.Ref); err != nil {
					return err
				}
			}
		}

		holds, err := tx.Holds().ListByAccount(ctx, accountNo)
		if err != nil {
			return err
		}
		result = &RestrictResult{Account: account, Holds: holds}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Account] 限制标志更新: accountNo=%s", accountNo)
	return result, nil
}

func (s *AccountService) appendHold(ctx context.Context, tx Store, accountNo, kind string, amount int64, ref string) error {
	hold := &model.Hold{
		AccountNo: accountNo,
		Kind:      kind,
		Amount:    amount,
		Ref:       ref,
	}
	if err := tx.Holds().Create(ctx, hold); err != nil {
		return fmt.Errorf("创建冻结记录失败: %w", err)
	}
	return nil
}

// 可解除的限制种类
const (
	RestrictionPaymentStop        = "payment_stop"
	RestrictionSeizure            = "seizure"
	RestrictionProvisionalSeizure = "provisional_seizure"
	RestrictionLimitAccount       = "limit_account"
)

// ReleaseRestriction 解除指定种类的限制
// 解除扣押/假扣押时同时删除对应种类的冻结记录（不保留审计痕迹，
// 与既有柜台系统行为一致）。重复解除是幂等的。
func (s *AccountService) ReleaseRestriction(ctx context.Context, accountNo, kind string) (*RestrictResult, error) {
	accountNo = NormalizeAccountNo(accountNo)

	var result *RestrictResult
	err := s.store.Atomic(ctx, func(tx Store) error {
		account, err := tx.Accounts().GetByNo(ctx, accountNo)
		if err != nil {
			return err
		}

		switch kind {
		case RestrictionPaymentStop:
			account.PaymentStop = false
		case RestrictionSeizure:
			account.Seizure = false
		case RestrictionProvisionalSeizure:
			account.ProvisionalSeizure = false
		case RestrictionLimitAccount:
			account.LimitAccount = false
		default:
			return model.ErrValidation.WithDetail("未知限制种类: %s", kind)
		}
		if err := tx.Accounts().UpdateRestrictions(ctx, account); err != nil {
			return fmt.Errorf("更新限制标志失败: %w", err)
		}

		switch kind {
		case RestrictionSeizure:
			if err := tx.Holds().DeleteByKind(ctx, accountNo, model.HoldKindSeizure); err != nil {
				return err
			}
		case RestrictionProvisionalSeizure:
			if err := tx.Holds().DeleteByKind(ctx, accountNo, model.HoldKindProvisionalSeizure); err != nil {
				return err
			}
		}

		holds, err := tx.Holds().ListByAccount(ctx, accountNo)
		if err != nil {
			return err
		}
		result = &RestrictResult{Account: account, Holds: holds}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Account] 限制解除: accountNo=%s, kind=%s", accountNo, kind)
	return result, nil
}

// GetAccount 账户查询
func (s *AccountService) GetAccount(ctx context.Context, accountNo string) (*model.Account, []*model.Hold, error) {
	account, err := s.store.Accounts().GetByNo(ctx, NormalizeAccountNo(accountNo))
	if err != nil {
		return nil, nil, err
	}
	holds, err := s.store.Holds().ListByAccount(ctx, account.AccountNo)
	if err != nil {
		return nil, nil, err
	}
	return account, holds, nil
}

// ListAccounts 账户分页列表（柜员侧）
func (s *AccountService) ListAccounts(ctx context.Context, page, pageSize int) ([]*model.Account, int64, error) {
	return s.store.Accounts().List(ctx, page, pageSize)
}

// VerifyPin 校验账户 PIN
func (s *AccountService) VerifyPin(ctx context.Context, accountNo, pin string) error {
	account, err := s.store.Accounts().GetByNo(ctx, NormalizeAccountNo(accountNo))
	if err != nil {
		return err
	}
	ok, err := pinhash.Verify(pin, account.PinHash)
	if err != nil {
		if errors.Is(err, pinhash.ErrMalformedHash) {
			return model.ErrInternal.WithDetail("账户 PIN 数据损坏")
		}
		return err
	}
	if !ok {
		return model.ErrInvalidPin.WithDetail("PIN 不匹配")
	}
	return nil
}
