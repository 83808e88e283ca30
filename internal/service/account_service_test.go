package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/internal/service"
)

func TestOpenAccountDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	enrolled, err := env.customers.CreateCustomer(ctx, &service.EnrollRequest{Name: "김철수"})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}

	account, err := env.accounts.OpenAccount(ctx, &service.OpenAccountRequest{
		CustomerID:     enrolled.Customer.CustomerID,
		InitialBalance: 10000,
		Pin:            "1234",
	})
	if err != nil {
		t.Fatalf("开户失败: %v", err)
	}

	if account.Type != model.AccountTypeDefault {
		t.Errorf("账户类型 = %q, 期望 %q", account.Type, model.AccountTypeDefault)
	}
	if account.Status != model.AccountStatusNormal {
		t.Errorf("账户状态 = %q, 期望 normal", account.Status)
	}
	if !account.LimitAccount {
		t.Error("新开账户应默认带限额账户标志")
	}
	if account.PaymentStop || account.Seizure || account.ProvisionalSeizure {
		t.Error("新开账户不应带任何限制标志")
	}
	if account.PinHash == "" || account.PinHash == "1234" {
		t.Error("PIN 必须以哈希形式保存")
	}

	// 开户入金落了流水，余额=流水之和从第一天起成立
	env.mustInvariant(t, account.AccountNo)

	if err := env.accounts.VerifyPin(ctx, account.AccountNo, "1234"); err != nil {
		t.Errorf("正确 PIN 校验失败: %v", err)
	}
	if err := env.accounts.VerifyPin(ctx, account.AccountNo, "9999"); !errors.Is(err, model.ErrInvalidPin) {
		t.Errorf("错误 PIN 期望 InvalidPin, 得到 %v", err)
	}
}

func TestOpenAccountRejectsShortPin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	enrolled, err := env.customers.CreateCustomer(ctx, &service.EnrollRequest{Name: "김철수"})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}

	_, err = env.accounts.OpenAccount(ctx, &service.OpenAccountRequest{
		CustomerID: enrolled.Customer.CustomerID,
		Pin:        "123",
	})
	if !errors.Is(err, model.ErrInvalidPin) {
		t.Fatalf("期望 InvalidPin, 得到 %v", err)
	}
}

func TestOpenAccountRejectsUnknownCustomer(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.accounts.OpenAccount(context.Background(), &service.OpenAccountRequest{
		CustomerID: "C-0000000",
		Pin:        "1234",
	})
	if !errors.Is(err, model.ErrCustomerNotFound) {
		t.Fatalf("期望 CustomerNotFound, 得到 %v", err)
	}
}

func TestRestrictPartialMerge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, account := env.openFunded(t, "김철수", 10000)

	// 只设置支付停止，其余标志保持不变
	stop := true
	result, err := env.accounts.Restrict(ctx, &service.RestrictRequest{
		AccountNo:   account.AccountNo,
		PaymentStop: &stop,
	})
	if err != nil {
		t.Fatalf("设置限制失败: %v", err)
	}
	if !result.Account.PaymentStop {
		t.Error("支付停止标志未生效")
	}
	if result.Account.Seizure || result.Account.ProvisionalSeizure {
		t.Error("未提供的标志不应变更")
	}
	if !result.Account.LimitAccount {
		t.Error("未提供的限额账户标志不应被清除")
	}
	if result.Account.Status != model.AccountStatusNormal {
		t.Errorf("未提供的状态不应变更: %q", result.Account.Status)
	}

	// 追加扣押并冻结 50000，支付停止保持
	seize := true
	result, err = env.accounts.Restrict(ctx, &service.RestrictRequest{
		AccountNo:  account.AccountNo,
		Seizure:    &seize,
		HoldAmount: 50000,
		Ref:        "법원 2026타경1234",
	})
	if err != nil {
		t.Fatalf("设置扣押失败: %v", err)
	}
	if !result.Account.PaymentStop || !result.Account.Seizure {
		t.Errorf("标志合并不正确: %+v", result.Account)
	}
	if len(result.Holds) != 1 {
		t.Fatalf("冻结记录条数 = %d, 期望 1", len(result.Holds))
	}
	if result.Holds[0].Kind != model.HoldKindSeizure || result.Holds[0].Amount != 50000 {
		t.Fatalf("冻结记录不正确: %+v", result.Holds[0])
	}
}

func TestRestrictRepeatedHoldsAccumulate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, account := env.openFunded(t, "김철수", 10000)

	// 冻结只累积，不与余额轧差
	seize := true
	for i := 0; i < 2; i++ {
		if _, err := env.accounts.Restrict(ctx, &service.RestrictRequest{
			AccountNo:  account.AccountNo,
			Seizure:    &seize,
			HoldAmount: 30000,
		}); err != nil {
			t.Fatalf("设置扣押失败: %v", err)
		}
	}

	_, holds, err := env.accounts.GetAccount(ctx, account.AccountNo)
	if err != nil {
		t.Fatalf("查询账户失败: %v", err)
	}
	if len(holds) != 2 {
		t.Fatalf("冻结记录条数 = %d, 期望 2", len(holds))
	}
	env.mustBalance(t, account.AccountNo, 10000)
}

func TestReleaseRestrictionIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, account := env.openFunded(t, "김철수", 10000)

	seize := true
	if _, err := env.accounts.Restrict(ctx, &service.RestrictRequest{
		AccountNo:  account.AccountNo,
		Seizure:    &seize,
		HoldAmount: 50000,
	}); err != nil {
		t.Fatalf("设置扣押失败: %v", err)
	}

	// 解除扣押：标志清除，对应冻结记录删除
	result, err := env.accounts.ReleaseRestriction(ctx, account.AccountNo, service.RestrictionSeizure)
	if err != nil {
		t.Fatalf("解除扣押失败: %v", err)
	}
	if result.Account.Seizure {
		t.Error("扣押标志未清除")
	}
	if len(result.Holds) != 0 {
		t.Fatalf("冻结记录应已删除, 剩余 %d 条", len(result.Holds))
	}

	// 重复解除幂等，不报错
	result, err = env.accounts.ReleaseRestriction(ctx, account.AccountNo, service.RestrictionSeizure)
	if err != nil {
		t.Fatalf("重复解除应幂等: %v", err)
	}
	if result.Account.Seizure || len(result.Holds) != 0 {
		t.Fatalf("重复解除后状态不正确: %+v", result)
	}
}

func TestReleaseRestrictionRejectsUnknownKind(t *testing.T) {
	env := newTestEnv(t)
	_, account := env.openFunded(t, "김철수", 0)

	_, err := env.accounts.ReleaseRestriction(context.Background(), account.AccountNo, "freeze")
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("期望 ValidationError, 得到 %v", err)
	}
}

func TestReleaseLimitAccountKeepsOtherFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, account := env.openFunded(t, "김철수", 0)

	stop := true
	if _, err := env.accounts.Restrict(ctx, &service.RestrictRequest{
		AccountNo:   account.AccountNo,
		PaymentStop: &stop,
	}); err != nil {
		t.Fatalf("设置支付停止失败: %v", err)
	}

	result, err := env.accounts.ReleaseRestriction(ctx, account.AccountNo, service.RestrictionLimitAccount)
	if err != nil {
		t.Fatalf("解除限额账户失败: %v", err)
	}
	if result.Account.LimitAccount {
		t.Error("限额账户标志未清除")
	}
	if !result.Account.PaymentStop {
		t.Error("解除限额账户不应影响支付停止标志")
	}
}
