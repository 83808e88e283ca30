package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/internal/service"
)

func TestEnrollIdempotentByEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.customers.Enroll(ctx, &service.EnrollRequest{
		Name:  "김철수",
		Email: "chulsoo@example.com",
		Phone: "010-1234-5678",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	if !first.Created {
		t.Error("首次注册应新建客户")
	}
	if first.AccountNo == "" {
		t.Fatal("注册应自动开立主账户")
	}
	if !first.Customer.IBEnrolled {
		t.Error("注册应打上 IB 开通标记")
	}

	// 同一邮箱重复注册：同一客户、同一账户，不新建
	second, err := env.customers.Enroll(ctx, &service.EnrollRequest{
		Name:  "김철수",
		Email: "Chulsoo@Example.com", // 邮箱大小写不敏感
	})
	if err != nil {
		t.Fatalf("重复注册失败: %v", err)
	}
	if second.Created {
		t.Error("重复注册不应新建客户")
	}
	if second.Customer.CustomerID != first.Customer.CustomerID {
		t.Errorf("客户号变化: %s -> %s", first.Customer.CustomerID, second.Customer.CustomerID)
	}
	if second.AccountNo != first.AccountNo {
		t.Errorf("主账户变化: %s -> %s", first.AccountNo, second.AccountNo)
	}

	accounts, err := env.store.Accounts().ListByCustomer(ctx, first.Customer.CustomerID)
	if err != nil {
		t.Fatalf("查询账户失败: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("账户数 = %d, 期望 1", len(accounts))
	}
}

func TestEnrollRequiresEmail(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.customers.Enroll(context.Background(), &service.EnrollRequest{Name: "김철수"})
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("期望 ValidationError, 得到 %v", err)
	}
}

func TestCreateCustomerWithoutEmailAlwaysCreates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.customers.CreateCustomer(ctx, &service.EnrollRequest{Name: "이영희"})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}
	second, err := env.customers.CreateCustomer(ctx, &service.EnrollRequest{Name: "이영희"})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}
	if first.Customer.CustomerID == second.Customer.CustomerID {
		t.Error("无邮箱建档不应去重")
	}
}

func TestCreateCustomerUpdatesExisting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.customers.CreateCustomer(ctx, &service.EnrollRequest{
		Name:  "박민수",
		Email: "minsoo@example.com",
	}); err != nil {
		t.Fatalf("建档失败: %v", err)
	}

	// 同邮箱再次建档更新姓名/电话
	result, err := env.customers.CreateCustomer(ctx, &service.EnrollRequest{
		Name:  "박민수(개명)",
		Email: "minsoo@example.com",
		Phone: "010-9999-0000",
	})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}
	if result.Created {
		t.Error("同邮箱建档不应新建")
	}
	if result.Customer.Name != "박민수(개명)" || result.Customer.Phone != "010-9999-0000" {
		t.Errorf("客户资料未更新: %+v", result.Customer)
	}
}

func TestGetByEmailNotEnrolled(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.customers.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, model.ErrNotEnrolled) {
		t.Fatalf("期望 NotEnrolled, 得到 %v", err)
	}
}

func TestGetMy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	enrolled, err := env.customers.Enroll(ctx, &service.EnrollRequest{
		Name:  "김철수",
		Email: "chulsoo@example.com",
	})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	if _, err := env.ledger.CashInOut(ctx, &service.CashRequest{
		AccountNo: enrolled.AccountNo,
		Kind:      service.CashKindDeposit,
		Amount:    30000,
	}); err != nil {
		t.Fatalf("存款失败: %v", err)
	}

	my, err := env.customers.GetMy(ctx, enrolled.Customer.CustomerID)
	if err != nil {
		t.Fatalf("综合查询失败: %v", err)
	}
	if my.Customer.CustomerID != enrolled.Customer.CustomerID {
		t.Errorf("客户不匹配: %+v", my.Customer)
	}
	if len(my.Accounts) != 1 || my.Accounts[0].Balance != 30000 {
		t.Errorf("账户列表不正确: %+v", my.Accounts)
	}
	if len(my.Transactions) != 1 {
		t.Errorf("最近流水条数 = %d, 期望 1", len(my.Transactions))
	}
}
