package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sunsun042505/sunwoobank/internal/config"
	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/pkg/idgen"
)

// LedgerService 账务核心服务
// 负责现金存取与转账：校验账户状态/限制标志/余额/限额，
// 在单个存储事务内完成余额变动 + 流水追加 (+ 事件落库)。
type LedgerService struct {
	store  Store
	locker Locker
	cfg    *config.Config
}

func NewLedgerService(store Store, locker Locker, cfg *config.Config) *LedgerService {
	return &LedgerService{
		store:  store,
		locker: locker,
		cfg:    cfg,
	}
}

const (
	CashKindDeposit  = "deposit"
	CashKindWithdraw = "withdraw"
)

// NormalizeAccountNo 去除账号中的空白字符
func NormalizeAccountNo(no string) string {
	return strings.ReplaceAll(strings.TrimSpace(no), " ", "")
}

type CashRequest struct {
	AccountNo string `json:"account_no" binding:"required"`
	Kind      string `json:"kind" binding:"required,oneof=deposit withdraw"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Memo      string `json:"memo"`
}

type CashResult struct {
	Balance int64              `json:"balance"`
	Txn     *model.Transaction `json:"tx"`
}

// CashInOut 现金存取
//
// 校验顺序（即错误返回顺序）：
//  1. 账户存在
//  2. 账户状态为 normal
//  3. 取款：未被支付停止
//  4. 取款：余额充足
//
// 余额变动与流水追加在同一事务内提交。
func (s *LedgerService) CashInOut(ctx context.Context, req *CashRequest) (*CashResult, error) {
	accountNo := NormalizeAccountNo(req.AccountNo)
	if accountNo == "" || req.Amount <= 0 {
		return nil, model.ErrValidation.WithDetail("account_no/amount 不合法")
	}
	if req.Kind != CashKindDeposit && req.Kind != CashKindWithdraw {
		return nil, model.ErrValidation.WithDetail("kind 必须为 deposit 或 withdraw")
	}

	// 按账户加锁，串行化同一账户上的读-判-写
	unlock, err := s.locker.Lock(ctx, "ledger:acct:"+accountNo)
	if err != nil {
		return nil, fmt.Errorf("获取账户锁失败: %w", err)
	}
	defer unlock()

	var result *CashResult
	err = s.store.Atomic(ctx, func(tx Store) error {
		acct, err := tx.Accounts().GetByNo(ctx, accountNo)
		if err != nil {
			return err
		}
		if acct.Status != model.AccountStatusNormal {
			return model.ErrAccountBlocked
		}

		var txnKind string
		var signed int64
		if req.Kind == CashKindDeposit {
			txnKind = model.TransactionKindDeposit
			signed = req.Amount
			if err := tx.Accounts().Credit(ctx, accountNo, req.Amount); err != nil {
				return err
			}
		} else {
			if acct.PaymentStop {
				return model.ErrPaymentStopped
			}
			if acct.Balance < req.Amount {
				return model.ErrInsufficientFunds
			}
			txnKind = model.TransactionKindWithdraw
			signed = -req.Amount
			if err := tx.Accounts().Debit(ctx, accountNo, req.Amount); err != nil {
				return err
			}
		}

		txn := &model.Transaction{
			TxnNo:     idgen.GenerateTxnNo(),
			AccountNo: accountNo,
			Kind:      txnKind,
			Amount:    signed,
			Memo:      req.Memo,
		}
		if err := tx.Transactions().Append(ctx, txn); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}

		if err := s.appendLedgerEvent(ctx, tx, txn.TxnNo, map[string]interface{}{
			"event":      "cash",
			"kind":       req.Kind,
			"account_no": accountNo,
			"amount":     req.Amount,
			"txn_no":     txn.TxnNo,
		}); err != nil {
			return err
		}

		result = &CashResult{Balance: acct.Balance + signed, Txn: txn}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Ledger] 现金%s成功: accountNo=%s, amount=%d, balance=%d",
		req.Kind, accountNo, req.Amount, result.Balance)
	return result, nil
}

type TransferRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Memo   string `json:"memo"`

	// ActorCustomerID 非空表示客户本人发起，必须持有转出账户；
	// 为空表示柜员代办，跳过所有权校验
	ActorCustomerID string `json:"-"`
}

type TransferResult struct {
	FromBalance int64              `json:"from_balance"`
	TxOut       *model.Transaction `json:"tx_out"`
	TxIn        *model.Transaction `json:"tx_in"`
}

// Transfer 转账
//
// 校验顺序：
//  1. 转出/转入账户存在
//  2. 转出 ≠ 转入
//  3. 客户发起时：转出账户属于本人
//  4. 两侧账户状态均为 normal
//  5. 转出账户未被支付停止
//  6. 余额充足
//  7. 限额账户：单笔 ≤ limit_txn_max，当日转出累计 + 本笔 ≤ limit_daily_max
//
// 借记、贷记和两条流水在同一个存储事务内提交——任何一步失败全部回滚，
// 不会出现只扣了转出方的"半笔转账"。条件借记（balance >= amount 才生效）
// 是并发兜底：即使锁失效，两笔并发转账也至多成功一笔。
func (s *LedgerService) Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	from := NormalizeAccountNo(req.From)
	to := NormalizeAccountNo(req.To)
	if from == "" || to == "" || req.Amount <= 0 {
		return nil, model.ErrValidation.WithDetail("from/to/amount 不合法")
	}
	if from == to {
		return nil, model.ErrSameAccount
	}

	// 只锁转出账户：贷记是无条件加法，不需要串行化
	unlock, err := s.locker.Lock(ctx, "ledger:acct:"+from)
	if err != nil {
		return nil, fmt.Errorf("获取账户锁失败: %w", err)
	}
	defer unlock()

	var result *TransferResult
	err = s.store.Atomic(ctx, func(tx Store) error {
		aFrom, err := tx.Accounts().GetByNo(ctx, from)
		if err != nil {
			if errors.Is(err, model.ErrAccountNotFound) {
				return model.ErrAccountNotFound.WithDetail("转出账户 %s 不存在", from)
			}
			return err
		}
		aTo, err := tx.Accounts().GetByNo(ctx, to)
		if err != nil {
			if errors.Is(err, model.ErrAccountNotFound) {
				return model.ErrAccountNotFound.WithDetail("转入账户 %s 不存在", to)
			}
			return err
		}

		if req.ActorCustomerID != "" && aFrom.CustomerID != req.ActorCustomerID {
			return model.ErrNotOwner
		}
		if aFrom.Status != model.AccountStatusNormal || aTo.Status != model.AccountStatusNormal {
			return model.ErrAccountBlocked
		}
		if aFrom.PaymentStop {
			return model.ErrPaymentStopped
		}
		if aFrom.Balance < req.Amount {
			return model.ErrInsufficientFunds
		}

		if aFrom.LimitAccount {
			if req.Amount > s.cfg.Business.LimitTxnMax {
				return model.ErrLimitAccountTxnLimit.WithDetail(
					"限额账户单笔上限 %d", s.cfg.Business.LimitTxnMax)
			}
			today, err := s.dailyOutflow(ctx, tx, from, time.Now())
			if err != nil {
				return fmt.Errorf("统计当日转出失败: %w", err)
			}
			if today+req.Amount > s.cfg.Business.LimitDailyMax {
				return model.ErrLimitAccountDailyLimit.
					WithDetail("限额账户当日上限 %d", s.cfg.Business.LimitDailyMax).
					WithExtra("today_total", today)
			}
		}

		if err := tx.Accounts().Debit(ctx, from, req.Amount); err != nil {
			return err
		}
		if err := tx.Accounts().Credit(ctx, to, req.Amount); err != nil {
			return err
		}

		memo := req.Memo
		txOut := &model.Transaction{
			TxnNo:     idgen.GenerateTxnNo(),
			AccountNo: from,
			Kind:      model.TransactionKindTransferOut,
			Amount:    -req.Amount,
			Memo:      memo,
			CounterNo: to,
		}
		txIn := &model.Transaction{
			TxnNo:     idgen.GenerateTxnNo(),
			AccountNo: to,
			Kind:      model.TransactionKindTransferIn,
			Amount:    req.Amount,
			Memo:      memo,
			CounterNo: from,
		}
		if err := tx.Transactions().Append(ctx, txOut); err != nil {
			return fmt.Errorf("记录转出流水失败: %w", err)
		}
		if err := tx.Transactions().Append(ctx, txIn); err != nil {
			return fmt.Errorf("记录转入流水失败: %w", err)
		}

		if err := s.appendLedgerEvent(ctx, tx, txOut.TxnNo, map[string]interface{}{
			"event":  "transfer",
			"from":   from,
			"to":     to,
			"amount": req.Amount,
			"txn_no": txOut.TxnNo,
		}); err != nil {
			return err
		}

		result = &TransferResult{
			FromBalance: aFrom.Balance - req.Amount,
			TxOut:       txOut,
			TxIn:        txIn,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Ledger] 转账成功: %s -> %s, amount=%d", from, to, req.Amount)
	return result, nil
}

// DailyOutflow 当日转出累计（自本地时钟当日零点起）
// 注意：按求值时刻的本地午夜划界，不处理时区/夏令时切换，是既定的已知局限。
func (s *LedgerService) DailyOutflow(ctx context.Context, accountNo string, now time.Time) (int64, error) {
	return s.dailyOutflow(ctx, s.store, NormalizeAccountNo(accountNo), now)
}

func (s *LedgerService) dailyOutflow(ctx context.Context, store Store, accountNo string, now time.Time) (int64, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return store.Transactions().SumOutflowSince(ctx, accountNo, midnight)
}

// ListTransactions 账户流水分页查询（柜员侧）
func (s *LedgerService) ListTransactions(ctx context.Context, accountNo string, page, pageSize int) ([]*model.Transaction, int64, error) {
	return s.store.Transactions().ListByAccount(ctx, NormalizeAccountNo(accountNo), page, pageSize)
}

// appendLedgerEvent 把账务事件写入发件箱（与记账同事务）
func (s *LedgerService) appendLedgerEvent(ctx context.Context, tx Store, key string, payload map[string]interface{}) error {
	payload["ts"] = time.Now().Format(time.RFC3339)
	payloadBytes, _ := json.Marshal(payload)

	msg := &model.OutboxMessage{
		MessageKey: key,
		Topic:      s.cfg.Kafka.Topic.LedgerEvents,
		Payload:    string(payloadBytes),
		Status:     model.OutboxStatusPending,
	}
	if err := tx.Outbox().Create(ctx, msg); err != nil {
		return fmt.Errorf("写入账务事件失败: %w", err)
	}
	return nil
}
