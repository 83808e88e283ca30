package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/internal/service"
)

// ============================================================================
// 内存仓储
// ============================================================================
//
// 与 MySQL 实现等价语义的内存版 service.Store，用于单元测试与本地演示。
// 全部数据由一把互斥锁保护；Atomic 持锁执行整个闭包并在出错时回滚到
// 进入前的快照，模拟数据库事务的原子性。
//
// ============================================================================

type data struct {
	customers []model.Customer
	accounts  []model.Account
	txns      []model.Transaction
	holds     []model.Hold
	products  []model.Product
	cards     []model.Card
	reports   []model.Report
	outbox    []model.OutboxMessage
	nextID    int64
}

func (d *data) clone() *data {
	c := &data{nextID: d.nextID}
	c.customers = append([]model.Customer(nil), d.customers...)
	c.accounts = append([]model.Account(nil), d.accounts...)
	c.txns = append([]model.Transaction(nil), d.txns...)
	c.holds = append([]model.Hold(nil), d.holds...)
	c.products = append([]model.Product(nil), d.products...)
	c.cards = append([]model.Card(nil), d.cards...)
	c.reports = append([]model.Report(nil), d.reports...)
	c.outbox = append([]model.OutboxMessage(nil), d.outbox...)
	return c
}

func (d *data) id() int64 {
	d.nextID++
	return d.nextID
}

// Store 内存聚合仓储
type Store struct {
	mu     *sync.Mutex
	data   *data
	inside bool // Atomic 闭包内的视图不再加锁
}

var _ service.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{mu: &sync.Mutex{}, data: &data{}}
}

func (s *Store) lock() func() {
	if s.inside {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Customers() service.CustomerStore       { return &customerStore{s} }
func (s *Store) Accounts() service.AccountStore         { return &accountStore{s} }
func (s *Store) Transactions() service.TransactionStore { return &transactionStore{s} }
func (s *Store) Holds() service.HoldStore               { return &holdStore{s} }
func (s *Store) Products() service.ProductStore         { return &productStore{s} }
func (s *Store) Cards() service.CardStore               { return &cardStore{s} }
func (s *Store) Reports() service.ReportStore           { return &reportStore{s} }
func (s *Store) Outbox() service.OutboxStore            { return &outboxStore{s} }

// Atomic 持锁执行 fn；fn 返回错误时回滚到进入前的快照
func (s *Store) Atomic(ctx context.Context, fn func(service.Store) error) error {
	if s.inside {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	inner := &Store{mu: s.mu, data: s.data, inside: true}
	if err := fn(inner); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// 客户
// ---------------------------------------------------------------------------

type customerStore struct{ s *Store }

func (cs *customerStore) Create(ctx context.Context, customer *model.Customer) error {
	defer cs.s.lock()()
	customer.ID = cs.s.data.id()
	now := time.Now()
	customer.CreatedAt, customer.UpdatedAt = now, now
	cs.s.data.customers = append(cs.s.data.customers, *customer)
	return nil
}

func (cs *customerStore) Update(ctx context.Context, customer *model.Customer) error {
	defer cs.s.lock()()
	for i := range cs.s.data.customers {
		if cs.s.data.customers[i].CustomerID == customer.CustomerID {
			customer.UpdatedAt = time.Now()
			cs.s.data.customers[i] = *customer
			return nil
		}
	}
	return model.ErrCustomerNotFound
}

func (cs *customerStore) GetByCustomerID(ctx context.Context, customerID string) (*model.Customer, error) {
	defer cs.s.lock()()
	for i := range cs.s.data.customers {
		if cs.s.data.customers[i].CustomerID == customerID {
			c := cs.s.data.customers[i]
			return &c, nil
		}
	}
	return nil, model.ErrCustomerNotFound
}

func (cs *customerStore) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	defer cs.s.lock()()
	if email == "" {
		return nil, nil
	}
	for i := range cs.s.data.customers {
		if cs.s.data.customers[i].Email == email {
			c := cs.s.data.customers[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (cs *customerStore) FindByWho(ctx context.Context, who string) (*model.Customer, error) {
	defer cs.s.lock()()
	q := strings.TrimSpace(who)
	if q == "" {
		return nil, model.ErrCustomerNotFound
	}
	for i := range cs.s.data.customers {
		c := cs.s.data.customers[i]
		if c.CustomerID == q || c.Email == strings.ToLower(q) || c.Name == q {
			return &c, nil
		}
	}
	return nil, model.ErrCustomerNotFound
}

func (cs *customerStore) List(ctx context.Context, page, pageSize int) ([]*model.Customer, int64, error) {
	defer cs.s.lock()()
	total := int64(len(cs.s.data.customers))
	out := make([]*model.Customer, 0)
	start := (page - 1) * pageSize
	for i := 0; i < pageSize && start+i < len(cs.s.data.customers); i++ {
		c := cs.s.data.customers[len(cs.s.data.customers)-1-start-i]
		out = append(out, &c)
	}
	return out, total, nil
}

// ---------------------------------------------------------------------------
// 账户
// ---------------------------------------------------------------------------

type accountStore struct{ s *Store }

func (as *accountStore) Create(ctx context.Context, account *model.Account) error {
	defer as.s.lock()()
	account.ID = as.s.data.id()
	now := time.Now()
	account.CreatedAt, account.UpdatedAt = now, now
	as.s.data.accounts = append(as.s.data.accounts, *account)
	return nil
}

func (as *accountStore) find(accountNo string) int {
	for i := range as.s.data.accounts {
		if as.s.data.accounts[i].AccountNo == accountNo {
			return i
		}
	}
	return -1
}

func (as *accountStore) GetByNo(ctx context.Context, accountNo string) (*model.Account, error) {
	defer as.s.lock()()
	if i := as.find(accountNo); i >= 0 {
		a := as.s.data.accounts[i]
		return &a, nil
	}
	return nil, model.ErrAccountNotFound
}

func (as *accountStore) ListByCustomer(ctx context.Context, customerID string) ([]*model.Account, error) {
	defer as.s.lock()()
	var out []*model.Account
	for i := range as.s.data.accounts {
		if as.s.data.accounts[i].CustomerID == customerID {
			a := as.s.data.accounts[i]
			out = append(out, &a)
		}
	}
	return out, nil
}

func (as *accountStore) List(ctx context.Context, page, pageSize int) ([]*model.Account, int64, error) {
	defer as.s.lock()()
	total := int64(len(as.s.data.accounts))
	out := make([]*model.Account, 0)
	start := (page - 1) * pageSize
	for i := 0; i < pageSize && start+i < len(as.s.data.accounts); i++ {
		a := as.s.data.accounts[len(as.s.data.accounts)-1-start-i]
		out = append(out, &a)
	}
	return out, total, nil
}

func (as *accountStore) Debit(ctx context.Context, accountNo string, amount int64) error {
	defer as.s.lock()()
	i := as.find(accountNo)
	if i < 0 {
		return model.ErrAccountNotFound
	}
	// 与 SQL 条件更新等价：余额不足时不落账
	if as.s.data.accounts[i].Balance < amount {
		return model.ErrInsufficientFunds
	}
	as.s.data.accounts[i].Balance -= amount
	as.s.data.accounts[i].UpdatedAt = time.Now()
	return nil
}

func (as *accountStore) Credit(ctx context.Context, accountNo string, amount int64) error {
	defer as.s.lock()()
	i := as.find(accountNo)
	if i < 0 {
		return model.ErrAccountNotFound
	}
	as.s.data.accounts[i].Balance += amount
	as.s.data.accounts[i].UpdatedAt = time.Now()
	return nil
}

func (as *accountStore) UpdateRestrictions(ctx context.Context, account *model.Account) error {
	defer as.s.lock()()
	i := as.find(account.AccountNo)
	if i < 0 {
		return model.ErrAccountNotFound
	}
	a := &as.s.data.accounts[i]
	a.Status = account.Status
	a.PaymentStop = account.PaymentStop
	a.Seizure = account.Seizure
	a.ProvisionalSeizure = account.ProvisionalSeizure
	a.LimitAccount = account.LimitAccount
	a.UpdatedAt = time.Now()
	return nil
}

// ---------------------------------------------------------------------------
// 流水
// ---------------------------------------------------------------------------

type transactionStore struct{ s *Store }

func (ts *transactionStore) Append(ctx context.Context, txn *model.Transaction) error {
	defer ts.s.lock()()
	txn.ID = ts.s.data.id()
	txn.CreatedAt = time.Now()
	ts.s.data.txns = append(ts.s.data.txns, *txn)
	return nil
}

func (ts *transactionStore) ListByAccount(ctx context.Context, accountNo string, page, pageSize int) ([]*model.Transaction, int64, error) {
	defer ts.s.lock()()
	var matched []model.Transaction
	for _, t := range ts.s.data.txns {
		if t.AccountNo == accountNo {
			matched = append(matched, t)
		}
	}
	total := int64(len(matched))
	// 按时间倒序
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	out := make([]*model.Transaction, 0)
	start := (page - 1) * pageSize
	for i := 0; i < pageSize && start+i < len(matched); i++ {
		t := matched[start+i]
		out = append(out, &t)
	}
	return out, total, nil
}

func (ts *transactionStore) ListRecentByAccounts(ctx context.Context, accountNos []string, limit int) ([]*model.Transaction, error) {
	defer ts.s.lock()()
	nos := make(map[string]bool, len(accountNos))
	for _, no := range accountNos {
		nos[no] = true
	}
	var out []*model.Transaction
	for i := len(ts.s.data.txns) - 1; i >= 0 && len(out) < limit; i-- {
		if nos[ts.s.data.txns[i].AccountNo] {
			t := ts.s.data.txns[i]
			out = append(out, &t)
		}
	}
	return out, nil
}

func (ts *transactionStore) SumByAccount(ctx context.Context, accountNo string) (int64, error) {
	defer ts.s.lock()()
	var total int64
	for _, t := range ts.s.data.txns {
		if t.AccountNo == accountNo {
			total += t.Amount
		}
	}
	return total, nil
}

func (ts *transactionStore) SumOutflowSince(ctx context.Context, accountNo string, since time.Time) (int64, error) {
	defer ts.s.lock()()
	var total int64
	for _, t := range ts.s.data.txns {
		if t.AccountNo == accountNo && t.Kind == model.TransactionKindTransferOut && !t.CreatedAt.Before(since) {
			total += -t.Amount
		}
	}
	return total, nil
}

// ---------------------------------------------------------------------------
// 冻结记录
// ---------------------------------------------------------------------------

type holdStore struct{ s *Store }

func (hs *holdStore) Create(ctx context.Context, hold *model.Hold) error {
	defer hs.s.lock()()
	hold.ID = hs.s.data.id()
	hold.CreatedAt = time.Now()
	hs.s.data.holds = append(hs.s.data.holds, *hold)
	return nil
}

func (hs *holdStore) ListByAccount(ctx context.Context, accountNo string) ([]*model.Hold, error) {
	defer hs.s.lock()()
	var out []*model.Hold
	for i := len(hs.s.data.holds) - 1; i >= 0; i-- {
		if hs.s.data.holds[i].AccountNo == accountNo {
			h := hs.s.data.holds[i]
			out = append(out, &h)
		}
	}
	return out, nil
}

func (hs *holdStore) DeleteByKind(ctx context.Context, accountNo, kind string) error {
	defer hs.s.lock()()
	kept := hs.s.data.holds[:0]
	for _, h := range hs.s.data.holds {
		if !(h.AccountNo == accountNo && h.Kind == kind) {
			kept = append(kept, h)
		}
	}
	hs.s.data.holds = kept
	return nil
}

// ---------------------------------------------------------------------------
// 产品 / 卡 / 제신고
// ---------------------------------------------------------------------------

type productStore struct{ s *Store }

func (ps *productStore) Create(ctx context.Context, product *model.Product) error {
	defer ps.s.lock()()
	product.ID = ps.s.data.id()
	product.CreatedAt = time.Now()
	ps.s.data.products = append(ps.s.data.products, *product)
	return nil
}

func (ps *productStore) ListByCustomer(ctx context.Context, customerID string) ([]*model.Product, error) {
	defer ps.s.lock()()
	var out []*model.Product
	for i := range ps.s.data.products {
		if ps.s.data.products[i].CustomerID == customerID {
			p := ps.s.data.products[i]
			out = append(out, &p)
		}
	}
	return out, nil
}

type cardStore struct{ s *Store }

func (cs *cardStore) Create(ctx context.Context, card *model.Card) error {
	defer cs.s.lock()()
	card.ID = cs.s.data.id()
	card.CreatedAt = time.Now()
	cs.s.data.cards = append(cs.s.data.cards, *card)
	return nil
}

func (cs *cardStore) ListByCustomer(ctx context.Context, customerID string) ([]*model.Card, error) {
	defer cs.s.lock()()
	var out []*model.Card
	for i := range cs.s.data.cards {
		if cs.s.data.cards[i].CustomerID == customerID {
			c := cs.s.data.cards[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

type reportStore struct{ s *Store }

func (rs *reportStore) Create(ctx context.Context, report *model.Report) error {
	defer rs.s.lock()()
	report.ID = rs.s.data.id()
	report.CreatedAt = time.Now()
	rs.s.data.reports = append(rs.s.data.reports, *report)
	return nil
}

func (rs *reportStore) ListByCustomer(ctx context.Context, customerID string) ([]*model.Report, error) {
	defer rs.s.lock()()
	var out []*model.Report
	for i := range rs.s.data.reports {
		if rs.s.data.reports[i].CustomerID == customerID {
			r := rs.s.data.reports[i]
			out = append(out, &r)
		}
	}
	return out, nil
}

func (rs *reportStore) List(ctx context.Context, page, pageSize int) ([]*model.Report, int64, error) {
	defer rs.s.lock()()
	total := int64(len(rs.s.data.reports))
	out := make([]*model.Report, 0)
	start := (page - 1) * pageSize
	for i := 0; i < pageSize && start+i < len(rs.s.data.reports); i++ {
		r := rs.s.data.reports[len(rs.s.data.reports)-1-start-i]
		out = append(out, &r)
	}
	return out, total, nil
}

// ---------------------------------------------------------------------------
// 发件箱
// ---------------------------------------------------------------------------

type outboxStore struct{ s *Store }

func (os *outboxStore) Create(ctx context.Context, msg *model.OutboxMessage) error {
	defer os.s.lock()()
	msg.ID = os.s.data.id()
	now := time.Now()
	msg.CreatedAt, msg.UpdatedAt = now, now
	os.s.data.outbox = append(os.s.data.outbox, *msg)
	return nil
}

func (os *outboxStore) GetPending(ctx context.Context, limit int) ([]*model.OutboxMessage, error) {
	defer os.s.lock()()
	var out []*model.OutboxMessage
	for i := range os.s.data.outbox {
		if os.s.data.outbox[i].Status == model.OutboxStatusPending {
			m := os.s.data.outbox[i]
			out = append(out, &m)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (os *outboxStore) UpdateStatus(ctx context.Context, id int64, status string) error {
	defer os.s.lock()()
	for i := range os.s.data.outbox {
		if os.s.data.outbox[i].ID == id {
			os.s.data.outbox[i].Status = status
			os.s.data.outbox[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

func (os *outboxStore) IncrementRetry(ctx context.Context, id int64) error {
	defer os.s.lock()()
	for i := range os.s.data.outbox {
		if os.s.data.outbox[i].ID == id {
			os.s.data.outbox[i].RetryCount++
			return nil
		}
	}
	return nil
}

func (os *outboxStore) MarkFailed(ctx context.Context, id int64) error {
	defer os.s.lock()()
	for i := range os.s.data.outbox {
		if os.s.data.outbox[i].ID == id {
			os.s.data.outbox[i].Status = model.OutboxStatusFailed
			os.s.data.outbox[i].RetryCount++
			return nil
		}
	}
	return nil
}
