package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sunsun042505/sunwoobank/internal/config"
	"github.com/sunsun042505/sunwoobank/internal/handler"
	"github.com/sunsun042505/sunwoobank/internal/repository/memory"
	"github.com/sunsun042505/sunwoobank/internal/service"
	"github.com/sunsun042505/sunwoobank/pkg/idgen"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type testServer struct {
	router    *gin.Engine
	cfg       *config.Config
	customers *service.CustomerService
	accounts  *service.AccountService
	ledger    *service.LedgerService
}

// 进程内按 key 互斥锁，测试专用
type localLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	idgen.Init(1)

	cfg := &config.Config{
		Auth: config.AuthConfig{
			TellerCode: "0612",
			JWTSecret:  "test-secret",
		},
		Business: config.BusinessConfig{
			LimitTxnMax:   300000,
			LimitDailyMax: 1000000,
			MaxRetryCount: 3,
		},
		Kafka: config.KafkaConfig{
			Topic: config.KafkaTopicConfig{LedgerEvents: "ledger-events"},
		},
	}

	store := memory.NewStore()
	locker := &localLocker{locks: make(map[string]*sync.Mutex)}

	ledger := service.NewLedgerService(store, locker, cfg)
	accounts := service.NewAccountService(store)
	customers := service.NewCustomerService(store)
	products := service.NewProductService(store)

	h := handler.NewHandler(ledger, accounts, customers, products)
	return &testServer{
		router:    handler.SetupRouter(h, customers, cfg),
		cfg:       cfg,
		customers: customers,
		accounts:  accounts,
		ledger:    ledger,
	}
}

// doJSON 发起一次请求并解析 JSON 响应体
func (s *testServer) doJSON(t *testing.T, method, path string, headers map[string]string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("序列化请求失败: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var parsed map[string]interface{}
	if len(w.Body.Bytes()) > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &parsed)
	}
	return w.Code, parsed
}

func tellerHeaders() map[string]string {
	return map[string]string{"X-Teller-Code": "0612"}
}

// signToken 为邮箱签发测试用 Bearer 令牌
func (s *testServer) signToken(t *testing.T, email string) string {
	t.Helper()
	claims := &handler.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		t.Fatalf("签发令牌失败: %v", err)
	}
	return "Bearer " + token
}

func TestPing(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("GET /ping = %d %q, 期望 200 pong", w.Code, w.Body.String())
	}
}

func TestTellerAuthRejectsBadCode(t *testing.T) {
	s := newTestServer(t)

	code, body := s.doJSON(t, http.MethodPost, "/api/v1/teller/auth", nil, nil)
	if code != http.StatusForbidden {
		t.Fatalf("无口令状态码 = %d, 期望 403", code)
	}
	if body["error"] != "BadTellerCode" {
		t.Fatalf("错误码 = %v, 期望 BadTellerCode", body["error"])
	}

	code, body = s.doJSON(t, http.MethodPost, "/api/v1/teller/auth",
		map[string]string{"X-Teller-Code": "9999"}, nil)
	if code != http.StatusForbidden || body["error"] != "BadTellerCode" {
		t.Fatalf("错误口令 = %d %v, 期望 403 BadTellerCode", code, body["error"])
	}

	code, body = s.doJSON(t, http.MethodPost, "/api/v1/teller/auth", tellerHeaders(), nil)
	if code != http.StatusOK || body["role"] != "teller" {
		t.Fatalf("正确口令 = %d %v, 期望 200 teller", code, body)
	}
}

func TestTellerFlowOpenCashTransfer(t *testing.T) {
	s := newTestServer(t)

	// 建档
	code, body := s.doJSON(t, http.MethodPost, "/api/v1/teller/customers", tellerHeaders(),
		map[string]interface{}{"name": "김철수", "email": "chulsoo@example.com"})
	if code != http.StatusOK {
		t.Fatalf("建档 = %d %v", code, body)
	}
	customer := body["customer"].(map[string]interface{})
	customerID := customer["customer_id"].(string)
	primaryNo := body["account_no"].(string)

	// 开户（带初始余额）
	code, body = s.doJSON(t, http.MethodPost, "/api/v1/teller/accounts", tellerHeaders(),
		map[string]interface{}{
			"customer_id":     customerID,
			"initial_balance": 100000,
			"pin":             "1234",
		})
	if code != http.StatusOK {
		t.Fatalf("开户 = %d %v", code, body)
	}
	account := body["account"].(map[string]interface{})
	accountNo := account["account_no"].(string)
	if account["limit_account"] != true {
		t.Error("新开账户应默认带限额账户标志")
	}

	// 取款
	code, body = s.doJSON(t, http.MethodPost, "/api/v1/teller/cash", tellerHeaders(),
		map[string]interface{}{"account_no": accountNo, "kind": "withdraw", "amount": 30000})
	if code != http.StatusOK {
		t.Fatalf("取款 = %d %v", code, body)
	}
	if body["balance"].(float64) != 70000 {
		t.Fatalf("取款后余额 = %v, 期望 70000", body["balance"])
	}

	// 柜员代办转账到主账户
	code, body = s.doJSON(t, http.MethodPost, "/api/v1/teller/transfer", tellerHeaders(),
		map[string]interface{}{"from": accountNo, "to": primaryNo, "amount": 20000})
	if code != http.StatusOK {
		t.Fatalf("转账 = %d %v", code, body)
	}
	if body["from_balance"].(float64) != 50000 {
		t.Fatalf("转账后余额 = %v, 期望 50000", body["from_balance"])
	}

	// 余额不足映射 409
	code, body = s.doJSON(t, http.MethodPost, "/api/v1/teller/cash", tellerHeaders(),
		map[string]interface{}{"account_no": accountNo, "kind": "withdraw", "amount": 999999})
	if code != http.StatusConflict || body["error"] != "InsufficientFunds" {
		t.Fatalf("余额不足 = %d %v, 期望 409 InsufficientFunds", code, body["error"])
	}

	// 流水查询
	code, body = s.doJSON(t, http.MethodGet,
		"/api/v1/teller/transactions?account_no="+accountNo, tellerHeaders(), nil)
	if code != http.StatusOK {
		t.Fatalf("流水查询 = %d %v", code, body)
	}
	txns := body["transactions"].([]interface{})
	if len(txns) != 3 { // 开户入金 + 取款 + 转出
		t.Fatalf("流水条数 = %d, 期望 3", len(txns))
	}
}

func TestTellerBindValidation(t *testing.T) {
	s := newTestServer(t)

	// kind 非法由绑定层拦下
	code, body := s.doJSON(t, http.MethodPost, "/api/v1/teller/cash", tellerHeaders(),
		map[string]interface{}{"account_no": "110-001-000001", "kind": "steal", "amount": 100})
	if code != http.StatusBadRequest || body["error"] != "ValidationError" {
		t.Fatalf("非法 kind = %d %v, 期望 400 ValidationError", code, body["error"])
	}

	code, body = s.doJSON(t, http.MethodPost, "/api/v1/teller/transfer", tellerHeaders(),
		map[string]interface{}{"from": "110-001-000001", "to": "110-001-000002", "amount": -5})
	if code != http.StatusBadRequest || body["error"] != "ValidationError" {
		t.Fatalf("负金额 = %d %v, 期望 400 ValidationError", code, body["error"])
	}
}

func TestRestrictAndRelease(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	enrolled, err := s.customers.CreateCustomer(ctx, &service.EnrollRequest{Name: "김철수"})
	if err != nil {
		t.Fatalf("建档失败: %v", err)
	}
	accountNo := enrolled.AccountNo

	code, body := s.doJSON(t, http.MethodPost, "/api/v1/teller/restrict", tellerHeaders(),
		map[string]interface{}{
			"account_no":  accountNo,
			"seizure":     true,
			"hold_amount": 50000,
			"ref":         "법원 2026타경1234",
		})
	if code != http.StatusOK {
		t.Fatalf("设置扣押 = %d %v", code, body)
	}
	holds := body["holds"].([]interface{})
	if len(holds) != 1 {
		t.Fatalf("冻结记录条数 = %d, 期望 1", len(holds))
	}

	code, body = s.doJSON(t, http.MethodPost, "/api/v1/teller/restrict/release", tellerHeaders(),
		map[string]interface{}{"account_no": accountNo, "kind": "seizure"})
	if code != http.StatusOK {
		t.Fatalf("解除扣押 = %d %v", code, body)
	}
	if holds, _ := body["holds"].([]interface{}); len(holds) != 0 {
		t.Fatalf("解除后冻结记录 = %d 条, 期望 0", len(holds))
	}

	// 未知种类由绑定层拒绝
	code, body = s.doJSON(t, http.MethodPost, "/api/v1/teller/restrict/release", tellerHeaders(),
		map[string]interface{}{"account_no": accountNo, "kind": "freeze"})
	if code != http.StatusBadRequest || body["error"] != "ValidationError" {
		t.Fatalf("未知种类 = %d %v, 期望 400 ValidationError", code, body["error"])
	}
}

func TestCustomerAuth(t *testing.T) {
	s := newTestServer(t)

	// 无令牌 401
	code, body := s.doJSON(t, http.MethodGet, "/api/v1/customer/my", nil, nil)
	if code != http.StatusUnauthorized || body["error"] != "Unauthenticated" {
		t.Fatalf("无令牌 = %d %v, 期望 401 Unauthenticated", code, body["error"])
	}

	// 伪造签名 401
	code, body = s.doJSON(t, http.MethodGet, "/api/v1/customer/my",
		map[string]string{"Authorization": "Bearer not-a-token"}, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("伪造令牌 = %d %v, 期望 401", code, body)
	}

	// 合法令牌但邮箱未建档 403
	code, body = s.doJSON(t, http.MethodGet, "/api/v1/customer/my",
		map[string]string{"Authorization": s.signToken(t, "nobody@example.com")}, nil)
	if code != http.StatusForbidden || body["error"] != "NotEnrolled" {
		t.Fatalf("未建档邮箱 = %d %v, 期望 403 NotEnrolled", code, body["error"])
	}

	// 注册后同一令牌放行
	if _, err := s.customers.Enroll(context.Background(), &service.EnrollRequest{
		Name:  "김철수",
		Email: "chulsoo@example.com",
	}); err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	code, body = s.doJSON(t, http.MethodGet, "/api/v1/customer/my",
		map[string]string{"Authorization": s.signToken(t, "chulsoo@example.com")}, nil)
	if code != http.StatusOK {
		t.Fatalf("合法客户 = %d %v, 期望 200", code, body)
	}
	customer := body["customer"].(map[string]interface{})
	if customer["email"] != "chulsoo@example.com" {
		t.Fatalf("客户邮箱 = %v", customer["email"])
	}
}

func TestCustomerTransferOwnership(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	alice, err := s.customers.Enroll(ctx, &service.EnrollRequest{Name: "김철수", Email: "chulsoo@example.com"})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}
	bob, err := s.customers.Enroll(ctx, &service.EnrollRequest{Name: "이영희", Email: "younghee@example.com"})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	if _, err := s.ledger.CashInOut(ctx, &service.CashRequest{
		AccountNo: alice.AccountNo,
		Kind:      service.CashKindDeposit,
		Amount:    50000,
	}); err != nil {
		t.Fatalf("存款失败: %v", err)
	}

	// 乙的令牌动不了甲的账户
	code, body := s.doJSON(t, http.MethodPost, "/api/v1/customer/transfer",
		map[string]string{"Authorization": s.signToken(t, "younghee@example.com")},
		map[string]interface{}{"from": alice.AccountNo, "to": bob.AccountNo, "amount": 10000})
	if code != http.StatusForbidden || body["error"] != "NotOwner" {
		t.Fatalf("越权转账 = %d %v, 期望 403 NotOwner", code, body["error"])
	}

	// 本人转账放行
	code, body = s.doJSON(t, http.MethodPost, "/api/v1/customer/transfer",
		map[string]string{"Authorization": s.signToken(t, "chulsoo@example.com")},
		map[string]interface{}{"from": alice.AccountNo, "to": bob.AccountNo, "amount": 10000})
	if code != http.StatusOK {
		t.Fatalf("本人转账 = %d %v, 期望 200", code, body)
	}
	if body["from_balance"].(float64) != 40000 {
		t.Fatalf("转账后余额 = %v, 期望 40000", body["from_balance"])
	}
}

func TestCustomerSubmitReportUsesTokenIdentity(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	enrolled, err := s.customers.Enroll(ctx, &service.EnrollRequest{Name: "김철수", Email: "chulsoo@example.com"})
	if err != nil {
		t.Fatalf("注册失败: %v", err)
	}

	code, body := s.doJSON(t, http.MethodPost, "/api/v1/customer/reports",
		map[string]string{"Authorization": s.signToken(t, "chulsoo@example.com")},
		map[string]interface{}{"kind": "form", "text": "주소 변경 신고", "signature": "c2ln"})
	if code != http.StatusOK {
		t.Fatalf("客户申告 = %d %v", code, body)
	}
	report := body["report"].(map[string]interface{})
	if report["customer_id"] != enrolled.Customer.CustomerID {
		t.Fatalf("申告归属 = %v, 期望 %s", report["customer_id"], enrolled.Customer.CustomerID)
	}
}
