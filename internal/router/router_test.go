package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"phone-shop/internal/config"
	"phone-shop/internal/database"
	"phone-shop/internal/service"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
)

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.JWT.Secret = "router-test-secret"
	cfg.Database.Path = filepath.Join(t.TempDir(), "api.db")

	db, err := database.Init(cfg.Database)
	if err != nil {
		t.Fatalf("Init test database failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	eng := service.NewEngine(db, service.OptionsFromConfig(cfg.Ledger))
	return SetupRouter(cfg, db, eng)
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode response: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w.Code, env
}

// login 注册并登录，返回 token
func login(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	password := "Passw0rdX"
	code, env := do(t, r, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "password": password, "confirm_password": password,
	})
	if code != http.StatusOK {
		t.Fatalf("register %s: status %d, %+v", username, code, env)
	}
	code, env = do(t, r, http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username, "password": password,
	})
	if code != http.StatusOK {
		t.Fatalf("login %s: status %d, %+v", username, code, env)
	}
	token, _ := env.Data["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	return token
}

func TestAPI_RequiresLogin(t *testing.T) {
	r := setupTestServer(t)

	code, env := do(t, r, http.MethodGet, "/api/balance", "", nil)
	if code != http.StatusUnauthorized || env.Code != util.CodeAuth {
		t.Errorf("status = %d code = %d, want 401/%d", code, env.Code, util.CodeAuth)
	}
}

func TestAPI_SaleFlow(t *testing.T) {
	r := setupTestServer(t)
	owner := login(t, r, "owner")

	if code, env := do(t, r, http.MethodPut, "/api/rates", owner, map[string]string{"usd_to_lc": "1440"}); code != http.StatusOK {
		t.Fatalf("set rate: %d %+v", code, env)
	}

	code, env := do(t, r, http.MethodPost, "/api/catalog/product", owner, map[string]interface{}{
		"name": "Galaxy A15", "stock": 1, "buying_price": "100", "selling_price": "150", "currency": "USD",
	})
	if code != http.StatusOK {
		t.Fatalf("create product: %d %+v", code, env)
	}
	item := env.Data["item"].(map[string]interface{})
	ref := item["ref"].(map[string]interface{})
	productID := int(ref["id"].(float64))

	sale := map[string]interface{}{
		"items":    []map[string]interface{}{{"ref": map[string]interface{}{"kind": "product", "id": productID}, "quantity": 1, "selling_price": "150"}},
		"total":    "150",
		"currency": "USD",
	}
	code, env = do(t, r, http.MethodPost, "/api/sales", owner, sale)
	if code != http.StatusOK {
		t.Fatalf("create sale: %d %+v", code, env)
	}
	result := env.Data["result"].(map[string]interface{})
	saleID := int(result["sale"].(map[string]interface{})["id"].(float64))

	// 库存不足
	code, env = do(t, r, http.MethodPost, "/api/sales", owner, sale)
	if code != http.StatusConflict || env.Code != util.CodeInsufficientStock {
		t.Errorf("oversell: status = %d code = %d, want 409/%d", code, env.Code, util.CodeInsufficientStock)
	}

	code, env = do(t, r, http.MethodGet, "/api/balance", owner, nil)
	if code != http.StatusOK {
		t.Fatalf("get balance: %d %+v", code, env)
	}
	balance := env.Data["balance"].(map[string]interface{})
	if balance["usd"] != "150" {
		t.Errorf("balance usd = %v, want 150", balance["usd"])
	}

	code, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/sales/%d/return", saleID), owner, nil)
	if code != http.StatusOK {
		t.Fatalf("return sale: %d %+v", code, env)
	}
	code, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/sales/%d/return", saleID), owner, nil)
	if code != http.StatusNotFound || env.Code != util.CodeNotFound {
		t.Errorf("second return: status = %d code = %d, want 404/%d", code, env.Code, util.CodeNotFound)
	}

	code, env = do(t, r, http.MethodGet, "/api/transactions?type=sale", owner, nil)
	if code != http.StatusOK {
		t.Fatalf("list transactions: %d %+v", code, env)
	}
	if total := env.Data["total"].(float64); total != 1 {
		t.Errorf("sale transactions = %v, want 1", total)
	}

	code, env = do(t, r, http.MethodGet, "/api/logs", owner, nil)
	if code != http.StatusOK {
		t.Fatalf("list logs: %d %+v", code, env)
	}
	if total := env.Data["total"].(float64); total < 4 {
		t.Errorf("audit logs = %v, want at least 4 write requests", total)
	}
}

func TestAPI_ValidationAndRoles(t *testing.T) {
	r := setupTestServer(t)
	owner := login(t, r, "owner")
	cashier := login(t, r, "cashier")

	code, env := do(t, r, http.MethodPost, "/api/customer-debts", owner, map[string]interface{}{
		"amount": "50", "currency": "USD",
	})
	if code != http.StatusBadRequest || env.Code != util.CodeInvalidParam {
		t.Errorf("debt without customer: status = %d code = %d", code, env.Code)
	}

	code, env = do(t, r, http.MethodPost, "/api/customer-debts", owner, map[string]interface{}{
		"customer_name": "Karim", "amount": "50", "currency": "USD",
	})
	if code != http.StatusOK {
		t.Fatalf("create debt: %d %+v", code, env)
	}
	debtID := int(env.Data["debt"].(map[string]interface{})["id"].(float64))

	code, env = do(t, r, http.MethodPost, fmt.Sprintf("/api/customer-debts/%d/pay", debtID), cashier, map[string]interface{}{
		"payment": map[string]string{"usd": "20", "lc": "0"},
	})
	if code != http.StatusOK {
		t.Fatalf("pay debt: %d %+v", code, env)
	}
	result := env.Data["result"].(map[string]interface{})
	if result["fully_paid"] != false {
		t.Errorf("partial payment reported fully paid")
	}

	// 收银员不能调整余额
	code, _ = do(t, r, http.MethodPost, "/api/balance/adjust", cashier, map[string]interface{}{
		"delta": map[string]string{"usd": "10", "lc": "0"}, "note": "till",
	})
	if code != http.StatusForbidden {
		t.Errorf("cashier adjust: status = %d, want 403", code)
	}

	code, env = do(t, r, http.MethodGet, "/api/me", cashier, nil)
	if code != http.StatusOK {
		t.Fatalf("me: %d %+v", code, env)
	}
	if role := env.Data["user"].(map[string]interface{})["role"]; role != "cashier" {
		t.Errorf("second user role = %v, want cashier", role)
	}
}

func TestAPI_ExportCSV(t *testing.T) {
	r := setupTestServer(t)
	owner := login(t, r, "owner")

	if code, env := do(t, r, http.MethodPost, "/api/balance/adjust", owner, map[string]interface{}{
		"delta": map[string]string{"usd": "100", "lc": "0"}, "note": "opening cash",
	}); code != http.StatusOK {
		t.Fatalf("adjust: %d %+v", code, env)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/export/csv?token="+owner, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("export csv: status %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "manual_adjustment") || !strings.Contains(body, "opening cash") {
		t.Errorf("csv missing adjustment row:\n%s", body)
	}
}
