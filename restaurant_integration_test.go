package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/database"
	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/router"
	"github.com/acornsoft/pocha-backend/services"
	"github.com/acornsoft/pocha-backend/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type nullSender struct{}

func (nullSender) Send(templateCode, phone, content string, buttons []services.AlimtalkButton) error {
	return nil
}

type stubFetcher struct {
	transactions []services.BankTransaction
}

func (s *stubFetcher) FetchTransactions(days int) ([]services.BankTransaction, error) {
	return s.transactions, nil
}

func setupIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{}, &models.Restaurant{}, &models.Table{}, &models.Team{},
		&models.Menu{}, &models.Order{}, &models.OrderedMenu{},
		&models.Payment{}, &models.Waiting{}, &database.OrderCounter{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	restaurant := models.Restaurant{Name: "우리식당", BankName: "KB국민은행", BankAccountNo: "123-456"}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatal(err)
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.DefaultCost)
	user := models.User{Name: "사장님", Email: "owner@pocha.kr", Password: string(hashed), Role: "admin"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}

	table := models.Table{RestaurantID: restaurant.ID, No: 1, Status: models.TableStatusIdle}
	if err := db.Create(&table).Error; err != nil {
		t.Fatal(err)
	}
	menu := models.Menu{RestaurantID: restaurant.ID, Name: "김치전", Price: 12000}
	if err := db.Create(&menu).Error; err != nil {
		t.Fatal(err)
	}
	return db
}

func request(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestEndToEndIntegration drives the main service flow over HTTP:
// login -> guest orders -> bank reconciliation marks it paid ->
// kitchen cooks and serves every unit -> order finishes.
func TestEndToEndIntegration(t *testing.T) {
	db := setupIntegrationDB(t)

	orders := services.NewOrderService(db)
	waitlist := services.NewWaitlistService(db, services.NewWaitingNotifier(nullSender{}))
	kitchen := services.NewKitchenQueue(db, orders)
	r := router.SetupRouter(db, orders, waitlist, kitchen)

	// login
	w := request(t, r, "POST", "/login", "", map[string]interface{}{
		"email":    "owner@pocha.kr",
		"password": "supersecret",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	var loginResp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	token := loginResp.Data.Token
	assert.NotEmpty(t, token)

	// admin routes are closed without the token
	w = request(t, r, "GET", "/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// guest places an order with two portions
	w = request(t, r, "POST", "/tables/1/orders", "", map[string]interface{}{
		"items": []map[string]interface{}{{"menu_id": 1, "quantity": 2}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var createResp struct {
		Data struct {
			Order struct {
				ID uint `json:"id"`
				No int  `json:"no"`
			} `json:"order"`
			FinalPrice int `json:"final_price"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &createResp))
	orderID := createResp.Data.Order.ID
	assert.Equal(t, 24000-createResp.Data.Order.No%100, createResp.Data.FinalPrice)

	// the exact transfer arrives; reconciliation attaches it
	fetcher := &stubFetcher{transactions: []services.BankTransaction{
		{TransactionBy: "홍길동", Date: time.Now().UTC(), Amount: createResp.Data.FinalPrice},
	}}
	reconciler := services.NewPaymentReconciler(db, fetcher)
	assert.NoError(t, reconciler.Run())

	var paid models.Order
	assert.NoError(t, db.First(&paid, orderID).Error)
	assert.Equal(t, models.OrderStatusPaid, paid.Status())

	// kitchen cooks both units
	for i := 0; i < 2; i++ {
		w = request(t, r, "POST", "/admin/kitchen/menus/1/cook-one", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// and serves them
	w = request(t, r, "GET", "/admin/kitchen/serving", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var servingResp struct {
		Data []struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &servingResp))
	assert.Len(t, servingResp.Data, 2)

	for _, unit := range servingResp.Data {
		w = request(t, r, "POST", fmt.Sprintf("/admin/order-items/%d/serve", unit.ID), token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	var done models.Order
	assert.NoError(t, db.First(&done, orderID).Error)
	assert.Equal(t, models.OrderStatusFinished, done.Status())

	// closing the table frees it for the next party
	w = request(t, r, "POST", "/admin/tables/1/close", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var table models.Table
	assert.NoError(t, db.First(&table, 1).Error)
	assert.Equal(t, models.TableStatusIdle, table.Status)
}
