package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/database"
	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/utils"
)

type fakeFetcher struct {
	transactions []BankTransaction
	err          error
}

func (f *fakeFetcher) FetchTransactions(days int) ([]BankTransaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.transactions, nil
}

func setupServiceDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Restaurant{}, &models.Table{}, &models.Team{}, &models.Menu{},
		&models.Order{}, &models.OrderedMenu{}, &models.Payment{},
		&models.Waiting{}, &database.OrderCounter{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedTestRestaurant(t *testing.T, db *gorm.DB) *models.Restaurant {
	t.Helper()
	restaurant := models.Restaurant{Name: "우리식당", BankName: "KB국민은행", BankAccountNo: "123-456"}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("failed to seed restaurant: %v", err)
	}
	return &restaurant
}

// seedOpenOrder creates a team plus an unpaid order with one unit per price.
func seedOpenOrder(t *testing.T, db *gorm.DB, restaurantID uint, no int, prices []int, createdAt time.Time) *models.Order {
	t.Helper()
	team := models.Team{RestaurantID: restaurantID, SessionKey: "sess"}
	if err := db.Create(&team).Error; err != nil {
		t.Fatal(err)
	}
	order := models.Order{RestaurantID: restaurantID, TeamID: team.ID, No: no, CreatedAt: createdAt}
	if err := db.Create(&order).Error; err != nil {
		t.Fatal(err)
	}
	for _, price := range prices {
		unit := models.OrderedMenu{RestaurantID: restaurantID, OrderID: order.ID, MenuID: 1, Price: price}
		if err := db.Create(&unit).Error; err != nil {
			t.Fatal(err)
		}
	}
	return &order
}

func TestReconcileMatchesOrderByTrailingDigits(t *testing.T) {
	db := setupServiceDB(t, "reconcile_match")
	restaurant := seedTestRestaurant(t, db)

	// order no 407, total 32500 -> the guest transfers 32500 - 7 = 32493
	orderedAt := time.Now().UTC().Add(-2 * time.Minute)
	order := seedOpenOrder(t, db, restaurant.ID, 407, []int{20000, 12500}, orderedAt)

	fetcher := &fakeFetcher{transactions: []BankTransaction{
		{TransactionBy: "홍길동", Date: time.Now().UTC(), Amount: 32493},
	}}
	reconciler := NewPaymentReconciler(db, fetcher)

	assert.NoError(t, reconciler.Run())

	var got models.Order
	assert.NoError(t, db.First(&got, order.ID).Error)
	assert.NotNil(t, got.PaymentID)
	assert.Equal(t, models.OrderStatusPaid, got.Status())

	var payment models.Payment
	assert.NoError(t, db.First(&payment, *got.PaymentID).Error)
	assert.Equal(t, 32493, payment.Amount)
}

func TestReconcileIgnoresWrongAmount(t *testing.T) {
	db := setupServiceDB(t, "reconcile_wrong_amount")
	restaurant := seedTestRestaurant(t, db)

	orderedAt := time.Now().UTC().Add(-2 * time.Minute)
	order := seedOpenOrder(t, db, restaurant.ID, 407, []int{20000, 12500}, orderedAt)

	// right trailing digits, wrong total
	fetcher := &fakeFetcher{transactions: []BankTransaction{
		{TransactionBy: "홍길동", Date: time.Now().UTC(), Amount: 30093},
	}}
	reconciler := NewPaymentReconciler(db, fetcher)

	assert.NoError(t, reconciler.Run())

	var got models.Order
	assert.NoError(t, db.First(&got, order.ID).Error)
	assert.Nil(t, got.PaymentID)
	assert.Equal(t, models.OrderStatusOrdered, got.Status())
}

func TestReconcileRequiresOrderBeforePayment(t *testing.T) {
	db := setupServiceDB(t, "reconcile_order_after")
	restaurant := seedTestRestaurant(t, db)

	// order placed after the transfer arrived: no match
	order := seedOpenOrder(t, db, restaurant.ID, 407, []int{20000, 12500},
		time.Now().UTC().Add(time.Minute))

	fetcher := &fakeFetcher{transactions: []BankTransaction{
		{TransactionBy: "홍길동", Date: time.Now().UTC(), Amount: 32493},
	}}
	reconciler := NewPaymentReconciler(db, fetcher)

	assert.NoError(t, reconciler.Run())

	var got models.Order
	assert.NoError(t, db.First(&got, order.ID).Error)
	assert.Nil(t, got.PaymentID)
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := setupServiceDB(t, "reconcile_idempotent")
	seedTestRestaurant(t, db)

	date := time.Now().UTC().Truncate(time.Second)
	fetcher := &fakeFetcher{transactions: []BankTransaction{
		{TransactionBy: "홍길동", Date: date, Amount: 15000},
	}}
	reconciler := NewPaymentReconciler(db, fetcher)

	assert.NoError(t, reconciler.Run())
	assert.NoError(t, reconciler.Run())

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestReconcileAutoRejectsStaleOrders(t *testing.T) {
	db := setupServiceDB(t, "reconcile_stale")
	restaurant := seedTestRestaurant(t, db)

	stale := seedOpenOrder(t, db, restaurant.ID, 101, []int{9000},
		time.Now().UTC().Add(-11*time.Minute))
	fresh := seedOpenOrder(t, db, restaurant.ID, 202, []int{9000},
		time.Now().UTC().Add(-1*time.Minute))

	// an unmatched new transaction so the cycle reaches the expiry phase
	fetcher := &fakeFetcher{transactions: []BankTransaction{
		{TransactionBy: "아무개", Date: time.Now().UTC(), Amount: 555},
	}}
	reconciler := NewPaymentReconciler(db, fetcher)

	assert.NoError(t, reconciler.Run())

	var gotStale, gotFresh models.Order
	assert.NoError(t, db.First(&gotStale, stale.ID).Error)
	assert.NoError(t, db.First(&gotFresh, fresh.ID).Error)

	assert.Equal(t, models.OrderStatusRejected, gotStale.Status())
	assert.Equal(t, autoRejectReason, *gotStale.RejectReason)
	assert.Equal(t, models.OrderStatusOrdered, gotFresh.Status())
}

func TestReconcileSkipsExpiryWithoutNewPayments(t *testing.T) {
	db := setupServiceDB(t, "reconcile_no_new")
	restaurant := seedTestRestaurant(t, db)

	stale := seedOpenOrder(t, db, restaurant.ID, 101, []int{9000},
		time.Now().UTC().Add(-11*time.Minute))

	date := time.Now().UTC().Truncate(time.Second)
	fetcher := &fakeFetcher{transactions: []BankTransaction{
		{TransactionBy: "홍길동", Date: date, Amount: 15000},
	}}
	reconciler := NewPaymentReconciler(db, fetcher)

	// first run ingests the transaction; second run sees nothing new and
	// returns before the expiry phase
	assert.NoError(t, reconciler.Run())
	db.Model(&models.Order{}).Where("id = ?", stale.ID).Update("reject_reason", nil)

	assert.NoError(t, reconciler.Run())

	var got models.Order
	assert.NoError(t, db.First(&got, stale.ID).Error)
	assert.Nil(t, got.RejectReason)
}

func TestReconcileFetchFailureWritesNothing(t *testing.T) {
	db := setupServiceDB(t, "reconcile_fetch_fail")
	restaurant := seedTestRestaurant(t, db)

	stale := seedOpenOrder(t, db, restaurant.ID, 101, []int{9000},
		time.Now().UTC().Add(-11*time.Minute))

	reconciler := NewPaymentReconciler(db, &fakeFetcher{err: errors.New("scraper down")})

	assert.Error(t, reconciler.Run())

	var paymentCount int64
	db.Model(&models.Payment{}).Count(&paymentCount)
	assert.Equal(t, int64(0), paymentCount)

	var got models.Order
	assert.NoError(t, db.First(&got, stale.ID).Error)
	assert.Nil(t, got.RejectReason)
}
