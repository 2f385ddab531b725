package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/utils"
)

const (
	// lookback window for the bank statement fetch
	bankLookbackDays = 30

	// unpaid orders older than this get auto-rejected
	paymentGracePeriod = 10 * time.Minute

	autoRejectReason = "10분동안 입금되지 않아 자동으로 주문이 거절되었습니다."
)

// PaymentReconciler turns raw bank transactions into payment rows and
// attaches them to open orders via the trailing-digit amount encoding.
type PaymentReconciler struct {
	db      *gorm.DB
	fetcher TransactionFetcher
}

func NewPaymentReconciler(db *gorm.DB, fetcher TransactionFetcher) *PaymentReconciler {
	return &PaymentReconciler{db: db, fetcher: fetcher}
}

// Run executes one reconciliation cycle. A fetch failure aborts the cycle
// before any write; the two commit phases (payment sync, order matching) are
// separate transactions, and a crash in between self-heals next cycle because
// matching is re-derived from scratch.
func (r *PaymentReconciler) Run() error {
	transactions, err := r.fetcher.FetchTransactions(bankLookbackDays)
	if err != nil {
		return fmt.Errorf("bank transaction fetch failed: %w", err)
	}

	var restaurant models.Restaurant
	if err := r.db.First(&restaurant).Error; err != nil {
		return fmt.Errorf("restaurant not found: %w", err)
	}

	newPayments, err := r.syncPayments(restaurant.ID, transactions)
	if err != nil {
		return err
	}
	if len(newPayments) == 0 {
		return nil
	}
	utils.InfoLogger.Printf("inserted %d new payments", len(newPayments))

	return r.matchAndExpire(restaurant.ID, newPayments)
}

// syncPayments inserts every transaction that has no payment row with the
// same amount and the exact same timestamp. That pair is the sole
// idempotency guard against re-ingesting the window on every poll.
func (r *PaymentReconciler) syncPayments(restaurantID uint, transactions []BankTransaction) ([]models.Payment, error) {
	if len(transactions) == 0 {
		return nil, nil
	}

	dates := make([]time.Time, 0, len(transactions))
	for _, trs := range transactions {
		dates = append(dates, trs.Date)
	}

	var existing []models.Payment
	if err := r.db.
		Where("restaurant_id = ? AND created_at IN ?", restaurantID, dates).
		Find(&existing).Error; err != nil {
		return nil, err
	}

	var newPayments []models.Payment
	for _, trs := range transactions {
		known := false
		for _, p := range existing {
			if p.Amount == trs.Amount && p.CreatedAt.Equal(trs.Date) {
				known = true
				break
			}
		}
		if known {
			continue
		}
		by := trs.TransactionBy
		newPayments = append(newPayments, models.Payment{
			RestaurantID:  restaurantID,
			Amount:        trs.Amount,
			TransactionBy: &by,
			CreatedAt:     trs.Date,
		})
	}

	if len(newPayments) == 0 {
		return nil, nil
	}
	if err := r.db.Create(&newPayments).Error; err != nil {
		return nil, err
	}
	return newPayments, nil
}

// matchAndExpire attaches new payments to open orders and auto-rejects open
// orders that outlived the grace period. One transaction for both steps.
func (r *PaymentReconciler) matchAndExpire(restaurantID uint, newPayments []models.Payment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var openOrders []models.Order
		if err := tx.Preload("OrderedMenus").
			Where("restaurant_id = ? AND payment_id IS NULL AND reject_reason IS NULL", restaurantID).
			Find(&openOrders).Error; err != nil {
			return err
		}

		open := make(map[uint]*models.Order, len(openOrders))
		ids := make([]uint, 0, len(openOrders))
		for i := range openOrders {
			open[openOrders[i].ID] = &openOrders[i]
			ids = append(ids, openOrders[i].ID)
		}

		matched := 0
		for i := range newPayments {
			payment := &newPayments[i]
			// The customer transferred total - no%100, so the shortfall
			// identifies the trailing digits of the order number.
			expected := 100 - payment.Amount%100

			for _, id := range ids {
				order, ok := open[id]
				if !ok {
					continue
				}
				if order.CreatedAt.Before(payment.CreatedAt) &&
					order.No%100 == expected &&
					order.TotalPrice() == payment.Amount+expected {
					if err := tx.Model(order).Update("payment_id", payment.ID).Error; err != nil {
						return err
					}
					delete(open, id)
					matched++
					break
				}
			}
		}
		if matched > 0 {
			utils.InfoLogger.Printf("attached payments to %d orders", matched)
		}

		deadline := time.Now().UTC().Add(-paymentGracePeriod)
		expired := 0
		for _, id := range ids {
			order, ok := open[id]
			if !ok {
				continue
			}
			if order.CreatedAt.Before(deadline) {
				if err := tx.Model(order).Update("reject_reason", autoRejectReason).Error; err != nil {
					return err
				}
				expired++
			}
		}
		if expired > 0 {
			utils.InfoLogger.Printf("auto-rejected %d unpaid orders", expired)
		}

		return nil
	})
}
