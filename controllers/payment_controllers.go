package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/kds"
	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/utils"
)

var (
	ErrPaymentNotFound = errors.New("결제 내역을 찾을 수 없습니다.")
	ErrAlreadyRefunded = errors.New("이미 환불된 결제 내역입니다.")
)

type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// GetAllPayments lists reconciled bank transactions, newest first.
func (pc *PaymentController) GetAllPayments(c *gin.Context) {
	restaurant, err := currentRestaurant(pc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var payments []models.Payment
	if err := pc.DB.Where("restaurant_id = ?", restaurant.ID).
		Order("created_at desc").Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}

// RefundPayment marks a payment refunded. The transfer itself happens out of
// band; this only records it.
func (pc *PaymentController) RefundPayment(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(pc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var payment models.Payment
	err = pc.DB.Where("id = ? AND restaurant_id = ?", c.Param("payment_id"), restaurant.ID).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, ErrPaymentNotFound)
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if payment.RefundedAt != nil {
		utils.RespondError(c, http.StatusConflict, ErrAlreadyRefunded)
		return
	}

	now := time.Now().UTC()
	payment.RefundedAt = &now
	if err := pc.DB.Save(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastPaymentUpdate(payment)
	utils.RespondJSON(c, http.StatusOK, "Payment refunded", payment)
}

// GetSalesStats aggregates sales per day over ?days=N (default 7), refunds
// excluded.
func (pc *PaymentController) GetSalesStats(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(pc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	days := 7
	if v := c.Query("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var payments []models.Payment
	if err := pc.DB.
		Where("restaurant_id = ? AND refunded_at IS NULL AND created_at >= ?", restaurant.ID, since).
		Order("created_at asc").Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type dailySales struct {
		Date   string `json:"date"`
		Count  int    `json:"count"`
		Amount int    `json:"amount"`
	}

	byDate := make(map[string]*dailySales)
	order := make([]string, 0)
	totalAmount := 0
	for _, p := range payments {
		date := p.CreatedAt.Format("2006-01-02")
		entry, ok := byDate[date]
		if !ok {
			entry = &dailySales{Date: date}
			byDate[date] = entry
			order = append(order, date)
		}
		entry.Count++
		entry.Amount += p.Amount
		totalAmount += p.Amount
	}

	daily := make([]dailySales, 0, len(order))
	for _, date := range order {
		daily = append(daily, *byDate[date])
	}

	utils.RespondJSON(c, http.StatusOK, "Sales stats", gin.H{
		"total_amount": totalAmount,
		"total_count":  len(payments),
		"daily":        daily,
	})
}
