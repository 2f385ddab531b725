package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/services"
)

var ErrNoPermission = errors.New("권한이 없습니다.")

// statusForServiceErr maps the domain errors raised by the services layer to
// HTTP status codes. Unknown errors fall through to 500.
func statusForServiceErr(err error) int {
	switch {
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrMenuNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrMenuOrderNotFound),
		errors.Is(err, services.ErrWaitingNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrMenuOrderRaw),
		errors.Is(err, services.ErrWaitingNotNotified):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrMenuSoldOut),
		errors.Is(err, services.ErrOrderRejected),
		errors.Is(err, services.ErrOrderPaid),
		errors.Is(err, services.ErrOrderFinished),
		errors.Is(err, services.ErrMenuOrderRejected),
		errors.Is(err, services.ErrMenuOrderServed),
		errors.Is(err, services.ErrMenuOrderCooked),
		errors.Is(err, services.ErrWaitingExists),
		errors.Is(err, services.ErrWaitingEntered),
		errors.Is(err, services.ErrWaitingRejected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// currentRestaurant loads the single restaurant row every request is scoped
// to. The row is seeded at startup.
func currentRestaurant(db *gorm.DB) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := db.First(&restaurant).Error; err != nil {
		return nil, err
	}
	return &restaurant, nil
}
