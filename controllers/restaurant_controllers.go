package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/utils"
)

type RestaurantController struct {
	DB *gorm.DB
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{DB: db}
}

// GetRestaurant exposes the store profile guests see on the waitlist page.
func (rc *RestaurantController) GetRestaurant(c *gin.Context) {
	restaurant, err := currentRestaurant(rc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

// UpdateRestaurant lets the admin edit opening hours and the deposit account.
func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(rc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		Name           *string `json:"name"`
		OpenTime       *string `json:"open_time"`
		CloseTime      *string `json:"close_time"`
		BreakStartTime *string `json:"break_start_time"`
		BreakEndTime   *string `json:"break_end_time"`
		BankName       *string `json:"bank_name"`
		BankAccountNo  *string `json:"bank_account_no"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		restaurant.Name = *req.Name
	}
	if req.OpenTime != nil {
		restaurant.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		restaurant.CloseTime = *req.CloseTime
	}
	if req.BreakStartTime != nil {
		restaurant.BreakStartTime = req.BreakStartTime
	}
	if req.BreakEndTime != nil {
		restaurant.BreakEndTime = req.BreakEndTime
	}
	if req.BankName != nil {
		restaurant.BankName = *req.BankName
	}
	if req.BankAccountNo != nil {
		restaurant.BankAccountNo = *req.BankAccountNo
	}

	if err := rc.DB.Save(restaurant).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}
