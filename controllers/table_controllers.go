package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/kds"
	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/services"
	"github.com/acornsoft/pocha-backend/utils"
)

type TableController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewTableController(db *gorm.DB, orders *services.OrderService) *TableController {
	return &TableController{DB: db, Orders: orders}
}

// GetAllTables lists every table with its current status.
func (tc *TableController) GetAllTables(c *gin.Context) {
	restaurant, err := currentRestaurant(tc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var tables []models.Table
	if err := tc.DB.Where("restaurant_id = ?", restaurant.ID).
		Order("no asc").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable registers a new physical table.
func (tc *TableController) CreateTable(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(tc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		No int `json:"no" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		RestaurantID: restaurant.ID,
		No:           req.No,
		Status:       models.TableStatusIdle,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Table created", table)
}

// UpdateTable patches the table number or forces a status (idle/reserved).
func (tc *TableController) UpdateTable(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(tc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var table models.Table
	if err := tc.DB.Where("id = ? AND restaurant_id = ?", c.Param("table_id"), restaurant.ID).
		First(&table).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		No     *int    `json:"no"`
		Status *string `json:"status" binding:"omitempty,oneof=idle in_use reserved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// freeing an occupied table ends its party's session
	if req.Status != nil && *req.Status == models.TableStatusIdle && table.Status != models.TableStatusIdle {
		closed, err := tc.Orders.CloseTable(restaurant.ID, table.ID)
		if err != nil {
			utils.RespondError(c, statusForServiceErr(err), err)
			return
		}
		table = *closed
	}

	if req.No != nil {
		table.No = *req.No
	}
	if req.Status != nil {
		table.Status = *req.Status
	}

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastTableUpdate(table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// CloseTable force-ends the table's active team and returns it to idle. Used
// when a party leaves.
func (tc *TableController) CloseTable(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(tc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Orders.CloseTable(restaurant.ID, uint(tableID))
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastTableUpdate(*table)
	utils.RespondJSON(c, http.StatusOK, "Table closed", table)
}

// GetTableStats feeds the dashboard header: table counts per status.
func (tc *TableController) GetTableStats(c *gin.Context) {
	restaurant, err := currentRestaurant(tc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var stats struct {
		Total    int64 `json:"total"`
		Idle     int64 `json:"idle"`
		InUse    int64 `json:"in_use"`
		Reserved int64 `json:"reserved"`
	}

	base := tc.DB.Model(&models.Table{}).Where("restaurant_id = ?", restaurant.ID)
	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	base.Session(&gorm.Session{}).Where("status = ?", models.TableStatusIdle).Count(&stats.Idle)
	base.Session(&gorm.Session{}).Where("status = ?", models.TableStatusInUse).Count(&stats.InUse)
	base.Session(&gorm.Session{}).Where("status = ?", models.TableStatusReserved).Count(&stats.Reserved)

	utils.RespondJSON(c, http.StatusOK, "Table stats", stats)
}
