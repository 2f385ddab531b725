package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenus lists the menu board. Public: the table ordering page uses it.
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	restaurant, err := currentRestaurant(mc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var menus []models.Menu
	if err := mc.DB.Where("restaurant_id = ?", restaurant.ID).
		Order("id asc").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// CreateMenu adds a menu item.
func (mc *MenuController) CreateMenu(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(mc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		Name           string  `json:"name" binding:"required"`
		Desc           *string `json:"desc"`
		Price          int     `json:"price" binding:"required,min=0"`
		Image          *string `json:"image"`
		IsInstantServe bool    `json:"is_instant_serve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu := models.Menu{
		RestaurantID:   restaurant.ID,
		Name:           req.Name,
		Desc:           req.Desc,
		Price:          req.Price,
		Image:          req.Image,
		IsInstantServe: req.IsInstantServe,
	}
	if err := mc.DB.Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

// UpdateMenu patches a menu item; toggling no_stock is the common case during
// service hours.
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(mc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var menu models.Menu
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", c.Param("menu_id"), restaurant.ID).
		First(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var req struct {
		Name           *string `json:"name"`
		Desc           *string `json:"desc"`
		Price          *int    `json:"price"`
		Image          *string `json:"image"`
		NoStock        *bool   `json:"no_stock"`
		IsInstantServe *bool   `json:"is_instant_serve"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Desc != nil {
		menu.Desc = req.Desc
	}
	if req.Price != nil {
		menu.Price = *req.Price
	}
	if req.Image != nil {
		menu.Image = req.Image
	}
	if req.NoStock != nil {
		menu.NoStock = *req.NoStock
	}
	if req.IsInstantServe != nil {
		menu.IsInstantServe = *req.IsInstantServe
	}

	if err := mc.DB.Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu updated", menu)
}

// DeleteMenu removes a menu item from the board.
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(mc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var menu models.Menu
	if err := mc.DB.Where("id = ? AND restaurant_id = ?", c.Param("menu_id"), restaurant.ID).
		First(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := mc.DB.Delete(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"menu_id": menu.ID})
}
