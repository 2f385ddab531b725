package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/kds"
	"github.com/acornsoft/pocha-backend/services"
	"github.com/acornsoft/pocha-backend/utils"
)

type KitchenController struct {
	DB      *gorm.DB
	Kitchen *services.KitchenQueue
	Orders  *services.OrderService
}

func NewKitchenController(db *gorm.DB, kitchen *services.KitchenQueue, orders *services.OrderService) *KitchenController {
	return &KitchenController{DB: db, Kitchen: kitchen, Orders: orders}
}

// GetCookingQueue shows pending units grouped per menu. The kitchen screen
// polls this between websocket pushes.
func (kc *KitchenController) GetCookingQueue(c *gin.Context) {
	restaurant, err := currentRestaurant(kc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	queue, err := kc.Kitchen.Queue(restaurant.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cooking queue", queue)
}

// CookOneOfMenu marks the oldest pending unit of a menu as cooked.
func (kc *KitchenController) CookOneOfMenu(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" && role != "chef" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(kc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	menuID, err := strconv.Atoi(c.Param("menu_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	unit, err := kc.Kitchen.CookOne(restaurant.ID, uint(menuID))
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastKitchenUpdate(unit)
	utils.RespondJSON(c, http.StatusOK, "Item cooked", unit)
}

// CookItem marks one specific unit as cooked, bypassing the per-menu queue.
func (kc *KitchenController) CookItem(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" && role != "chef" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(kc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	unit, err := kc.Orders.CookUnit(restaurant.ID, uint(itemID))
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastKitchenUpdate(unit)
	utils.RespondJSON(c, http.StatusOK, "Item cooked", unit)
}

// GetServingList shows cooked, unserved units with order and table numbers.
func (kc *KitchenController) GetServingList(c *gin.Context) {
	restaurant, err := currentRestaurant(kc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	list, err := kc.Kitchen.ServingList(restaurant.ID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Serving list", list)
}

// ServeItem marks one cooked unit as served; the order finishes once every
// unit is served or rejected.
func (kc *KitchenController) ServeItem(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" && role != "chef" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(kc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	unit, err := kc.Orders.ServeUnit(restaurant.ID, uint(itemID))
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastKitchenUpdate(unit)
	utils.RespondJSON(c, http.StatusOK, "Item served", unit)
}
