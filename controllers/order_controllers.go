package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/kds"
	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/services"
	"github.com/acornsoft/pocha-backend/utils"
)

type OrderController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewOrderController(db *gorm.DB, orders *services.OrderService) *OrderController {
	return &OrderController{DB: db, Orders: orders}
}

// depositGuide builds the transfer instruction shown right after ordering.
// The guest must transfer FinalPrice exactly; its last two digits identify
// the order during reconciliation.
func depositGuide(restaurant *models.Restaurant, order *models.Order) string {
	return fmt.Sprintf("%s %s로 %s을 입금해주세요.\n10분 안에 입금되지 않으면 주문이 자동으로 거절됩니다.",
		restaurant.BankName, restaurant.BankAccountNo, services.FormatWon(order.FinalPrice()))
}

// CreateOrder places an order from a table's ordering page. Public endpoint:
// guests hit it from the QR-code page.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	restaurant, err := currentRestaurant(oc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Items []services.OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateForTable(restaurant.ID, uint(tableID), req.Items)
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{
		"order":         order,
		"total_price":   order.TotalPrice(),
		"final_price":   order.FinalPrice(),
		"deposit_guide": depositGuide(restaurant, order),
	})
}

// CreateKioskOrder places a takeout order from the kiosk; the guest leaves a
// phone number instead of sitting at a table.
func (oc *OrderController) CreateKioskOrder(c *gin.Context) {
	restaurant, err := currentRestaurant(oc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Phone string                      `json:"phone" binding:"required"`
		Items []services.OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateForKiosk(restaurant.ID, uint(tableID), req.Phone, req.Items)
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusCreated, "Order created", gin.H{
		"order":         order,
		"total_price":   order.TotalPrice(),
		"final_price":   order.FinalPrice(),
		"deposit_guide": depositGuide(restaurant, order),
	})
}

// GetAllOrders lists orders for the dashboard. Filterable with
// ?status=ordered|paid|rejected|finished.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	restaurant, err := currentRestaurant(oc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var orders []models.Order
	if err := oc.DB.Where("restaurant_id = ?", restaurant.ID).
		Preload("OrderedMenus").Preload("OrderedMenus.Menu").
		Preload("Team").Preload("Team.Table").
		Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if status := c.Query("status"); status != "" {
		filtered := make([]models.Order, 0, len(orders))
		for _, o := range orders {
			if o.Status() == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetOrderByID returns one order with its units and derived status.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	restaurant, err := currentRestaurant(oc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var order models.Order
	if err := oc.DB.Where("id = ? AND restaurant_id = ?", c.Param("order_id"), restaurant.ID).
		Preload("OrderedMenus").Preload("OrderedMenus.Menu").
		Preload("Team").Preload("Team.Table").
		First(&order).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrOrderNotFound)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", gin.H{
		"order":       order,
		"status":      order.Status(),
		"total_price": order.TotalPrice(),
		"final_price": order.FinalPrice(),
	})
}

// RejectOrder rejects a whole unpaid order with a reason.
func (oc *OrderController) RejectOrder(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(oc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.RejectOrder(restaurant.ID, uint(orderID), req.Reason)
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order rejected", order)
}

// RejectOrderItem rejects one unit (e.g. the last portion just sold out).
func (oc *OrderController) RejectOrderItem(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" && role != "chef" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(oc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	itemID, err := strconv.Atoi(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	unit, err := oc.Orders.RejectUnit(restaurant.ID, uint(itemID), req.Reason)
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastKitchenUpdate(unit)
	utils.RespondJSON(c, http.StatusOK, "Item rejected", unit)
}
