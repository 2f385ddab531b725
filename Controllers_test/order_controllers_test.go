package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/controllers"
	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/services"
)

func setupOrderRouter(db *gorm.DB) *gin.Engine {
	orders := services.NewOrderService(db)
	orderCtrl := controllers.NewOrderController(db, orders)

	router := gin.New()
	router.POST("/tables/:table_id/orders", orderCtrl.CreateOrder)
	router.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	router.GET("/admin/orders", asRole("admin"), orderCtrl.GetAllOrders)
	router.POST("/admin/orders/:order_id/reject", asRole("admin"), orderCtrl.RejectOrder)
	return router
}

func seedOrderFixtures(t *testing.T, db *gorm.DB) (*models.Table, *models.Menu) {
	t.Helper()
	table := models.Table{RestaurantID: 1, No: 3, Status: models.TableStatusIdle}
	assert.NoError(t, db.Create(&table).Error)
	menu := models.Menu{RestaurantID: 1, Name: "김치전", Price: 12000}
	assert.NoError(t, db.Create(&menu).Error)
	return &table, &menu
}

func TestCreateOrderExpandsUnitsAndGuidesDeposit(t *testing.T) {
	db := setupTestDB(t, "ctrl_order_create")
	table, menu := seedOrderFixtures(t, db)
	router := setupOrderRouter(db)

	w := doJSON(t, router, "POST", fmt.Sprintf("/tables/%d/orders", table.ID), map[string]interface{}{
		"items": []map[string]interface{}{
			{"menu_id": menu.ID, "quantity": 3},
		},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(36000), data["total_price"])
	assert.Contains(t, data["deposit_guide"], "KB국민은행")

	order := data["order"].(map[string]interface{})
	units := order["ordered_menus"].([]interface{})
	assert.Len(t, units, 3)

	// final price encodes the order number in its trailing digits
	no := int(order["no"].(float64))
	assert.Equal(t, float64(36000-no%100), data["final_price"])
}

func TestCreateOrderUnknownTable(t *testing.T) {
	db := setupTestDB(t, "ctrl_order_no_table")
	router := setupOrderRouter(db)

	w := doJSON(t, router, "POST", "/tables/999/orders", map[string]interface{}{
		"items": []map[string]interface{}{{"menu_id": 1, "quantity": 1}},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrdersFilteredByStatus(t *testing.T) {
	db := setupTestDB(t, "ctrl_order_filter")
	table, menu := seedOrderFixtures(t, db)
	router := setupOrderRouter(db)

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, "POST", fmt.Sprintf("/tables/%d/orders", table.ID), map[string]interface{}{
			"items": []map[string]interface{}{{"menu_id": menu.ID, "quantity": 1}},
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	var first models.Order
	assert.NoError(t, db.Order("id asc").First(&first).Error)

	w := doJSON(t, router, "POST", fmt.Sprintf("/admin/orders/%d/reject", first.ID), map[string]interface{}{
		"reason": "재료 소진",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/admin/orders?status=rejected", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Len(t, resp["data"].([]interface{}), 1)

	w = doJSON(t, router, "GET", "/admin/orders?status=ordered", nil)
	resp = decodeResponse(t, w)
	assert.Len(t, resp["data"].([]interface{}), 1)
}

func TestRejectOrderConflicts(t *testing.T) {
	db := setupTestDB(t, "ctrl_order_reject")
	table, menu := seedOrderFixtures(t, db)
	router := setupOrderRouter(db)

	w := doJSON(t, router, "POST", fmt.Sprintf("/tables/%d/orders", table.ID), map[string]interface{}{
		"items": []map[string]interface{}{{"menu_id": menu.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var order models.Order
	assert.NoError(t, db.First(&order).Error)

	reject := map[string]interface{}{"reason": "재료 소진"}
	w = doJSON(t, router, "POST", fmt.Sprintf("/admin/orders/%d/reject", order.ID), reject)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", fmt.Sprintf("/admin/orders/%d/reject", order.ID), reject)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, "POST", "/admin/orders/999/reject", reject)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
