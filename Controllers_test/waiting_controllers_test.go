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

type silentSender struct{}

func (silentSender) Send(templateCode, phone, content string, buttons []services.AlimtalkButton) error {
	return nil
}

func setupWaitingRouter(db *gorm.DB) *gin.Engine {
	waitlist := services.NewWaitlistService(db, services.NewWaitingNotifier(silentSender{}))
	waitingCtrl := controllers.NewWaitingController(db, waitlist)

	router := gin.New()
	router.POST("/waitings", waitingCtrl.CreateWaiting)
	router.GET("/waitings/me", waitingCtrl.FindWaiting)
	router.POST("/waitings/cancel", waitingCtrl.CancelWaiting)
	router.GET("/admin/waitings", asRole("admin"), waitingCtrl.GetAllWaitings)
	router.POST("/admin/waitlist/dequeue", asRole("admin"), waitingCtrl.DequeueWaitings)
	router.POST("/admin/waitings/:waiting_id/reject", asRole("admin"), waitingCtrl.RejectWaiting)
	router.POST("/admin/waitings/:waiting_id/enter", asRole("admin"), waitingCtrl.EnterWaiting)
	return router
}

func TestWaitingRegistrationAndLookup(t *testing.T) {
	db := setupTestDB(t, "ctrl_waiting_reg")
	router := setupWaitingRouter(db)

	payload := map[string]interface{}{"name": "김철수", "phone": "01011112222"}

	w := doJSON(t, router, "POST", "/waitings", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	// duplicate active registration conflicts
	w = doJSON(t, router, "POST", "/waitings", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, "GET", "/waitings/me?name=김철수&phone=01011112222", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "waiting", data["status"])
	assert.Equal(t, float64(0), data["ahead"])

	w = doJSON(t, router, "GET", "/waitings/me?name=없는사람&phone=010", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWaitingDequeueFlow(t *testing.T) {
	db := setupTestDB(t, "ctrl_waiting_dequeue")
	router := setupWaitingRouter(db)

	for i := 0; i < 3; i++ {
		w := doJSON(t, router, "POST", "/waitings", map[string]interface{}{
			"name":  fmt.Sprintf("손님%d", i),
			"phone": fmt.Sprintf("0101111%04d", i),
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, "POST", "/admin/waitlist/dequeue?count=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	notified := resp["data"].([]interface{})
	assert.Len(t, notified, 2)

	first := notified[0].(map[string]interface{})
	waitingID := int(first["id"].(float64))

	w = doJSON(t, router, "POST", fmt.Sprintf("/admin/waitings/%d/enter", waitingID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// the third party was never notified; entering it is invalid
	var third models.Waiting
	assert.NoError(t, db.Where("name = ?", "손님2").First(&third).Error)
	w = doJSON(t, router, "POST", fmt.Sprintf("/admin/waitings/%d/enter", third.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWaitingRejectAndCancel(t *testing.T) {
	db := setupTestDB(t, "ctrl_waiting_reject")
	router := setupWaitingRouter(db)

	w := doJSON(t, router, "POST", "/waitings", map[string]interface{}{"name": "김철수", "phone": "01011112222"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var waiting models.Waiting
	assert.NoError(t, db.First(&waiting).Error)

	w = doJSON(t, router, "POST", fmt.Sprintf("/admin/waitings/%d/reject", waiting.ID),
		map[string]interface{}{"reason": "노쇼"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "POST", fmt.Sprintf("/admin/waitings/%d/reject", waiting.ID),
		map[string]interface{}{"reason": "다시"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// guest-side cancel of an already rejected waiting finds nothing active
	w = doJSON(t, router, "POST", "/waitings/cancel", map[string]interface{}{"name": "김철수", "phone": "01011112222"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
