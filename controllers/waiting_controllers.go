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

type WaitingController struct {
	DB       *gorm.DB
	Waitlist *services.WaitlistService
}

func NewWaitingController(db *gorm.DB, waitlist *services.WaitlistService) *WaitingController {
	return &WaitingController{DB: db, Waitlist: waitlist}
}

// CreateWaiting is the guest-facing registration endpoint.
func (wc *WaitingController) CreateWaiting(c *gin.Context) {
	restaurant, err := currentRestaurant(wc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	waiting, err := wc.Waitlist.Enqueue(restaurant, req.Name, req.Phone)
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastWaitingUpdate(*waiting)
	utils.RespondJSON(c, http.StatusCreated, "Waiting registered", waiting)
}

// FindWaiting lets a guest check their spot by name and phone. The response
// includes how many active teams registered earlier.
func (wc *WaitingController) FindWaiting(c *gin.Context) {
	restaurant, err := currentRestaurant(wc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	name := c.Query("name")
	phone := c.Query("phone")
	if name == "" || phone == "" {
		utils.RespondError(c, http.StatusBadRequest, services.ErrWaitingNotFound)
		return
	}

	var waiting models.Waiting
	err = wc.DB.
		Where("restaurant_id = ? AND name = ? AND phone = ? AND entered_at IS NULL AND rejected_at IS NULL",
			restaurant.ID, name, phone).
		First(&waiting).Error
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, services.ErrWaitingNotFound)
		return
	}

	var ahead int64
	wc.DB.Model(&models.Waiting{}).
		Where("restaurant_id = ? AND entered_at IS NULL AND rejected_at IS NULL AND created_at < ?",
			restaurant.ID, waiting.CreatedAt).
		Count(&ahead)

	utils.RespondJSON(c, http.StatusOK, "Waiting detail", gin.H{
		"waiting": waiting,
		"status":  waiting.Status(),
		"ahead":   ahead,
	})
}

// CancelWaiting is the guest-side cancellation, keyed by name and phone.
func (wc *WaitingController) CancelWaiting(c *gin.Context) {
	restaurant, err := currentRestaurant(wc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := wc.Waitlist.Cancel(restaurant, req.Name, req.Phone); err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Waiting cancelled", nil)
}

// GetAllWaitings lists the queue for the admin dashboard. Filterable with
// ?status=waiting|notified|entered|rejected.
func (wc *WaitingController) GetAllWaitings(c *gin.Context) {
	restaurant, err := currentRestaurant(wc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var waitings []models.Waiting
	if err := wc.DB.Where("restaurant_id = ?", restaurant.ID).
		Order("created_at asc, id asc").Find(&waitings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if status := c.Query("status"); status != "" {
		filtered := make([]models.Waiting, 0, len(waitings))
		for _, w := range waitings {
			if w.Status() == status {
				filtered = append(filtered, w)
			}
		}
		waitings = filtered
	}

	utils.RespondJSON(c, http.StatusOK, "List of waitings", waitings)
}

// DequeueWaitings notifies the next N parties to come in.
func (wc *WaitingController) DequeueWaitings(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(wc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	count := 1
	if v := c.Query("count"); v != "" {
		count, err = strconv.Atoi(v)
		if err != nil || count < 1 {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	notified, err := wc.Waitlist.Dequeue(restaurant, count)
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	for i := range notified {
		kds.BroadcastWaitingUpdate(notified[i])
	}
	utils.RespondJSON(c, http.StatusOK, "Waitings notified", notified)
}

// RejectWaiting removes a party from the queue with a reason.
func (wc *WaitingController) RejectWaiting(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(wc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	waitingID, err := strconv.Atoi(c.Param("waiting_id"))
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

	waiting, err := wc.Waitlist.Reject(restaurant, uint(waitingID), req.Reason)
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastWaitingUpdate(*waiting)
	utils.RespondJSON(c, http.StatusOK, "Waiting rejected", waiting)
}

// EnterWaiting marks a notified party as seated.
func (wc *WaitingController) EnterWaiting(c *gin.Context) {
	role, _ := c.Get("role")
	if role != "admin" && role != "staff" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	restaurant, err := currentRestaurant(wc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	waitingID, err := strconv.Atoi(c.Param("waiting_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	waiting, err := wc.Waitlist.Enter(restaurant, uint(waitingID))
	if err != nil {
		utils.RespondError(c, statusForServiceErr(err), err)
		return
	}

	kds.BroadcastWaitingUpdate(*waiting)
	utils.RespondJSON(c, http.StatusOK, "Waiting entered", waiting)
}
