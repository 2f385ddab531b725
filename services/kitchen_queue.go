package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/models"
)

// CookingQueueEntry aggregates the pending units of one menu for the kitchen
// display.
type CookingQueueEntry struct {
	MenuID            uint      `json:"menu_id"`
	MenuName          string    `json:"menu_name"`
	TotalPendingCount int       `json:"total_pending_count"`
	OldestOrderAt     time.Time `json:"oldest_order_at"`
}

// ServingEntry is one cooked unit awaiting serving.
type ServingEntry struct {
	models.OrderedMenu
	OrderNo int `json:"order_no"`
	TableNo int `json:"table_no"`
}

// KitchenQueue is the read-only projection the kitchen and serving screens
// poll. It never mutates state except through CookOne.
type KitchenQueue struct {
	db     *gorm.DB
	orders *OrderService
}

func NewKitchenQueue(db *gorm.DB, orders *OrderService) *KitchenQueue {
	return &KitchenQueue{db: db, orders: orders}
}

// pendingUnits scopes to units that still need cooking: uncooked, unrejected,
// not instant-serve, in unrejected orders of still-active teams.
func (k *KitchenQueue) pendingUnits(restaurantID uint) *gorm.DB {
	return k.db.Table("ordered_menus").
		Joins("JOIN orders ON orders.id = ordered_menus.order_id").
		Joins("JOIN teams ON teams.id = orders.team_id").
		Joins("JOIN menus ON menus.id = ordered_menus.menu_id").
		Where("ordered_menus.restaurant_id = ?", restaurantID).
		Where("ordered_menus.cooked = ? AND ordered_menus.reject_reason IS NULL AND ordered_menus.served_at IS NULL", false).
		Where("orders.reject_reason IS NULL").
		Where("teams.ended_at IS NULL").
		Where("menus.is_instant_serve = ?", false)
}

// Queue groups pending units per menu. Ordered by menu id, which keeps the
// display stable between polls; cook-one still picks oldest-first inside a
// menu.
func (k *KitchenQueue) Queue(restaurantID uint) ([]CookingQueueEntry, error) {
	var entries []CookingQueueEntry
	err := k.pendingUnits(restaurantID).
		Select("menus.id AS menu_id, menus.name AS menu_name, COUNT(ordered_menus.id) AS total_pending_count, MIN(orders.created_at) AS oldest_order_at").
		Group("menus.id, menus.name").
		Order("menus.id asc").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []CookingQueueEntry{}
	}
	return entries, nil
}

// CookOne cooks the oldest pending unit of the given menu.
func (k *KitchenQueue) CookOne(restaurantID, menuID uint) (*models.OrderedMenu, error) {
	var unit models.OrderedMenu
	err := k.pendingUnits(restaurantID).
		Where("ordered_menus.menu_id = ?", menuID).
		Order("orders.created_at asc, ordered_menus.id asc").
		Select("ordered_menus.*").
		Limit(1).
		Take(&unit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return k.orders.CookUnit(restaurantID, unit.ID)
}

// ServingList returns cooked, unserved units of active teams, oldest order
// first, with the order and table numbers the floor staff need.
func (k *KitchenQueue) ServingList(restaurantID uint) ([]ServingEntry, error) {
	var rows []models.OrderedMenu
	err := k.db.
		Joins("JOIN orders ON orders.id = ordered_menus.order_id").
		Joins("JOIN teams ON teams.id = orders.team_id").
		Where("ordered_menus.restaurant_id = ?", restaurantID).
		Where("ordered_menus.cooked = ? AND ordered_menus.served_at IS NULL AND ordered_menus.reject_reason IS NULL", true).
		Where("orders.reject_reason IS NULL").
		Where("teams.ended_at IS NULL").
		Order("orders.created_at asc, ordered_menus.id asc").
		Preload("Menu").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]ServingEntry, 0, len(rows))
	for _, row := range rows {
		var order models.Order
		if err := k.db.Preload("Team.Table").First(&order, row.OrderID).Error; err != nil {
			return nil, err
		}
		entry := ServingEntry{OrderedMenu: row, OrderNo: order.No}
		if order.Team != nil && order.Team.Table != nil {
			entry.TableNo = order.Team.Table.No
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
