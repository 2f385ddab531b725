package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/acornsoft/pocha-backend/database"
	"github.com/acornsoft/pocha-backend/models"
)

var (
	ErrTableNotFound     = errors.New("테이블을 찾을 수 없습니다.")
	ErrMenuNotFound      = errors.New("메뉴를 찾을 수 없습니다.")
	ErrMenuSoldOut       = errors.New("품절된 메뉴입니다.")
	ErrOrderNotFound     = errors.New("주문을 찾을 수 없습니다.")
	ErrOrderRejected     = errors.New("이미 거절된 주문입니다.")
	ErrOrderPaid         = errors.New("이미 결제된 주문은 거절이 불가능합니다.")
	ErrOrderFinished     = errors.New("이미 완료된 주문은 거절이 불가능합니다.")
	ErrMenuOrderNotFound = errors.New("메뉴 주문을 찾을 수 없습니다.")
	ErrMenuOrderRejected = errors.New("이미 거절된 메뉴입니다.")
	ErrMenuOrderServed   = errors.New("이미 서빙된 메뉴는 처리가 불가능합니다.")
	ErrMenuOrderCooked   = errors.New("이미 조리가 완료된 메뉴입니다.")
	ErrMenuOrderRaw      = errors.New("조리가 시작되지 않은 메뉴입니다.")
)

// OrderItemRequest is one requested menu with a quantity; the quantity is
// expanded into independent unit rows at creation.
type OrderItemRequest struct {
	MenuID   uint `json:"menu_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1"`
}

// OrderService implements the order/team/item state machine.
type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// CreateForTable places an order at a table. The table row is locked for the
// duration of the team find-or-create so two concurrent orders cannot spawn
// two active teams for the same table.
func (s *OrderService) CreateForTable(restaurantID, tableID uint, items []OrderItemRequest) (*models.Order, error) {
	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var table models.Table
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND restaurant_id = ?", tableID, restaurantID).
			First(&table).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTableNotFound
		}
		if err != nil {
			return err
		}

		var team models.Team
		err = tx.Where("table_id = ? AND ended_at IS NULL", table.ID).First(&team).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			team = models.Team{
				RestaurantID: restaurantID,
				TableID:      &table.ID,
				SessionKey:   uuid.NewString(),
			}
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if table.Status == models.TableStatusIdle {
			table.Status = models.TableStatusInUse
			if err := tx.Save(&table).Error; err != nil {
				return err
			}
		}

		order, err = s.createOrder(tx, restaurantID, team.ID, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateForKiosk places a takeout-style order: a fresh one-shot team bound to
// the kiosk table, identified by the guest phone number.
func (s *OrderService) CreateForKiosk(restaurantID, tableID uint, phone string, items []OrderItemRequest) (*models.Order, error) {
	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		team := models.Team{
			RestaurantID: restaurantID,
			TableID:      &tableID,
			SessionKey:   uuid.NewString(),
			Phone:        &phone,
		}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		var err error
		order, err = s.createOrder(tx, restaurantID, team.ID, items)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) createOrder(tx *gorm.DB, restaurantID, teamID uint, items []OrderItemRequest) (*models.Order, error) {
	no, err := database.NextOrderNo(tx, restaurantID)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		RestaurantID: restaurantID,
		TeamID:       teamID,
		No:           no,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}

	for _, item := range items {
		var menu models.Menu
		err := tx.Where("id = ? AND restaurant_id = ?", item.MenuID, restaurantID).
			First(&menu).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuNotFound
		}
		if err != nil {
			return nil, err
		}
		if menu.NoStock {
			return nil, ErrMenuSoldOut
		}

		// one row per physical unit; instant-serve units skip the kitchen
		for i := 0; i < item.Quantity; i++ {
			unit := models.OrderedMenu{
				RestaurantID: restaurantID,
				OrderID:      order.ID,
				MenuID:       menu.ID,
				Price:        menu.Price,
				Cooked:       menu.IsInstantServe,
			}
			if err := tx.Create(&unit).Error; err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Preload("OrderedMenus").Preload("OrderedMenus.Menu").
		First(&order, order.ID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// RejectOrder rejects a whole order. Paid, finished or already-rejected
// orders cannot be rejected.
func (s *OrderService) RejectOrder(restaurantID, orderID uint, reason string) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	switch order.Status() {
	case models.OrderStatusRejected:
		return nil, ErrOrderRejected
	case models.OrderStatusPaid:
		return nil, ErrOrderPaid
	case models.OrderStatusFinished:
		return nil, ErrOrderFinished
	}

	order.RejectReason = &reason
	if err := s.db.Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// CookUnit moves one unit ordered -> cooking.
func (s *OrderService) CookUnit(restaurantID, unitID uint) (*models.OrderedMenu, error) {
	var unit models.OrderedMenu
	err := s.db.Where("id = ? AND restaurant_id = ?", unitID, restaurantID).
		First(&unit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMenuOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if unit.ServedAt != nil {
		return nil, ErrMenuOrderServed
	}
	if unit.Cooked {
		return nil, ErrMenuOrderCooked
	}
	if unit.RejectReason != nil {
		return nil, ErrMenuOrderRejected
	}

	unit.Cooked = true
	if err := s.db.Save(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// ServeUnit moves one cooked unit to served and finishes the order when every
// unit has reached a terminal state.
func (s *OrderService) ServeUnit(restaurantID, unitID uint) (*models.OrderedMenu, error) {
	var unit models.OrderedMenu
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND restaurant_id = ?", unitID, restaurantID).
			First(&unit).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMenuOrderNotFound
		}
		if err != nil {
			return err
		}

		if unit.ServedAt != nil {
			return ErrMenuOrderServed
		}
		if unit.RejectReason != nil {
			return ErrMenuOrderRejected
		}
		if !unit.Cooked {
			return ErrMenuOrderRaw
		}

		now := time.Now().UTC()
		unit.ServedAt = &now
		if err := tx.Save(&unit).Error; err != nil {
			return err
		}

		return s.finishOrderIfDone(tx, unit.OrderID)
	})
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// RejectUnit rejects one unit. Served units cannot be rejected; a rejection
// can still finish the order when it was the last open unit.
func (s *OrderService) RejectUnit(restaurantID, unitID uint, reason string) (*models.OrderedMenu, error) {
	var unit models.OrderedMenu
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND restaurant_id = ?", unitID, restaurantID).
			First(&unit).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMenuOrderNotFound
		}
		if err != nil {
			return err
		}

		if unit.ServedAt != nil {
			return ErrMenuOrderServed
		}
		if unit.RejectReason != nil {
			return ErrMenuOrderRejected
		}

		unit.RejectReason = &reason
		unit.Cooked = false
		if err := tx.Save(&unit).Error; err != nil {
			return err
		}

		return s.finishOrderIfDone(tx, unit.OrderID)
	})
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// finishOrderIfDone sets finished_at once every unit of the order is served
// or rejected. Runs in the same transaction as the triggering transition.
func (s *OrderService) finishOrderIfDone(tx *gorm.DB, orderID uint) error {
	var units []models.OrderedMenu
	if err := tx.Where("order_id = ?", orderID).Find(&units).Error; err != nil {
		return err
	}

	for i := range units {
		if !units[i].IsTerminal() {
			return nil
		}
	}

	now := time.Now().UTC()
	return tx.Model(&models.Order{}).
		Where("id = ? AND finished_at IS NULL", orderID).
		Update("finished_at", now).Error
}

// CloseTable sets a table back to idle and force-ends its active team.
func (s *OrderService) CloseTable(restaurantID, tableID uint) (*models.Table, error) {
	var table models.Table
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND restaurant_id = ?", tableID, restaurantID).
			First(&table).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTableNotFound
		}
		if err != nil {
			return err
		}

		var team models.Team
		err = tx.Where("table_id = ? AND ended_at IS NULL", table.ID).First(&team).Error
		if err == nil {
			now := time.Now().UTC()
			team.EndedAt = &now
			if err := tx.Save(&team).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		table.Status = models.TableStatusIdle
		return tx.Save(&table).Error
	})
	if err != nil {
		return nil, err
	}
	return &table, nil
}
