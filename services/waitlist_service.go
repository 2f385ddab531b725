package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/acornsoft/pocha-backend/models"
	"github.com/acornsoft/pocha-backend/utils"
)

const (
	// a notified party forfeits its spot after this long
	waitingEntryWindow = 10 * time.Minute

	expiredWaitingReason = "입장 시간 초과"
	cancelledByGuest     = "사용자 취소"
)

var (
	ErrWaitingExists      = errors.New("이미 등록된 웨이팅이 있습니다.")
	ErrWaitingNotFound    = errors.New("웨이팅을 찾을 수 없습니다.")
	ErrWaitingEntered     = errors.New("이미 입장한 웨이팅은 거절이 불가능합니다.")
	ErrWaitingRejected    = errors.New("이미 거절된 웨이팅입니다.")
	ErrWaitingNotNotified = errors.New("호출되지 않은 웨이팅은 입장 처리가 불가능합니다.")
)

// WaitlistService owns the FIFO waiting queue: registration, the admin
// dequeue batch, manual rejection and the expiry sweep.
type WaitlistService struct {
	db       *gorm.DB
	notifier *WaitingNotifier
}

func NewWaitlistService(db *gorm.DB, notifier *WaitingNotifier) *WaitlistService {
	return &WaitlistService{db: db, notifier: notifier}
}

func activeWaitings(db *gorm.DB, restaurantID uint) *gorm.DB {
	return db.Model(&models.Waiting{}).
		Where("restaurant_id = ? AND entered_at IS NULL AND rejected_at IS NULL", restaurantID)
}

// Enqueue registers a party. At most one active waiting may exist per
// (name, phone); the registered notification carries how many active teams
// were ahead at registration time.
func (s *WaitlistService) Enqueue(restaurant *models.Restaurant, name, phone string) (*models.Waiting, error) {
	var existing models.Waiting
	err := activeWaitings(s.db, restaurant.ID).
		Where("name = ? AND phone = ?", name, phone).
		First(&existing).Error
	if err == nil {
		return nil, ErrWaitingExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	waiting := models.Waiting{
		RestaurantID: restaurant.ID,
		Name:         name,
		Phone:        phone,
	}
	if err := s.db.Create(&waiting).Error; err != nil {
		return nil, err
	}

	var remaining int64
	if err := activeWaitings(s.db, restaurant.ID).
		Where("created_at < ?", waiting.CreatedAt).
		Count(&remaining).Error; err != nil {
		return nil, err
	}

	s.notifier.Registered(restaurant, &waiting, remaining)
	return &waiting, nil
}

// Dequeue notifies the oldest `count` fully-unprocessed waitings and, when
// one more exists right behind them, sends that one a look-ahead "one team
// left" message without changing its state.
func (s *WaitlistService) Dequeue(restaurant *models.Restaurant, count int) ([]models.Waiting, error) {
	var batch []models.Waiting
	if err := s.db.
		Where("restaurant_id = ? AND notified_at IS NULL AND entered_at IS NULL AND rejected_at IS NULL",
			restaurant.ID).
		Order("created_at asc, id asc").
		Limit(count + 1).
		Find(&batch).Error; err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return []models.Waiting{}, nil
	}

	var oneLeft *models.Waiting
	if len(batch) == count+1 {
		oneLeft = &batch[len(batch)-1]
		batch = batch[:len(batch)-1]
	}

	now := time.Now().UTC()
	for i := range batch {
		batch[i].NotifiedAt = &now
		if err := s.db.Save(&batch[i]).Error; err != nil {
			return nil, err
		}
		s.notifier.NowSeated(restaurant, &batch[i])
	}

	if oneLeft != nil {
		s.notifier.OneLeft(restaurant, oneLeft)
	}

	return batch, nil
}

// Reject marks a waiting rejected with a reason. Entered or already-rejected
// waitings cannot be rejected.
func (s *WaitlistService) Reject(restaurant *models.Restaurant, waitingID uint, reason string) (*models.Waiting, error) {
	var waiting models.Waiting
	err := s.db.
		Where("id = ? AND restaurant_id = ?", waitingID, restaurant.ID).
		First(&waiting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWaitingNotFound
	}
	if err != nil {
		return nil, err
	}
	if waiting.RejectedAt != nil {
		return nil, ErrWaitingRejected
	}
	if waiting.EnteredAt != nil {
		return nil, ErrWaitingEntered
	}

	now := time.Now().UTC()
	waiting.RejectedAt = &now
	waiting.RejectReason = &reason
	if err := s.db.Save(&waiting).Error; err != nil {
		return nil, err
	}
	return &waiting, nil
}

// Cancel is the guest-side cancellation, keyed by name+phone.
func (s *WaitlistService) Cancel(restaurant *models.Restaurant, name, phone string) error {
	var waiting models.Waiting
	err := activeWaitings(s.db, restaurant.ID).
		Where("name = ? AND phone = ?", name, phone).
		First(&waiting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrWaitingNotFound
	}
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	reason := cancelledByGuest
	waiting.RejectedAt = &now
	waiting.RejectReason = &reason
	return s.db.Save(&waiting).Error
}

// Enter marks a notified waiting as entered.
func (s *WaitlistService) Enter(restaurant *models.Restaurant, waitingID uint) (*models.Waiting, error) {
	var waiting models.Waiting
	err := s.db.
		Where("id = ? AND restaurant_id = ?", waitingID, restaurant.ID).
		First(&waiting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWaitingNotFound
	}
	if err != nil {
		return nil, err
	}
	if waiting.RejectedAt != nil {
		return nil, ErrWaitingRejected
	}
	if waiting.EnteredAt != nil {
		return nil, ErrWaitingEntered
	}
	if waiting.NotifiedAt == nil {
		return nil, ErrWaitingNotNotified
	}

	now := time.Now().UTC()
	waiting.EnteredAt = &now
	if err := s.db.Save(&waiting).Error; err != nil {
		return nil, err
	}
	return &waiting, nil
}

// SweepExpired rejects every notified waiting whose entry window has lapsed
// and sends each exactly one cancellation message. Runs on the minutely
// scheduler tick.
func (s *WaitlistService) SweepExpired() error {
	var restaurant models.Restaurant
	if err := s.db.First(&restaurant).Error; err != nil {
		return err
	}

	cutoff := time.Now().UTC().Add(-waitingEntryWindow)

	var expired []models.Waiting
	if err := s.db.
		Where("restaurant_id = ? AND notified_at IS NOT NULL AND entered_at IS NULL AND rejected_at IS NULL AND notified_at < ?",
			restaurant.ID, cutoff).
		Find(&expired).Error; err != nil {
		return err
	}

	now := time.Now().UTC()
	for i := range expired {
		reason := expiredWaitingReason
		expired[i].RejectedAt = &now
		expired[i].RejectReason = &reason
		if err := s.db.Save(&expired[i]).Error; err != nil {
			return err
		}
		s.notifier.Cancelled(&restaurant, &expired[i])
	}

	if len(expired) > 0 {
		utils.InfoLogger.Printf("swept %d expired waitings", len(expired))
	}
	return nil
}
