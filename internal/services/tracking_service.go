package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopsphere/internal/models"
	"github.com/example/shopsphere/internal/utils"
)

// TrackingService serves order history and the status timeline.
type TrackingService struct {
	db *gorm.DB
}

// NewTrackingService constructs a TrackingService.
func NewTrackingService(db *gorm.DB) *TrackingService {
	return &TrackingService{db: db}
}

// GetOrder returns the order with its line items only when it belongs to
// the requesting user. Orders owned by someone else look identical to
// absent ones.
func (s *TrackingService) GetOrder(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ? AND user_id = ?", orderID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// GetUserOrders returns the user's orders newest first, plus the total
// count for pagination.
func (s *TrackingService) GetUserOrders(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	pg := utils.NewPagination(page, limit)

	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateOrderStatus moves the order to a new status and, when notes are
// provided, appends a timeline entry. Both writes happen in one
// transaction.
func (s *TrackingService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status, notes string) error {
	if !models.IsValidOrderStatus(status) {
		return Invalid("unknown order status")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}

		if notes == "" {
			return nil
		}
		return tx.Create(&models.OrderStatusLog{
			OrderID: orderID,
			Status:  status,
			Notes:   notes,
		}).Error
	})
}

// GetTrackingHistory returns the status log for an order in insertion
// order, oldest first.
func (s *TrackingService) GetTrackingHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusLog, error) {
	var entries []models.OrderStatusLog
	if err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
