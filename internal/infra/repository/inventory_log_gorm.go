package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type inventoryLogGormRepository struct {
	db *gorm.DB
}

func NewInventoryLogGormRepository(db *gorm.DB) repo.InventoryLogRepository {
	return &inventoryLogGormRepository{db: db}
}

func (r *inventoryLogGormRepository) Create(ctx context.Context, log model.InventoryLog) error {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return err
	}
	return nil
}

func (r *inventoryLogGormRepository) ListByProduct(ctx context.Context, productID int64) ([]model.InventoryLog, error) {
	var logs []model.InventoryLog

	//新しい順。同時刻は後に入ったものが先。
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
