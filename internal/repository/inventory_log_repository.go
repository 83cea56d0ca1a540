package repository

import (
	"app/internal/domain/model"
	"context"
)

// 在庫変更履歴の保存・取得の約束。
// old/newが等しいときに呼ばない判断は呼び出し側（usecase）が持つ。
type InventoryLogRepository interface {
	//履歴を1件保存
	Create(ctx context.Context, log model.InventoryLog) error

	//商品の履歴を新しい順（created_at DESC、同時刻はid DESC）で返す
	ListByProduct(ctx context.Context, productID int64) ([]model.InventoryLog, error)
}
