package model

import "time"

// 在庫変更の履歴（監査ログ）。
// 「どの商品の」「在庫がいくつからいくつに」「誰の操作で」変わったかを残す。
// レコードは作成のみで、更新は行わない。商品削除時に一緒に削除される。
type InventoryLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	OldStock  int64     `gorm:"not null" json:"old_stock"`
	NewStock  int64     `gorm:"not null" json:"new_stock"`
	ChangedBy string    `gorm:"type:varchar(100);not null" json:"changed_by"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
