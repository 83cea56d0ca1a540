package model

// 在庫ステータス。stockから必ず導出する（保存値とズレてはいけない）。
const (
	StatusInStock    = "In Stock"
	StatusOutOfStock = "Out of Stock"
)

// StockStatus はstockからステータスを導出する。
func StockStatus(stock int64) string {
	if stock > 0 {
		return StatusInStock
	}
	return StatusOutOfStock
}

type Product struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Unit     string `gorm:"type:varchar(50)" json:"unit"`
	Category string `gorm:"type:varchar(100)" json:"category"`
	Brand    string `gorm:"type:varchar(100)" json:"brand"`
	Stock    int64  `gorm:"not null;default:0" json:"stock"`
	Status   string `gorm:"type:varchar(20);not null" json:"status"`
	Image    string `gorm:"type:text" json:"image"`
}
