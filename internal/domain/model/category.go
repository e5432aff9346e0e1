package model

// メニューのカテゴリ（読み取り専用マスタ）
type Category struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"type:varchar(100);not null" json:"name"`
	Icon      string `gorm:"type:varchar(50)" json:"icon"`
	SortOrder int64  `gorm:"not null;default:0" json:"sort_order"`
}
