package types

// ItemCell is a free-form cell location tag attached to a catalog item.
type ItemCell struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	ItemID uint   `gorm:"column:item_id;not null;index" json:"item_id"`
	Cell   string `gorm:"column:cell;not null" json:"cell"`
}

func (ItemCell) TableName() string { return "item_cell" }
