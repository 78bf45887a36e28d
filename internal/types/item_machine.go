package types

// ItemMachine is a machine-compatibility tag attached to a catalog item.
type ItemMachine struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ItemID  uint   `gorm:"column:item_id;not null;index" json:"item_id"`
	Machine string `gorm:"column:machine;not null" json:"machine"`
}

func (ItemMachine) TableName() string { return "item_machine" }
