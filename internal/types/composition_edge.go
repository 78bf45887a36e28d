package types

// CompositionEdge links a tool to one of its supply items with a quantity.
// Edges are owned by the tool and replaced wholesale on every update.
type CompositionEdge struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	ToolID   uint `gorm:"column:tool_id;not null;index" json:"tool_id"`
	SupplyID uint `gorm:"column:supply_id;not null;index" json:"supply_id"`
	Quantity int  `gorm:"column:quantity;not null;default:1" json:"quantity"`
}

func (CompositionEdge) TableName() string { return "composition_edge" }

// CompositionDetail is an edge joined with the supply's display fields.
type CompositionDetail struct {
	SupplyID uint   `gorm:"column:supply_id" json:"id"`
	Name     string `gorm:"column:name" json:"name"`
	Quantity int    `gorm:"column:quantity" json:"quantity"`
}
