package types

import (
	"time"
)

const (
	ItemKindTool   = "tool"
	ItemKindSupply = "supply"
)

// CatalogItem is a registered tool or supply. InternalCode is the natural
// key: unique among live items, compared case-insensitively.
type CatalogItem struct {
	ID                uint     `gorm:"primaryKey" json:"id"`
	Kind              string   `gorm:"column:kind;not null;index" json:"kind"`
	ManufacturingCode string   `gorm:"column:manufacturing_code" json:"manufacturing_code"`
	InternalCode      string   `gorm:"column:internal_code;not null;index" json:"internal_code"`
	Name              string   `gorm:"column:name;not null" json:"name"`
	Photo             string   `gorm:"column:photo" json:"photo"`
	Category          string   `gorm:"column:category" json:"category"`
	Material          string   `gorm:"column:material" json:"material"`
	MachineType       string   `gorm:"column:machine_type" json:"machine_type"`
	HeightMin         *float64 `gorm:"column:height_min" json:"height_min"`
	HeightMax         *float64 `gorm:"column:height_max" json:"height_max"`
	RPM               *int     `gorm:"column:rpm" json:"rpm"`
	FeedRate          *float64 `gorm:"column:feed_rate" json:"feed_rate"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CatalogItem) TableName() string { return "catalog_item" }

func (i *CatalogItem) IsTool() bool { return i.Kind == ItemKindTool }
