package types

import (
	"time"

	"gorm.io/datatypes"
)

// DeletedCatalogItem is the soft-delete ledger entry: an exact snapshot of a
// CatalogItem at deletion time, keyed by the original id. A ledger entry and
// a live item never share an id. Cell and machine tags are snapshotted as
// JSON arrays so a restore brings them back too.
type DeletedCatalogItem struct {
	ID                uint           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Kind              string         `gorm:"column:kind;not null" json:"kind"`
	ManufacturingCode string         `gorm:"column:manufacturing_code" json:"manufacturing_code"`
	InternalCode      string         `gorm:"column:internal_code;not null;index" json:"internal_code"`
	Name              string         `gorm:"column:name;not null" json:"name"`
	Photo             string         `gorm:"column:photo" json:"photo"`
	Category          string         `gorm:"column:category" json:"category"`
	Material          string         `gorm:"column:material" json:"material"`
	MachineType       string         `gorm:"column:machine_type" json:"machine_type"`
	HeightMin         *float64       `gorm:"column:height_min" json:"height_min"`
	HeightMax         *float64       `gorm:"column:height_max" json:"height_max"`
	RPM               *int           `gorm:"column:rpm" json:"rpm"`
	FeedRate          *float64       `gorm:"column:feed_rate" json:"feed_rate"`
	CreatedAt         time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	Cells             datatypes.JSON `gorm:"column:cells" json:"cells"`
	Machines          datatypes.JSON `gorm:"column:machines" json:"machines"`
	DeletedAt         time.Time      `gorm:"column:deleted_at;not null" json:"deleted_at"`
}

func (DeletedCatalogItem) TableName() string { return "catalog_item_deleted" }

// DeletedCompositionEdge shadows the tool's composition edges for restore.
type DeletedCompositionEdge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ToolID    uint      `gorm:"column:tool_id;not null;index" json:"tool_id"`
	SupplyID  uint      `gorm:"column:supply_id;not null" json:"supply_id"`
	Quantity  int       `gorm:"column:quantity;not null;default:1" json:"quantity"`
	DeletedAt time.Time `gorm:"column:deleted_at;not null" json:"deleted_at"`
}

func (DeletedCompositionEdge) TableName() string { return "composition_edge_deleted" }
