package types

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// SupplyRequest is an operator's request for a catalog item. ItemID is
// informational only: deleting the item does not cascade here. Photos holds
// the ordered fulfillment photo filenames as a JSON array.
type SupplyRequest struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ItemID        *uint          `gorm:"column:item_id;index" json:"item_id"`
	RequesterName string         `gorm:"column:requester_name;not null" json:"requester_name"`
	Operator      string         `gorm:"column:operator" json:"operator"`
	Machine       string         `gorm:"column:machine" json:"machine"`
	Quantity      int            `gorm:"column:quantity;not null" json:"quantity"`
	Urgency       string         `gorm:"column:urgency" json:"urgency"`
	Justification string         `gorm:"column:justification" json:"justification"`
	Status        string         `gorm:"column:status;not null" json:"status"`
	InternalCode  string         `gorm:"column:internal_code" json:"internal_code"`
	Photos        datatypes.JSON `gorm:"column:photos" json:"photos"`
	NoPhotos      bool           `gorm:"column:no_photos;not null;default:false" json:"no_photos"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	FulfilledAt   *time.Time     `gorm:"column:fulfilled_at" json:"fulfilled_at"`
	FulfilledBy   string         `gorm:"column:fulfilled_by" json:"fulfilled_by"`
}

func (SupplyRequest) TableName() string { return "supply_request" }

// PhotoList decodes the stored JSON array; a null or malformed column reads
// as an empty list.
func (r *SupplyRequest) PhotoList() []string {
	if len(r.Photos) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(r.Photos, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// SetPhotoList replaces the stored photo array.
func (r *SupplyRequest) SetPhotoList(names []string) {
	if names == nil {
		names = []string{}
	}
	raw, _ := json.Marshal(names)
	r.Photos = datatypes.JSON(raw)
}

// RequestWithItem is a SupplyRequest joined with the requested item's
// display fields, the shape handed to observers and list endpoints.
type RequestWithItem struct {
	SupplyRequest
	ItemName string `gorm:"column:item_name" json:"item_name"`
	ItemKind string `gorm:"column:item_kind" json:"item_kind"`
	ItemCode string `gorm:"column:item_code" json:"item_code"`
}
