package model

import (
	"time"
)

type Order struct {
	ID        uint      `gorm:"primarykey" json:"id"` // 주문 ID
	CreatedAt time.Time `json:"created_at"`           // 서버 생성 시각

	Parts []OrderPart `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"parts"` // 주문 부품 스냅샷
}

func (Order) TableName() string {
	return "orders"
}

// OrderPart is a point-in-time copy of a part as the client saw it when
// ordering. PartID is informational and goes NULL if the catalog part is
// removed, so order history survives catalog edits.
type OrderPart struct {
	ID                 uint    `gorm:"primarykey" json:"id"`
	OrderID            uint    `gorm:"not null;index" json:"order_id"`
	PartID             *uint   `gorm:"index" json:"part_id"`
	ParentProductID    uint    `gorm:"not null" json:"parent_product_id"`
	ProductName        string  `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductDrawing     *string `gorm:"type:varchar(255)" json:"product_drawing"`
	Position           int     `gorm:"not null" json:"position"`
	Name               string  `gorm:"type:varchar(255);not null" json:"name"`
	Description        *string `gorm:"type:text" json:"description"`
	Designation        *string `gorm:"type:varchar(255)" json:"designation"`
	Quantity           int     `gorm:"not null" json:"quantity"`
	Drawing            *int    `json:"drawing"`
	Positioning
	AlternativeSetName *string `gorm:"type:varchar(255)" json:"alternative_set_name"`

	Part *Part `gorm:"foreignKey:PartID;constraint:OnDelete:SET NULL" json:"-"`
}

func (OrderPart) TableName() string {
	return "order_parts"
}
