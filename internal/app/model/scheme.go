package model

import "gorm.io/datatypes"

// Scheme is static diagram metadata; Data is stored and returned verbatim.
type Scheme struct {
	ID   uint           `gorm:"primarykey" json:"id"`
	Path string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"path"`
	Data datatypes.JSON `gorm:"not null" json:"data"`
}

func (Scheme) TableName() string {
	return "schemes"
}
