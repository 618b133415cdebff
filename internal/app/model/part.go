package model

// Positioning holds the five optional (top, left) diagram coordinates.
// Every column is independently nullable.
type Positioning struct {
	PositioningTop   *int `gorm:"column:positioning_top" json:"positioning_top"`
	PositioningLeft  *int `gorm:"column:positioning_left" json:"positioning_left"`
	PositioningTop2  *int `gorm:"column:positioning_top2" json:"positioning_top2"`
	PositioningLeft2 *int `gorm:"column:positioning_left2" json:"positioning_left2"`
	PositioningTop3  *int `gorm:"column:positioning_top3" json:"positioning_top3"`
	PositioningLeft3 *int `gorm:"column:positioning_left3" json:"positioning_left3"`
	PositioningTop4  *int `gorm:"column:positioning_top4" json:"positioning_top4"`
	PositioningLeft4 *int `gorm:"column:positioning_left4" json:"positioning_left4"`
	PositioningTop5  *int `gorm:"column:positioning_top5" json:"positioning_top5"`
	PositioningLeft5 *int `gorm:"column:positioning_left5" json:"positioning_left5"`
}

// PartAttributes are the core columns of a part, shared by the table model
// and the joined row used for grouping.
type PartAttributes struct {
	ProductID   uint    `gorm:"column:product_id;not null;index" json:"product_id"`
	Position    int     `gorm:"column:position;not null" json:"position"`
	Name        string  `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description *string `gorm:"column:description;type:text" json:"description"`
	Designation *string `gorm:"column:designation;type:varchar(255)" json:"designation"`
	Quantity    int     `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Drawing     *int    `gorm:"column:drawing" json:"drawing"`
	Positioning
}

type Part struct {
	ID uint `gorm:"primarykey" json:"id"`
	PartAttributes

	AlternativeSetRows []PartAlternativeSet      `gorm:"foreignKey:PartID;constraint:OnDelete:CASCADE" json:"-"`
	AlternativeSets    map[string]AlternativeSet `gorm:"-" json:"alternative_sets"` // set_name -> override bundle
}

func (Part) TableName() string {
	return "parts"
}

// PartAlternativeSet is the stored form of a named variant override.
type PartAlternativeSet struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	PartID      uint    `gorm:"not null;index" json:"part_id"`
	SetName     string  `gorm:"type:varchar(255);not null" json:"set_name"`
	Position    int     `gorm:"not null" json:"position"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Designation *string `gorm:"type:varchar(255)" json:"designation"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	Drawing     *int    `json:"drawing"`
}

func (PartAlternativeSet) TableName() string {
	return "part_alternative_sets"
}

// AlternativeSet is the override bundle attached to a grouped Part.
// Fields are pointers because a variant may override only some of them.
type AlternativeSet struct {
	Position    *int    `json:"position"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Designation *string `json:"designation"`
	Quantity    *int    `json:"quantity"`
	Drawing     *int    `json:"drawing"`
}

// PartRow is one row of parts LEFT JOIN part_alternative_sets.
// A part with N sets yields N rows; a part with none yields one row whose
// set columns are all NULL.
type PartRow struct {
	ID uint `gorm:"column:id"`
	PartAttributes

	SetName        *string `gorm:"column:set_name"`
	AltPosition    *int    `gorm:"column:alt_position"`
	AltName        *string `gorm:"column:alt_name"`
	AltDescription *string `gorm:"column:alt_description"`
	AltDesignation *string `gorm:"column:alt_designation"`
	AltQuantity    *int    `gorm:"column:alt_quantity"`
	AltDrawing     *int    `gorm:"column:alt_drawing"`
}
