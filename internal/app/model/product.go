package model

// Product is seed-only reference data; the API never mutates it.
type Product struct {
	ID      uint   `gorm:"primarykey" json:"id"`                 // 제품 ID (seed 에서 지정)
	Src     string `gorm:"type:varchar(255)" json:"src"`         // 이미지 경로
	Path    string `gorm:"type:varchar(255)" json:"path"`        // 프론트 라우트 경로
	Width   int    `json:"width"`                                // 표시 너비
	Name    string `gorm:"type:varchar(255)" json:"name"`        // 제품명
	Drawing *int   `json:"drawing"`                              // 도면 번호
	Head    int    `gorm:"not null;default:0" json:"head"`       // 상위 분류 표시

	Parts []Part `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Product) TableName() string {
	return "products"
}
