package model

type Category struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Slug string `gorm:"type:varchar(120);not null;uniqueIndex" json:"slug"`
}
