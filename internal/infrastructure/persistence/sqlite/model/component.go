package model

type Component struct {
	ComponentID   uint64 `gorm:"column:component_id;primaryKey;autoIncrement"`
	TestID        uint64 `gorm:"column:test_id;not null;index"`
	StringID      string `gorm:"column:string_id;type:text;not null"`
	ContentHash   int64  `gorm:"column:content_hash;not null"`
	StructureHash int64  `gorm:"column:structure_hash;not null"`
	XML           string `gorm:"column:xml;type:text;not null"`
}

func (Component) TableName() string {
	return "components"
}
