package model

type Field struct {
	FieldID       uint64 `gorm:"column:field_id;primaryKey;autoIncrement"`
	ComponentID   uint64 `gorm:"column:component_id;not null;index"`
	TestID        uint64 `gorm:"column:test_id;not null;index"`
	StringID      string `gorm:"column:string_id;type:text;not null"`
	ResponseIndex int    `gorm:"column:response_index;not null"`
	InputIndex    int    `gorm:"column:input_index;not null"`
	Answer        string `gorm:"column:answer;type:text;not null;default:''"`
}

func (Field) TableName() string {
	return "fields"
}
