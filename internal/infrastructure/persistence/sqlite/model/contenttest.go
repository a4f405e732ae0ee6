package model

type ContentTest struct {
	TestID    uint64            `gorm:"column:test_id;primaryKey;autoIncrement"`
	Location  string            `gorm:"column:location;type:text;not null;index"`
	ShouldBe  string            `gorm:"column:should_be;type:text;not null;index"`
	Verdict   string            `gorm:"column:verdict;type:text;not null"`
	Answers   map[string]string `gorm:"column:answers;type:text;not null;serializer:json"`
	CreatedAt string            `gorm:"column:created_at;type:text;not null"`
	UpdatedAt string            `gorm:"column:updated_at;type:text;not null"`
}

func (ContentTest) TableName() string {
	return "content_tests"
}
