package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	domain "contenttest/internal/domain/contenttest"
	"contenttest/internal/errs"
	"contenttest/internal/infrastructure/persistence/sqlite/model"
	"contenttest/internal/ports"
)

type TestRepository struct {
	db *gorm.DB
}

var _ ports.TestRepository = (*TestRepository)(nil)

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{db: db}
}

func (r *TestRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// inTx runs fn inside the caller's transaction, or opens one.
func (r *TestRepository) inTx(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error) error {
	if ports.InTx(ctx) {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return err
		}
		return fn(ctx, db)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx), tx)
	})
}

func (r *TestRepository) ListTests(ctx context.Context, filter ports.ContentTestFilter) ([]ports.ContentTest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.ContentTest{})
	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where("location = ?", location)
	}

	var rows []model.ContentTest
	if err := query.Order("test_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query content tests")
	}

	items := make([]ports.ContentTest, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapTest(row))
	}
	return items, nil
}

func (r *TestRepository) GetTest(ctx context.Context, testID uint64) (ports.ContentTest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ContentTest{}, err
	}

	var row model.ContentTest
	if err := db.Where("test_id = ?", testID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ContentTest{}, ports.ErrTestNotFound
		}
		return ports.ContentTest{}, errs.Wrap(err, "query content test")
	}
	return mapTest(row), nil
}

func (r *TestRepository) ListComponents(ctx context.Context, testID uint64) ([]domain.Component, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Component
	if err := db.Where("test_id = ?", testID).Order("component_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query components")
	}

	items := make([]domain.Component, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapComponent(row))
	}
	return items, nil
}

func (r *TestRepository) ListFields(ctx context.Context, testID uint64) ([]domain.Field, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Field
	if err := db.
		Where("test_id = ?", testID).
		Order("response_index asc").
		Order("input_index asc").
		Order("field_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query fields")
	}

	items := make([]domain.Field, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapField(row))
	}
	return items, nil
}

func (r *TestRepository) CreateTest(ctx context.Context, test ports.ContentTest) (ports.ContentTest, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ContentTest{}, err
	}

	row := model.ContentTest{
		Location:  test.Location,
		ShouldBe:  string(test.ShouldBe),
		Verdict:   string(test.Verdict),
		Answers:   nonNilAnswers(test.Answers),
		CreatedAt: test.CreatedAt,
		UpdatedAt: test.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.ContentTest{}, errs.Wrap(err, "insert content test")
	}
	return mapTest(row), nil
}

func (r *TestRepository) UpdateTest(ctx context.Context, test ports.ContentTest) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.ContentTest{
		TestID:    test.TestID,
		Location:  test.Location,
		ShouldBe:  string(test.ShouldBe),
		Verdict:   string(test.Verdict),
		Answers:   nonNilAnswers(test.Answers),
		UpdatedAt: test.UpdatedAt,
	}
	result := db.Model(&model.ContentTest{TestID: test.TestID}).
		Select("location", "should_be", "verdict", "answers", "updated_at").
		Updates(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update content test")
	}
	if result.RowsAffected == 0 {
		return ports.ErrTestNotFound
	}
	return nil
}

func (r *TestRepository) DeleteTest(ctx context.Context, testID uint64) error {
	return r.inTx(ctx, func(_ context.Context, db *gorm.DB) error {
		if err := db.Where("test_id = ?", testID).Delete(&model.Field{}).Error; err != nil {
			return errs.Wrap(err, "delete fields")
		}
		if err := db.Where("test_id = ?", testID).Delete(&model.Component{}).Error; err != nil {
			return errs.Wrap(err, "delete components")
		}

		result := db.Where("test_id = ?", testID).Delete(&model.ContentTest{})
		if result.Error != nil {
			return errs.Wrap(result.Error, "delete content test")
		}
		if result.RowsAffected == 0 {
			return ports.ErrTestNotFound
		}
		return nil
	})
}

func (r *TestRepository) CreateComponent(ctx context.Context, component domain.Component, fields []domain.Field) (domain.Component, []domain.Field, error) {
	var (
		created       domain.Component
		createdFields []domain.Field
	)
	err := r.inTx(ctx, func(_ context.Context, db *gorm.DB) error {
		row := model.Component{
			TestID:        component.TestID,
			StringID:      component.StringID,
			ContentHash:   component.ContentHash,
			StructureHash: component.StructureHash,
			XML:           component.XML,
		}
		if err := db.Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert component")
		}
		created = mapComponent(row)

		createdFields = make([]domain.Field, 0, len(fields))
		if len(fields) == 0 {
			return nil
		}

		fieldRows := make([]model.Field, 0, len(fields))
		for _, field := range fields {
			fieldRows = append(fieldRows, model.Field{
				ComponentID:   row.ComponentID,
				TestID:        row.TestID,
				StringID:      field.StringID,
				ResponseIndex: field.ResponseIndex,
				InputIndex:    field.InputIndex,
				Answer:        field.Answer,
			})
		}
		if err := db.Create(&fieldRows).Error; err != nil {
			return errs.Wrap(err, "insert fields")
		}
		for _, fieldRow := range fieldRows {
			createdFields = append(createdFields, mapField(fieldRow))
		}
		return nil
	})
	if err != nil {
		return domain.Component{}, nil, err
	}
	return created, createdFields, nil
}

func (r *TestRepository) UpdateComponent(ctx context.Context, component domain.Component) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Model(&model.Component{}).
		Where("component_id = ?", component.ComponentID).
		Updates(map[string]any{
			"string_id":      component.StringID,
			"content_hash":   component.ContentHash,
			"structure_hash": component.StructureHash,
			"xml":            component.XML,
		}).Error; err != nil {
		return errs.Wrap(err, "update component")
	}
	return nil
}

func (r *TestRepository) DeleteComponent(ctx context.Context, componentID uint64) error {
	return r.inTx(ctx, func(_ context.Context, db *gorm.DB) error {
		if err := db.Where("component_id = ?", componentID).Delete(&model.Field{}).Error; err != nil {
			return errs.Wrap(err, "delete component fields")
		}
		if err := db.Where("component_id = ?", componentID).Delete(&model.Component{}).Error; err != nil {
			return errs.Wrap(err, "delete component")
		}
		return nil
	})
}

func (r *TestRepository) UpdateFields(ctx context.Context, fields []domain.Field) error {
	if len(fields) == 0 {
		return nil
	}

	return r.inTx(ctx, func(_ context.Context, db *gorm.DB) error {
		for _, field := range fields {
			if err := db.Model(&model.Field{}).
				Where("field_id = ?", field.FieldID).
				Updates(map[string]any{
					"string_id":      field.StringID,
					"response_index": field.ResponseIndex,
					"input_index":    field.InputIndex,
					"answer":         field.Answer,
				}).Error; err != nil {
				return errs.Wrapf(err, "update field %d", field.FieldID)
			}
		}
		return nil
	})
}

func nonNilAnswers(in map[string]string) map[string]string {
	if in == nil {
		return map[string]string{}
	}
	return in
}

func mapTest(row model.ContentTest) ports.ContentTest {
	return ports.ContentTest{
		TestID:    row.TestID,
		Location:  row.Location,
		ShouldBe:  domain.Expectation(row.ShouldBe),
		Verdict:   domain.Verdict(row.Verdict),
		Answers:   nonNilAnswers(row.Answers),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func mapComponent(row model.Component) domain.Component {
	return domain.Component{
		ComponentID:   row.ComponentID,
		TestID:        row.TestID,
		StringID:      row.StringID,
		ContentHash:   row.ContentHash,
		StructureHash: row.StructureHash,
		XML:           row.XML,
	}
}

func mapField(row model.Field) domain.Field {
	return domain.Field{
		FieldID:       row.FieldID,
		ComponentID:   row.ComponentID,
		TestID:        row.TestID,
		StringID:      row.StringID,
		ResponseIndex: row.ResponseIndex,
		InputIndex:    row.InputIndex,
		Answer:        row.Answer,
	}
}
