package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/types"
)

const importBatchSize = 500

// CatalogService serves the read-only ingredient and tag catalogs and loads
// them in bulk
type CatalogService struct {
	db *gorm.DB
}

var _ ICatalogService = (*CatalogService)(nil)

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// SearchIngredients returns ingredients whose name starts with prefix, case
// insensitively, ordered by name then unit. An empty prefix lists everything.
func (s *CatalogService) SearchIngredients(ctx context.Context, prefix string) ([]types.IngredientView, error) {
	q := s.db.WithContext(ctx).Model(&models.Ingredient{})
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(prefix))+"%")
	}

	var rows []models.Ingredient
	if err := q.Order("name ASC").Order("measurement_unit ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search ingredients: %w", err)
	}

	out := make([]types.IngredientView, 0, len(rows))
	for _, r := range rows {
		out = append(out, toIngredientView(r))
	}
	return out, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*types.IngredientView, error) {
	var row models.Ingredient
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ingredient: %w", err)
	}
	view := toIngredientView(row)
	return &view, nil
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagView, error) {
	var rows []models.Tag
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	out := make([]types.TagView, 0, len(rows))
	for _, r := range rows {
		out = append(out, toTagView(r))
	}
	return out, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uuid.UUID) (*types.TagView, error) {
	var row models.Tag
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	view := toTagView(row)
	return &view, nil
}

// ImportIngredients inserts the rows that are not already in the catalog and
// returns how many were added. Existing (name, unit) pairs are left as is.
func (s *CatalogService) ImportIngredients(ctx context.Context, rows []models.Ingredient) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, importBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to import ingredients: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ImportTags inserts tags whose name and slug are both unused
func (s *CatalogService) ImportTags(ctx context.Context, rows []models.Tag) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, importBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to import tags: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
