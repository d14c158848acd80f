package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/models"
	"github.com/pageza/recipebox/backend/internal/store"
	"github.com/pageza/recipebox/backend/internal/types"
)

const (
	shortCodeLength   = 8
	shortCodeAttempts = 5
)

// Actor is the authenticated user performing a write
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
}

// RecipeService handles recipe create, update and delete
type RecipeService struct {
	db       *gorm.DB
	store    store.Store
	images   IImageService
	validate *validator.Validate
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a RecipeService. A nil images service drops
// uploaded images.
func NewRecipeService(db *gorm.DB, st store.Store, images IImageService) *RecipeService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &RecipeService{db: db, store: st, images: images, validate: v}
}

func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, s.db, authorID, req.Name, uuid.Nil); err != nil {
		return nil, err
	}

	imageRef, err := s.storeImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(req.Name),
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageRef:    imageRef,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		code, err := newShortCode(tx)
		if err != nil {
			return err
		}
		recipe.ShortCode = code

		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return fmt.Errorf("%w: you already have a recipe named %q", ErrInvalidRecipe, recipe.Name)
			}
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return writeComposition(tx, recipe.ID, req)
	})
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("recipe_id", recipe.ID.String()).
		Str("author_id", authorID.String()).
		Msg("recipe created")
	return s.store.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe replaces the recipe's fields, lines and tags in one
// transaction. Only the author may update.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor Actor, id uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorID != actor.ID {
		return nil, ErrForbidden
	}
	if err := s.checkNameFree(ctx, s.db, existing.AuthorID, req.Name, id); err != nil {
		return nil, err
	}

	imageRef := existing.ImageRef
	if req.Image != "" {
		if imageRef, err = s.storeImage(ctx, req.Image); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         strings.TrimSpace(req.Name),
			"text":         req.Text,
			"cooking_time": req.CookingTime,
			"image_ref":    imageRef,
		}
		if err := tx.Model(existing).Updates(updates).Error; err != nil {
			if store.IsUniqueViolation(err) {
				return fmt.Errorf("%w: you already have a recipe named %q", ErrInvalidRecipe, req.Name)
			}
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("failed to clear ingredient lines: %w", err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		return writeComposition(tx, id, req)
	})
	if err != nil {
		return nil, err
	}

	return s.store.GetRecipe(ctx, id)
}

// DeleteRecipe removes a recipe. The author and administrators may delete.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actor Actor, id uuid.UUID) error {
	existing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if existing.AuthorID != actor.ID && !actor.IsAdmin {
		return ErrForbidden
	}

	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	logging.Info().
		Str("recipe_id", id.String()).
		Str("actor_id", actor.ID.String()).
		Msg("recipe deleted")
	return nil
}

// ShortCode returns the short link code of a recipe
func (s *RecipeService) ShortCode(ctx context.Context, id uuid.UUID) (string, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	return existing.ShortCode, nil
}

// ResolveShortCode returns the recipe a short link points to
func (s *RecipeService) ResolveShortCode(ctx context.Context, code string) (uuid.UUID, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Select("id").Where("short_code = ?", code).First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve short link: %w", err)
	}
	return recipe.ID, nil
}

func (s *RecipeService) load(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

// check validates the request shape and that every referenced ingredient and
// tag exists
func (s *RecipeService) check(ctx context.Context, req *types.RecipeRequest) error {
	if req == nil {
		return fmt.Errorf("%w: empty request", ErrInvalidRecipe)
	}
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRecipe, describeValidation(err))
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name must not be blank", ErrInvalidRecipe)
	}

	ingredientIDs := make([]uuid.UUID, len(req.Ingredients))
	for i, line := range req.Ingredients {
		ingredientIDs[i] = line.ID
	}
	if err := s.requireAll(ctx, &models.Ingredient{}, ingredientIDs, "ingredient"); err != nil {
		return err
	}
	return s.requireAll(ctx, &models.Tag{}, req.Tags, "tag")
}

func (s *RecipeService) requireAll(ctx context.Context, model interface{}, ids []uuid.UUID, kind string) error {
	var found int64
	if err := s.db.WithContext(ctx).Model(model).Where("id IN ?", ids).Count(&found).Error; err != nil {
		return fmt.Errorf("failed to look up %ss: %w", kind, err)
	}
	if found != int64(len(ids)) {
		return fmt.Errorf("%w: unknown %s", ErrInvalidRecipe, kind)
	}
	return nil
}

func (s *RecipeService) checkNameFree(ctx context.Context, db *gorm.DB, authorID uuid.UUID, name string, except uuid.UUID) error {
	q := db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ? AND name = ?", authorID, strings.TrimSpace(name))
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("failed to check recipe name: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: you already have a recipe named %q", ErrInvalidRecipe, strings.TrimSpace(name))
	}
	return nil
}

func (s *RecipeService) storeImage(ctx context.Context, image string) (string, error) {
	if image == "" || s.images == nil {
		return "", nil
	}
	url, err := s.images.SaveDataURL(ctx, image)
	if err != nil {
		if errors.Is(err, ErrInvalidImage) {
			return "", fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
		}
		return "", err
	}
	return url, nil
}

// writeComposition inserts the ingredient lines in request order and the tag links
func writeComposition(tx *gorm.DB, recipeID uuid.UUID, req *types.RecipeRequest) error {
	lines := make([]models.RecipeIngredient, len(req.Ingredients))
	for i, in := range req.Ingredients {
		lines[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: in.ID,
			Amount:       in.Amount,
			Position:     i,
		}
	}
	if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
		return fmt.Errorf("failed to write ingredient lines: %w", err)
	}

	links := make([]models.RecipeTag, len(req.Tags))
	for i, tagID := range req.Tags {
		links[i] = models.RecipeTag{RecipeID: recipeID, TagID: tagID}
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to write tags: %w", err)
	}
	return nil
}

func newShortCode(tx *gorm.DB) (string, error) {
	for i := 0; i < shortCodeAttempts; i++ {
		code := strings.ReplaceAll(uuid.NewString(), "-", "")[:shortCodeLength]
		var n int64
		if err := tx.Model(&models.Recipe{}).Where("short_code = ?", code).Count(&n).Error; err != nil {
			return "", fmt.Errorf("failed to check short code: %w", err)
		}
		if n == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a unique short code")
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", field, map[string]string{"min": "at least", "max": "at most"}[fe.Tag()], fe.Param()))
		case "unique":
			msgs = append(msgs, field+" must not contain duplicates")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
