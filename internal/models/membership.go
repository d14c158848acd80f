package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership rows carry no payload: the composite primary key is the pair,
// so the database rejects a second row for the same pair.

type Favorite struct {
	UserID    uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);primaryKey;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ShoppingCartEntry struct {
	UserID    uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"user_id"`
	RecipeID  uuid.UUID `gorm:"type:varchar(36);primaryKey;index" json:"recipe_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Subscription struct {
	FollowerID uuid.UUID `gorm:"type:varchar(36);primaryKey;check:chk_subscription_not_self,follower_id <> author_id" json:"follower_id"`
	AuthorID   uuid.UUID `gorm:"type:varchar(36);primaryKey;index" json:"author_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Ingredient{},
		&Tag{},
		&Recipe{},
		&RecipeIngredient{},
		&RecipeTag{},
		&Favorite{},
		&ShoppingCartEntry{},
		&Subscription{},
	}
}
