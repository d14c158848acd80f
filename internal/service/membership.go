package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pageza/recipebox/backend/internal/logging"
	"github.com/pageza/recipebox/backend/internal/metrics"
	"github.com/pageza/recipebox/backend/internal/store"
)

// IDSet is a set of recipe or user ids
type IDSet map[uuid.UUID]struct{}

func NewIDSet(ids ...uuid.UUID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Slice returns the members in byte order. The result is never nil.
func (s IDSet) Slice() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

func (s IDSet) Intersect(other IDSet) IDSet {
	out := make(IDSet)
	for id := range s {
		if other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Action is the direction of a membership toggle
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// MembershipService owns the favorite, shopping cart and subscription sets
type MembershipService struct {
	store store.Store
}

var _ IMembershipService = (*MembershipService)(nil)

func NewMembershipService(s store.Store) *MembershipService {
	return &MembershipService{store: s}
}

// Toggle applies action to the (owner, target) pair of rel.
//
// Add returns ErrAlreadyExists for a present pair, ErrNotFound for a missing
// target and ErrSelfSubscriptionForbidden when a user follows themself.
// Remove returns ErrNotFound for an absent pair.
func (s *MembershipService) Toggle(ctx context.Context, rel store.Relation, action Action, ownerID, targetID uuid.UUID) error {
	var err error
	switch action {
	case ActionAdd:
		err = s.add(ctx, rel, ownerID, targetID)
	case ActionRemove:
		err = s.remove(ctx, rel, ownerID, targetID)
	default:
		return fmt.Errorf("unknown membership action %q", action)
	}

	metrics.MembershipToggles.WithLabelValues(rel.String(), string(action), outcome(err)).Inc()
	if err != nil && outcome(err) == "error" {
		logging.Error().Err(err).
			Str("relation", rel.String()).
			Str("action", string(action)).
			Msg("membership toggle failed")
	}
	return err
}

func (s *MembershipService) ToggleFavorite(ctx context.Context, action Action, userID, recipeID uuid.UUID) error {
	return s.Toggle(ctx, store.RelationFavorite, action, userID, recipeID)
}

func (s *MembershipService) ToggleCart(ctx context.Context, action Action, userID, recipeID uuid.UUID) error {
	return s.Toggle(ctx, store.RelationCart, action, userID, recipeID)
}

func (s *MembershipService) ToggleSubscription(ctx context.Context, action Action, followerID, authorID uuid.UUID) error {
	return s.Toggle(ctx, store.RelationSubscription, action, followerID, authorID)
}

// ListFor returns the committed members of owner's set
func (s *MembershipService) ListFor(ctx context.Context, rel store.Relation, ownerID uuid.UUID) (IDSet, error) {
	ids, err := s.store.ListRelation(ctx, rel, ownerID)
	if err != nil {
		return nil, err
	}
	return NewIDSet(ids...), nil
}

func (s *MembershipService) add(ctx context.Context, rel store.Relation, ownerID, targetID uuid.UUID) error {
	if rel == store.RelationSubscription && ownerID == targetID {
		return ErrSelfSubscriptionForbidden
	}

	var (
		exists bool
		err    error
	)
	if rel == store.RelationSubscription {
		exists, err = s.store.UserExists(ctx, targetID)
	} else {
		exists, err = s.store.RecipeExists(ctx, targetID)
	}
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s target %s: %w", rel, targetID, ErrNotFound)
	}

	if err := s.store.InsertRelation(ctx, rel, store.RelationKey{OwnerID: ownerID, TargetID: targetID}); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to add to %s: %w", rel, err)
	}
	return nil
}

func (s *MembershipService) remove(ctx context.Context, rel store.Relation, ownerID, targetID uuid.UUID) error {
	if err := s.store.DeleteRelation(ctx, rel, store.RelationKey{OwnerID: ownerID, TargetID: targetID}); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove from %s: %w", rel, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSelfSubscriptionForbidden):
		return "forbidden"
	default:
		return "error"
	}
}

// viewerSets holds the requesting user's memberships for one request.
// The zero value describes an anonymous viewer.
type viewerSets struct {
	favorites IDSet
	cart      IDSet
	following IDSet
}

func loadViewerSets(ctx context.Context, s store.Store, viewer *uuid.UUID) (viewerSets, error) {
	if viewer == nil {
		return viewerSets{}, nil
	}
	sets := make([]IDSet, len(store.Relations))
	for i, rel := range store.Relations {
		ids, err := s.ListRelation(ctx, rel, *viewer)
		if err != nil {
			return viewerSets{}, err
		}
		sets[i] = NewIDSet(ids...)
	}
	return viewerSets{favorites: sets[0], cart: sets[1], following: sets[2]}, nil
}
