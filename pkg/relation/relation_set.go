package relation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrAlreadyPresent = errors.New("relation already exists")
	ErrNotPresent     = errors.New("relation does not exist")
	ErrSelfReference  = errors.New("subject and target must differ")
)

// Set is a many-to-many association between a subject and a target with a
// uniqueness constraint and toggle semantics: a pair is either absent or
// present, and no-op transitions are user errors. Favorite, ShoppingCart
// and Subscription are the three instantiations.
//
// Uniqueness under concurrent adds is delegated to the table's unique
// index: the database serializes the pair, the loser gets
// gorm.ErrDuplicatedKey and we surface ErrAlreadyPresent.
type Set[T any] struct {
	db         *gorm.DB
	subjectCol string
	targetCol  string
	forbidSelf bool
	newPair    func(subject, target uuid.UUID) T
}

func NewSet[T any](
	db *gorm.DB,
	subjectCol, targetCol string,
	forbidSelf bool,
	newPair func(subject, target uuid.UUID) T,
) *Set[T] {
	return &Set[T]{
		db:         db,
		subjectCol: subjectCol,
		targetCol:  targetCol,
		forbidSelf: forbidSelf,
		newPair:    newPair,
	}
}

func (s *Set[T]) pairClause() string {
	return fmt.Sprintf("%s = ? AND %s = ?", s.subjectCol, s.targetCol)
}

// Add transitions (subject, target) from absent to present.
func (s *Set[T]) Add(ctx context.Context, subject, target uuid.UUID) error {
	if s.forbidSelf && subject == target {
		return ErrSelfReference
	}
	row := s.newPair(subject, target)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyPresent
		}
		return err
	}
	return nil
}

// Remove transitions (subject, target) from present to absent.
func (s *Set[T]) Remove(ctx context.Context, subject, target uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where(s.pairClause(), subject, target).
		Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPresent
	}
	return nil
}

func (s *Set[T]) Contains(ctx context.Context, subject, target uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(new(T)).
		Where(s.pairClause(), subject, target).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Targets returns all present target ids for a subject.
func (s *Set[T]) Targets(ctx context.Context, subject uuid.UUID) ([]uuid.UUID, error) {
	var targets []uuid.UUID
	if err := s.db.WithContext(ctx).
		Model(new(T)).
		Where(fmt.Sprintf("%s = ?", s.subjectCol), subject).
		Pluck(s.targetCol, &targets).Error; err != nil {
		return nil, err
	}
	return targets, nil
}
