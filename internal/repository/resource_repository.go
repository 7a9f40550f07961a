package repository

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Resource implements the generic persistence primitives for any gorm model
// M whose primary key has Go type ID. Every method runs on the session it is
// given; committing is left to whoever opened that session.
type Resource[M any, ID any] struct {
	schemas *sync.Map // parsed gorm schemas, keyed by type
}

// NewResource constructs a Resource. It holds no connection of its own.
func NewResource[M any, ID any]() *Resource[M, ID] {
	return &Resource[M, ID]{schemas: &sync.Map{}}
}

// Apply copies payload fields onto a loaded record.
type Apply[M any] func(rec *M) error

func byPrimaryKey(id any) clause.Expression {
	return clause.Eq{Column: clause.PrimaryColumn, Value: id}
}

// Retrieve fetches the record with the given primary key. It returns
// ErrNotFound if no row matches.
func (r *Resource[M, ID]) Retrieve(tx *gorm.DB, id ID) (*M, error) {
	rec := new(M)
	if err := tx.Where(byPrimaryKey(id)).Take(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns every record ordered by primary key. An empty table yields an
// empty, non-nil slice.
func (r *Resource[M, ID]) List(tx *gorm.DB) ([]M, error) {
	out := make([]M, 0)
	err := tx.Order(clause.OrderByColumn{Column: clause.PrimaryColumn}).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the matching record and reports how many rows went away.
// Zero rows is not an error.
func (r *Resource[M, ID]) Delete(tx *gorm.DB, id ID) (int64, error) {
	res := tx.Where(byPrimaryKey(id)).Delete(new(M))
	return res.RowsAffected, res.Error
}

// Create inserts rec. Database-generated values (auto-increment keys,
// defaults) are written back into rec.
func (r *Resource[M, ID]) Create(tx *gorm.DB, rec *M) error {
	return tx.Create(rec).Error
}

// Update loads the record, overwrites every writable field through apply and
// saves it. A missing record yields ErrNotFound from Retrieve.
func (r *Resource[M, ID]) Update(tx *gorm.DB, id ID, apply Apply[M]) (*M, error) {
	return r.modify(tx, id, apply)
}

// PartialUpdate is Update for an apply that only touches the fields present
// in the request; everything else keeps its stored value.
func (r *Resource[M, ID]) PartialUpdate(tx *gorm.DB, id ID, apply Apply[M]) (*M, error) {
	return r.modify(tx, id, apply)
}

func (r *Resource[M, ID]) modify(tx *gorm.DB, id ID, apply Apply[M]) (*M, error) {
	rec, err := r.Retrieve(tx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(rec); err != nil {
		return nil, err
	}
	// the path identifier wins over anything the payload carried
	if err := r.setPrimaryKey(tx, rec, id); err != nil {
		return nil, err
	}
	if err := tx.Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Resource[M, ID]) setPrimaryKey(tx *gorm.DB, rec *M, id ID) error {
	s, err := schema.Parse(rec, r.schemas, tx.NamingStrategy)
	if err != nil {
		return err
	}
	if s.PrioritizedPrimaryField == nil {
		return fmt.Errorf("model %s has no primary key", s.Name)
	}
	return s.PrioritizedPrimaryField.Set(tx.Statement.Context, reflect.ValueOf(rec).Elem(), id)
}

// Identify reads the primary key of rec, e.g. after Create assigned one.
func (r *Resource[M, ID]) Identify(tx *gorm.DB, rec *M) (ID, error) {
	var id ID
	s, err := schema.Parse(rec, r.schemas, tx.NamingStrategy)
	if err != nil {
		return id, err
	}
	if s.PrioritizedPrimaryField == nil {
		return id, fmt.Errorf("model %s has no primary key", s.Name)
	}
	v, _ := s.PrioritizedPrimaryField.ValueOf(tx.Statement.Context, reflect.ValueOf(rec).Elem())
	id, ok := v.(ID)
	if !ok {
		return id, fmt.Errorf("model %s: primary key is %T", s.Name, v)
	}
	return id, nil
}
