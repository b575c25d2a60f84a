// Package gormkv keeps records in a single key/value table through gorm.
package gormkv

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"library-backend/internal/domain/record"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one row of kv_store.
type Record struct {
	Key       string    `gorm:"column:record_key;primaryKey;size:191"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Record) TableName() string { return "kv_store" }

func Migrate(db *gorm.DB) error { return db.AutoMigrate(&Record{}) }

type Store struct{ db *gorm.DB }

var _ record.Store = (*Store)(nil)

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) get(ctx context.Context, key string, lock bool) ([]byte, error) {
	q := s.db.WithContext(ctx)
	if lock {
		// sqlite's dialector drops the FOR UPDATE clause
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var r Record
	err := q.Where("record_key = ?", key).Take(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, record.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(r.Payload), nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, key, false)
}

func (s *Store) GetForUpdate(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, key, true)
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	r := Record{Key: key, Payload: string(value), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&r).Error
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("record_key = ?", key).Delete(&Record{}).Error
}

func (s *Store) ScanPrefix(ctx context.Context, prefix string) ([]record.Entry, error) {
	var rows []Record
	err := s.db.WithContext(ctx).
		Where("record_key LIKE ? ESCAPE '!'", escapeLike(prefix)+"%").
		Order("record_key").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]record.Entry, 0, len(rows))
	for _, r := range rows {
		// LIKE may fold case on some collations
		if !strings.HasPrefix(r.Key, prefix) {
			continue
		}
		out = append(out, record.Entry{Key: r.Key, Value: []byte(r.Payload)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }
