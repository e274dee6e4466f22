package kvstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is one stored key.
type Entry struct {
	Key       string         `gorm:"primaryKey;size:255"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (Entry) TableName() string {
	return "kv_entries"
}

// GormStore persists values in a SQL table. Updates lock the row for the
// duration of the transaction.
type GormStore struct {
	db *gorm.DB
}

var _ Store = &GormStore{}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the backing table.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&Entry{})
}

func (s *GormStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(entry.Value), true, nil
}

func (s *GormStore) Set(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: key, Value: datatypes.JSON(value)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&Entry{}).Error
}

func (s *GormStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	for i := 0; i < maxUpdateAttempts; i++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var entry Entry
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("key = ?", key).
				First(&entry).Error

			found := true
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
			} else if err != nil {
				return err
			}

			var current []byte
			if found {
				current = []byte(entry.Value)
			}

			next, err := fn(current, found)
			if err != nil {
				return err
			}

			if found {
				return tx.Model(&Entry{}).
					Where("key = ?", key).
					Update("value", datatypes.JSON(next)).Error
			}
			// A concurrent first insert surfaces as a duplicate key and retries
			return tx.Create(&Entry{Key: key, Value: datatypes.JSON(next)}).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return err
	}
	return ErrConflict
}
