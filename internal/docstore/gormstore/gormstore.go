// Package gormstore is the durable docstore.Store used by hearth-syncd.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/alexanderramin/hearth/internal/docstore"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Document is one stored document row.
type Document struct {
	Path      string `gorm:"primaryKey"`
	ID        string `gorm:"primaryKey"`
	Data      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

var _ docstore.Store = (*Store)(nil)

// Store persists documents through gorm. Writes are serialized so every
// published snapshot reflects a committed state.
type Store struct {
	db  *gorm.DB
	mu  sync.Mutex
	seq uint64
	hub *docstore.Hub
}

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One connection avoids SQLITE_BUSY and keeps :memory: databases shared.
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("migrating documents: %w", err)
	}
	return &Store{db: db, hub: docstore.NewHub()}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Watchers returns the number of live watches.
func (s *Store) Watchers() int {
	return s.hub.Watchers()
}

func (s *Store) Add(ctx context.Context, path string, fields docstore.Fields) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, path, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Set(ctx context.Context, path, id string, fields docstore.Fields) error {
	return s.Batch(ctx, []docstore.Op{{Kind: docstore.OpSet, Path: path, ID: id, Fields: fields}})
}

func (s *Store) Merge(ctx context.Context, path, id string, fields docstore.Fields) error {
	return s.Batch(ctx, []docstore.Op{{Kind: docstore.OpMerge, Path: path, ID: id, Fields: fields}})
}

func (s *Store) Delete(ctx context.Context, path, id string) error {
	return s.Batch(ctx, []docstore.Op{{Kind: docstore.OpDelete, Path: path, ID: id}})
}

func (s *Store) Batch(ctx context.Context, ops []docstore.Op) error {
	if len(ops) > docstore.MaxBatchWrites {
		return fmt.Errorf("%w: %d operations", docstore.ErrBatchTooLarge, len(ops))
	}
	ops = slices.Clone(ops)
	for i := range ops {
		p, err := docstore.CleanPath(ops[i].Path)
		if err != nil {
			return err
		}
		ops[i].Path = p
		if ops[i].ID == "" {
			return fmt.Errorf("%w: empty document id in %s", docstore.ErrInvalidPath, p)
		}
		if ops[i].Kind != docstore.OpDelete {
			if err := ops[i].Fields.Validate(); err != nil {
				return err
			}
		}
	}

	s.mu.Lock()
	touched := make(map[string]bool)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			if err := applyOp(tx, op); err != nil {
				return err
			}
			touched[op.Path] = true
		}
		return nil
	})
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.seq++
	seq := s.seq
	type snap struct {
		path string
		docs []docstore.Doc
	}
	var snaps []snap
	for p := range touched {
		docs, err := s.load(ctx, p, nil)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		snaps = append(snaps, snap{path: p, docs: docs})
	}
	s.mu.Unlock()

	for _, sn := range snaps {
		s.hub.Publish(sn.path, seq, sn.docs)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path, id string) (docstore.Doc, error) {
	p, err := docstore.CleanPath(path)
	if err != nil {
		return docstore.Doc{}, err
	}
	var row Document
	err = s.db.WithContext(ctx).Where("path = ? AND id = ?", p, id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return docstore.Doc{}, fmt.Errorf("%s/%s: %w", p, id, docstore.ErrNotFound)
	}
	if err != nil {
		return docstore.Doc{}, err
	}
	return row.doc()
}

func (s *Store) Query(ctx context.Context, path string, filters ...docstore.Filter) ([]docstore.Doc, error) {
	p, err := docstore.CleanPath(path)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, p, filters)
}

func (s *Store) Watch(ctx context.Context, path string, onSnapshot func([]docstore.Doc), onError func(error)) (docstore.Unsubscribe, error) {
	p, err := docstore.CleanPath(path)
	if err != nil {
		return nil, err
	}
	unsub, deliver := s.hub.Add(p, onSnapshot)

	s.mu.Lock()
	docs, err := s.load(ctx, p, nil)
	seq := s.seq
	s.mu.Unlock()
	if err != nil {
		unsub()
		return nil, err
	}
	deliver(seq, docs)
	return unsub, nil
}

func (s *Store) load(ctx context.Context, path string, filters []docstore.Filter) ([]docstore.Doc, error) {
	q := s.db.WithContext(ctx).Where("path = ?", path)
	for _, f := range filters {
		if v, ok := f.Value.(string); ok {
			q = q.Where("json_extract(data, ?) = ?", "$."+f.Field, v)
		}
	}
	var rows []Document
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	docs := make([]docstore.Doc, 0, len(rows))
	for _, r := range rows {
		d, err := r.doc()
		if err != nil {
			return nil, err
		}
		if docstore.Matches(d.Fields, filters) {
			docs = append(docs, d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func applyOp(tx *gorm.DB, op docstore.Op) error {
	switch op.Kind {
	case docstore.OpSet:
		data, err := encode(op.Fields)
		if err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "path"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).Create(&Document{Path: op.Path, ID: op.ID, Data: data}).Error
	case docstore.OpMerge:
		var row Document
		err := tx.Where("path = ? AND id = ?", op.Path, op.ID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%s/%s: %w", op.Path, op.ID, docstore.ErrNotFound)
		}
		if err != nil {
			return err
		}
		cur, err := docstore.DecodeFields([]byte(row.Data))
		if err != nil {
			return err
		}
		for k, v := range op.Fields {
			cur[k] = v
		}
		data, err := encode(cur)
		if err != nil {
			return err
		}
		return tx.Model(&Document{}).
			Where("path = ? AND id = ?", op.Path, op.ID).
			Updates(map[string]any{"data": data, "updated_at": time.Now().UTC()}).Error
	case docstore.OpDelete:
		return tx.Where("path = ? AND id = ?", op.Path, op.ID).Delete(&Document{}).Error
	default:
		return fmt.Errorf("unknown operation %q", op.Kind)
	}
}

func encode(f docstore.Fields) (string, error) {
	n, err := docstore.Normalize(f)
	if err != nil {
		return "", err
	}
	raw, err := docstore.MarshalFields(n)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (d Document) doc() (docstore.Doc, error) {
	f, err := docstore.DecodeFields([]byte(d.Data))
	if err != nil {
		return docstore.Doc{}, fmt.Errorf("%s/%s: %w", d.Path, d.ID, err)
	}
	return docstore.Doc{ID: d.ID, Fields: f}, nil
}
