package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"
)

// Document is one ingested source file. The catalog is bookkeeping around
// the vector indexes: it records what was ingested when, and lets re-ingestion
// skip files whose content has not changed.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	DocID       string    `bun:"doc_id,pk" json:"doc_id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Path        string    `bun:"path,notnull" json:"path"`
	ContentHash string    `bun:"content_hash,notnull" json:"-"`
	Pages       int       `bun:"pages,notnull" json:"pages"`
	Chunks      int       `bun:"chunks,notnull" json:"chunks"`
	IngestedAt  time.Time `bun:"ingested_at,notnull" json:"ingested_at"`
}

type Store struct {
	db *bun.DB
}

// Open opens (or creates) the sqlite catalog at path.
func Open(path string, debug bool) (*Store, error) {
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db}, nil
}

func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Upsert inserts or replaces the record for doc.DocID.
func (s *Store) Upsert(ctx context.Context, doc *Document) error {
	_, err := s.db.NewInsert().
		Model(doc).
		On("CONFLICT (doc_id) DO UPDATE").
		Set("title = EXCLUDED.title").
		Set("path = EXCLUDED.path").
		Set("content_hash = EXCLUDED.content_hash").
		Set("pages = EXCLUDED.pages").
		Set("chunks = EXCLUDED.chunks").
		Set("ingested_at = EXCLUDED.ingested_at").
		Exec(ctx)
	return err
}

// Get returns the record for docID, or nil when unknown.
func (s *Store) Get(ctx context.Context, docID string) (*Document, error) {
	doc := new(Document)
	err := s.db.NewSelect().Model(doc).Where("doc_id = ?", docID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns all ingested documents in ingestion order.
func (s *Store) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := s.db.NewSelect().Model(&docs).Order("ingested_at ASC", "doc_id ASC").Scan(ctx)
	return docs, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
