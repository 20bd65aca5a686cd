package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	"github.com/dermatologica/assistant/internal/infrastructure/clients/sqlite"
	apperrors "github.com/dermatologica/assistant/pkg/errors"
)

// Partition is a named logical table of the persistent store
type Partition string

const (
	PartitionHistory            Partition = "history"
	PartitionSavedFormulas      Partition = "saved_formulas"
	PartitionProducts           Partition = "products"
	PartitionSettings           Partition = "settings"
	PartitionSavedPrescriptions Partition = "saved_prescriptions"
)

var partitions = []Partition{
	PartitionHistory,
	PartitionSavedFormulas,
	PartitionProducts,
	PartitionSettings,
	PartitionSavedPrescriptions,
}

// KV is the partitioned key/value store every typed adapter builds on.
// Each partition is one table of (key, doc) rows where doc is a JSON
// document owned by the adapter. Put is an upsert; Delete and Clear are
// idempotent.
type KV struct {
	client *sqlite.Client

	initMu   sync.Mutex
	initDone bool
	initErr  error
	db       *goqu.Database
}

// NewKV creates a store over the given client. Init must be called before
// any other method.
func NewKV(client *sqlite.Client) *KV {
	return &KV{client: client}
}

// Init opens the underlying database and creates any missing partition
// table without disturbing existing ones. Idempotent and safe for
// concurrent callers: the first caller does the work, the rest reuse its
// outcome.
func (kv *KV) Init(ctx context.Context) error {
	kv.initMu.Lock()
	defer kv.initMu.Unlock()

	if kv.initDone {
		return kv.initErr
	}
	kv.initDone = true
	kv.initErr = kv.init(ctx)
	return kv.initErr
}

func (kv *KV) init(ctx context.Context) error {
	if err := kv.client.Open(ctx); err != nil {
		return err
	}

	for _, p := range partitions {
		ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (key TEXT PRIMARY KEY, doc TEXT NOT NULL)`, string(p))
		if _, err := kv.client.DB().ExecContext(ctx, ddl); err != nil {
			return apperrors.NewStorageUnavailableError(fmt.Sprintf("failed to create partition %s", p), err)
		}
	}

	kv.db = goqu.New("sqlite3", kv.client.DB())
	return nil
}

// GetAll returns every document in a partition. Ordering is storage-defined;
// callers sort explicitly.
func (kv *KV) GetAll(ctx context.Context, p Partition) ([][]byte, error) {
	query, args, err := kv.db.From(string(p)).Select("doc").ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build getAll query", err)
	}

	rows, err := kv.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageUnavailableError(fmt.Sprintf("failed to read partition %s", p), err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, apperrors.NewStorageUnavailableError(fmt.Sprintf("failed to scan record in %s", p), err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Get returns the document stored under key, or nil when absent.
func (kv *KV) Get(ctx context.Context, p Partition, key string) ([]byte, error) {
	query, args, err := kv.db.From(string(p)).Select("doc").Where(goqu.C("key").Eq(key)).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build get query", err)
	}

	var doc []byte
	if err := kv.client.DB().QueryRowContext(ctx, query, args...).Scan(&doc); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, apperrors.NewStorageUnavailableError(fmt.Sprintf("failed to read key from %s", p), err)
	}
	return doc, nil
}

// Put upserts a document under key (insert-or-replace, last write wins).
func (kv *KV) Put(ctx context.Context, p Partition, key string, doc []byte) error {
	stmt := fmt.Sprintf(`INSERT INTO %q (key, doc) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET doc = excluded.doc`, string(p))
	if _, err := kv.client.DB().ExecContext(ctx, stmt, key, doc); err != nil {
		return apperrors.NewStorageWriteError(fmt.Sprintf("failed to write key to %s", p), err)
	}
	return nil
}

// Delete removes a key from a partition. Deleting an absent key is not an error.
func (kv *KV) Delete(ctx context.Context, p Partition, key string) error {
	query, args, err := kv.db.Delete(string(p)).Where(goqu.C("key").Eq(key)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}
	if _, err := kv.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageWriteError(fmt.Sprintf("failed to delete key from %s", p), err)
	}
	return nil
}

// Clear removes every record of a partition. Clearing an empty partition is
// not an error.
func (kv *KV) Clear(ctx context.Context, p Partition) error {
	query, args, err := kv.db.Delete(string(p)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build clear query", err)
	}
	if _, err := kv.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageWriteError(fmt.Sprintf("failed to clear partition %s", p), err)
	}
	return nil
}
