package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"apiscout/internal/ir"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			schema_version TEXT,
			generated_at TEXT,
			root TEXT,
			revision TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS endpoints (
			method TEXT,
			route TEXT,
			raw_path TEXT,
			controller_name TEXT,
			action_name TEXT,
			path_params JSON,
			query_params JSON,
			request_body JSON,
			source_file TEXT,
			line INTEGER,
			confidence REAL,
			position INTEGER,
			PRIMARY KEY (method, route)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_endpoints_controller ON endpoints(controller_name);`,
		`CREATE INDEX IF NOT EXISTS idx_endpoints_file ON endpoints(source_file);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveSnapshot replaces the stored surface wholesale. Endpoints absent from
// the new snapshot disappear, so the database always mirrors exactly one
// scan.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *ir.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM endpoints`); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, schema_version, generated_at, root, revision)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			schema_version=excluded.schema_version,
			generated_at=excluded.generated_at,
			root=excluded.root,
			revision=excluded.revision
	`, snap.SchemaVersion, snap.GeneratedAt.Format(time.RFC3339Nano), snap.Root, snap.Revision); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO endpoints (method, route, raw_path, controller_name, action_name,
			path_params, query_params, request_body, source_file, line, confidence, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range snap.Endpoints {
		pathParams, _ := json.Marshal(e.PathParams)
		queryParams, _ := json.Marshal(e.QueryParams)
		requestBody, _ := json.Marshal(e.RequestBody)
		if _, err := stmt.Exec(e.Method, e.Route, e.RawPath, e.ControllerName, e.ActionName,
			pathParams, queryParams, requestBody, e.SourceFile, e.Line, e.Confidence, i); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSnapshot retrieves the stored surface with endpoints in their original
// insertion order.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*ir.Snapshot, error) {
	snap := &ir.Snapshot{}
	var generatedAt string
	row := s.db.QueryRowContext(ctx, `SELECT schema_version, generated_at, root, revision FROM snapshots WHERE id = 1`)
	if err := row.Scan(&snap.SchemaVersion, &generatedAt, &snap.Root, &snap.Revision); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("failed to load snapshot metadata: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, generatedAt); err == nil {
		snap.GeneratedAt = ts
	}

	endpoints, err := s.queryEndpoints(ctx, `SELECT method, route, raw_path, controller_name, action_name,
		path_params, query_params, request_body, source_file, line, confidence
		FROM endpoints ORDER BY position`)
	if err != nil {
		return nil, err
	}
	snap.Endpoints = endpoints
	return snap, nil
}

func (s *SQLiteStore) FindByController(ctx context.Context, controller string) ([]ir.EndpointDescriptor, error) {
	return s.queryEndpoints(ctx, `SELECT method, route, raw_path, controller_name, action_name,
		path_params, query_params, request_body, source_file, line, confidence
		FROM endpoints WHERE controller_name = ? ORDER BY position`, controller)
}

func (s *SQLiteStore) FindBySourceFile(ctx context.Context, path string) ([]ir.EndpointDescriptor, error) {
	return s.queryEndpoints(ctx, `SELECT method, route, raw_path, controller_name, action_name,
		path_params, query_params, request_body, source_file, line, confidence
		FROM endpoints WHERE source_file = ? ORDER BY position`, path)
}

func (s *SQLiteStore) queryEndpoints(ctx context.Context, query string, args ...any) ([]ir.EndpointDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query endpoints: %w", err)
	}
	defer rows.Close()

	var endpoints []ir.EndpointDescriptor
	for rows.Next() {
		var e ir.EndpointDescriptor
		var pathParams, queryParams, requestBody []byte
		if err := rows.Scan(&e.Method, &e.Route, &e.RawPath, &e.ControllerName, &e.ActionName,
			&pathParams, &queryParams, &requestBody, &e.SourceFile, &e.Line, &e.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan endpoint: %w", err)
		}
		if len(pathParams) > 0 {
			_ = json.Unmarshal(pathParams, &e.PathParams)
		}
		if len(queryParams) > 0 {
			_ = json.Unmarshal(queryParams, &e.QueryParams)
		}
		if len(requestBody) > 0 {
			_ = json.Unmarshal(requestBody, &e.RequestBody)
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}
