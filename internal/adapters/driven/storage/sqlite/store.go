package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	sqlitedriver "modernc.org/sqlite" // SQLite driver
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// the project and chunk store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.ragkit/data/rag.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragkit", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "rag.db")

	// WAL for concurrent readers; foreign keys must be enabled per connection.
	// Immediate transactions take the write lock up front so concurrent
	// PutChunks calls queue on busy_timeout instead of failing on upgrade.
	db, err := sql.Open("sqlite", dbPath+
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := newStoreFromDB(db, dbPath)

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// newStoreFromDB wraps an open database without running migrations.
func newStoreFromDB(db *sql.DB, path string) *Store {
	return &Store{db: db, path: path}
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ProjectStore returns a ProjectStore interface backed by this store.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{store: s}
}

// ChunkStore returns a ChunkStore interface backed by this store.
func (s *Store) ChunkStore() driven.ChunkStore {
	return &chunkStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// storageError maps a database error onto the storage error taxonomy.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var se *sqlitedriver.Error
	if errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrConstraintViolation, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

// ==================== Project Store ====================

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

// CreateProject stores a new project.
func (s *projectStore) CreateProject(ctx context.Context, project *domain.Project) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, created_at)
		VALUES (?, ?, ?, ?)
	`, project.ID, project.Name, project.Description, project.CreatedAt)

	return storageError("creating project", err)
}

// GetProject retrieves a project by ID.
func (s *projectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at
		FROM projects WHERE id = ?
	`, id)

	var p domain.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return nil, storageError("scanning project", err)
	}
	return &p, nil
}

// ListProjects returns all projects ordered by name.
func (s *projectStore) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, description, created_at
		FROM projects ORDER BY name, id
	`)
	if err != nil {
		return nil, storageError("querying projects", err)
	}
	defer rows.Close()

	var projects []domain.Project //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
			return nil, storageError("scanning project", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterating projects", err)
	}

	return projects, nil
}

// DeleteProject removes a project; documents and chunks cascade.
func (s *projectStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return storageError("deleting project", err)
	}
	return requireAffected(res, "project", id)
}

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// PutDocument stores a document.
func (s *chunkStore) PutDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, project_id, name, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.ID, doc.ProjectID, doc.Name, doc.Content, doc.CreatedAt)

	return storageError("saving document", err)
}

// PutChunks replaces the chunk set of a document in one transaction.
func (s *chunkStore) PutChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	dim, err := validateChunks(chunks)
	if err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var projectID string
	err = tx.QueryRowContext(ctx, "SELECT project_id FROM documents WHERE id = ?", documentID).Scan(&projectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		return storageError("looking up document", err)
	}

	if err := checkProjectDimension(ctx, tx, projectID, documentID, dim); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return storageError("clearing chunks", err)
	}
	if err := insertChunks(ctx, tx, projectID, documentID, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError("committing transaction", err)
	}
	return nil
}

// PutDocumentWithChunks stores a document and its chunks in one transaction.
func (s *chunkStore) PutDocumentWithChunks(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	dim, err := validateChunks(chunks)
	if err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, project_id, name, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.ID, doc.ProjectID, doc.Name, doc.Content, doc.CreatedAt); err != nil {
		return storageError("saving document", err)
	}
	if err := checkProjectDimension(ctx, tx, doc.ProjectID, doc.ID, dim); err != nil {
		return err
	}
	if err := insertChunks(ctx, tx, doc.ProjectID, doc.ID, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError("committing transaction", err)
	}
	return nil
}

// checkProjectDimension fails when the project's other documents store
// vectors of a different dimension than dim.
func checkProjectDimension(ctx context.Context, tx *sql.Tx, projectID, documentID string, dim int) error {
	if dim == 0 {
		return nil
	}
	var existing int
	err := tx.QueryRowContext(ctx, `
		SELECT dimension FROM chunks
		WHERE project_id = ? AND document_id != ?
		LIMIT 1
	`, projectID, documentID).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return storageError("checking project dimension", err)
	case existing != dim:
		return fmt.Errorf("%w: project %s stores %d-dimensional vectors, got %d",
			domain.ErrDimensionMismatch, projectID, existing, dim)
	}
	return nil
}

// insertChunks writes the chunks of a document inside tx.
func insertChunks(ctx context.Context, tx *sql.Tx, projectID, documentID string, chunks []domain.Chunk) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, project_id, ordinal, content, embedding, dimension)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return storageError("preparing statement", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ID, documentID, projectID, chunk.Ordinal,
			chunk.Content, float32SliceToBytes(chunk.Embedding), len(chunk.Embedding)); err != nil {
			return storageError("saving chunk", err)
		}
	}
	return nil
}

// GetAllChunkVectors returns every chunk vector of a project.
func (s *chunkStore) GetAllChunkVectors(ctx context.Context, projectID string) ([]domain.ChunkVector, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.embedding
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.project_id = ?
		ORDER BY d.created_at, d.id, c.ordinal
	`, projectID)
	if err != nil {
		return nil, storageError("querying chunk vectors", err)
	}
	defer rows.Close()

	var vectors []domain.ChunkVector //nolint:prealloc // size unknown from query
	for rows.Next() {
		var cv domain.ChunkVector
		var blob []byte
		if err := rows.Scan(&cv.ChunkID, &blob); err != nil {
			return nil, storageError("scanning chunk vector", err)
		}
		cv.Vector = bytesToFloat32Slice(blob)
		vectors = append(vectors, cv)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterating chunk vectors", err)
	}

	return vectors, nil
}

// HydrateChunks returns chunk records with document names, in the order of
// chunkIDs. Ids that no longer exist are skipped.
func (s *chunkStore) HydrateChunks(ctx context.Context, chunkIDs []string) ([]domain.ChunkMatch, error) {
	if len(chunkIDs) == 0 {
		return []domain.ChunkMatch{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunkIDs)), ",")
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}

	//nolint:gosec // G201: placeholders only, values are bound
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.project_id, c.ordinal, c.content, d.name
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, storageError("querying chunks", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.ChunkMatch, len(chunkIDs))
	for rows.Next() {
		var m domain.ChunkMatch
		if err := rows.Scan(&m.Chunk.ID, &m.Chunk.DocumentID, &m.Chunk.ProjectID,
			&m.Chunk.Ordinal, &m.Chunk.Content, &m.DocumentName); err != nil {
			return nil, storageError("scanning chunk", err)
		}
		byID[m.Chunk.ID] = m
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterating chunks", err)
	}

	matches := make([]domain.ChunkMatch, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if m, ok := byID[id]; ok {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

// GetDocument retrieves a document by ID.
func (s *chunkStore) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, content, created_at
		FROM documents WHERE id = ?
	`, documentID)

	var doc domain.Document
	if err := row.Scan(&doc.ID, &doc.ProjectID, &doc.Name, &doc.Content, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		return nil, storageError("scanning document", err)
	}
	return &doc, nil
}

// ListDocuments returns document summaries for a project, newest first.
func (s *chunkStore) ListDocuments(ctx context.Context, projectID string) ([]domain.DocumentSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT d.id, d.project_id, d.name, d.created_at, COUNT(c.id)
		FROM documents d
		LEFT JOIN chunks c ON c.document_id = d.id
		WHERE d.project_id = ?
		GROUP BY d.id
		ORDER BY d.created_at DESC, d.id
	`, projectID)
	if err != nil {
		return nil, storageError("querying documents", err)
	}
	defer rows.Close()

	var docs []domain.DocumentSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var d domain.DocumentSummary
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Name, &d.CreatedAt, &d.ChunkCount); err != nil {
			return nil, storageError("scanning document", err)
		}
		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterating documents", err)
	}

	return docs, nil
}

// DeleteDocument removes a document and its chunks.
func (s *chunkStore) DeleteDocument(ctx context.Context, documentID string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID)
	if err != nil {
		return storageError("deleting document", err)
	}
	return requireAffected(res, "document", documentID)
}

// validateChunks checks ordinals are contiguous from 0 and vectors share one
// dimension, returning that dimension.
func validateChunks(chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	dim := len(chunks[0].Embedding)
	for i, c := range chunks {
		if c.Ordinal != i {
			return 0, fmt.Errorf("%w: chunk %d has ordinal %d", domain.ErrConstraintViolation, i, c.Ordinal)
		}
		if len(c.Embedding) == 0 {
			return 0, fmt.Errorf("%w: chunk %d has no embedding", domain.ErrConstraintViolation, i)
		}
		if len(c.Embedding) != dim {
			return 0, fmt.Errorf("%w: chunk %d has dimension %d, expected %d",
				domain.ErrDimensionMismatch, i, len(c.Embedding), dim)
		}
	}
	return dim, nil
}

func requireAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageError("reading affected rows", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

// float32SliceToBytes converts []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
