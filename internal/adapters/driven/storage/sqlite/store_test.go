package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "ragkit-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestProject creates a project to satisfy foreign key constraints.
func createTestProject(t *testing.T, store *Store, projectID string) {
	t.Helper()
	err := store.ProjectStore().CreateProject(context.Background(), &domain.Project{
		ID:        projectID,
		Name:      "Project " + projectID,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

// createTestDocument creates a document with n chunks of the given dimension.
func createTestDocument(t *testing.T, store *Store, projectID, docID string, n, dim int) []domain.Chunk {
	t.Helper()
	ctx := context.Background()
	cs := store.ChunkStore()

	require.NoError(t, cs.PutDocument(ctx, &domain.Document{
		ID:        docID,
		ProjectID: projectID,
		Name:      "Doc " + docID,
		Content:   "content of " + docID,
		CreatedAt: time.Now().UTC(),
	}))

	chunks := makeChunks(docID, projectID, n, dim)
	require.NoError(t, cs.PutChunks(ctx, docID, chunks))
	return chunks
}

func makeChunks(docID, projectID string, n, dim int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = float32(i+1) * float32(j+1) / 10
		}
		chunks[i] = domain.Chunk{
			ID:         fmt.Sprintf("%s-c%d", docID, i),
			DocumentID: docID,
			ProjectID:  projectID,
			Ordinal:    i,
			Content:    fmt.Sprintf("chunk %d of %s", i, docID),
			Embedding:  vec,
		}
	}
	return chunks
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.FileExists(t, store.Path())
	assert.Equal(t, "rag.db", filepath.Base(store.Path()))
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	tempDir := t.TempDir()

	first, err := NewStore(tempDir)
	require.NoError(t, err)
	createTestProject(t, first, "p1")
	require.NoError(t, first.Close())

	second, err := NewStore(tempDir)
	require.NoError(t, err)
	defer second.Close()

	var version int
	require.NoError(t, second.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	p, err := second.ProjectStore().GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Project p1", p.Name)
}

// ==================== Project Store Tests ====================

func TestProjectStore_CRUD(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	ps := store.ProjectStore()

	createTestProject(t, store, "b")
	createTestProject(t, store, "a")

	projects, err := ps.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "a", projects[0].ID)

	require.NoError(t, ps.DeleteProject(ctx, "a"))
	_, err = ps.GetProject(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, ps.DeleteProject(ctx, "a"), domain.ErrNotFound)
}

func TestProjectStore_DuplicateID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	createTestProject(t, store, "p1")
	err := store.ProjectStore().CreateProject(context.Background(), &domain.Project{ID: "p1", Name: "again"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestProjectStore_DeleteCascades(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestProject(t, store, "p1")
	createTestDocument(t, store, "p1", "d1", 3, 4)

	require.NoError(t, store.ProjectStore().DeleteProject(ctx, "p1"))

	_, err := store.ChunkStore().GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&count))
	assert.Equal(t, 0, count)
}

// ==================== Chunk Store Tests ====================

func TestChunkStore_PutDocument_UnknownProject(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.ChunkStore().PutDocument(context.Background(), &domain.Document{
		ID: "d1", ProjectID: "missing", Name: "x", Content: "y", CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestChunkStore_RoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	createTestProject(t, store, "p1")
	chunks := createTestDocument(t, store, "p1", "d1", 3, 4)

	vectors, err := cs.GetAllChunkVectors(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	for i, v := range vectors {
		assert.Equal(t, chunks[i].ID, v.ChunkID)
		assert.Equal(t, chunks[i].Embedding, v.Vector)
	}

	matches, err := cs.HydrateChunks(ctx, []string{"d1-c2", "d1-c0"})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "d1-c2", matches[0].Chunk.ID)
	assert.Equal(t, 2, matches[0].Chunk.Ordinal)
	assert.Equal(t, "chunk 2 of d1", matches[0].Chunk.Content)
	assert.Equal(t, "Doc d1", matches[0].DocumentName)
	assert.Equal(t, "p1", matches[0].Chunk.ProjectID)
	assert.Equal(t, "d1-c0", matches[1].Chunk.ID)

	doc, err := cs.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "content of d1", doc.Content)
}

func TestChunkStore_GetAllChunkVectors_ScopedByProject(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestProject(t, store, "p1")
	createTestProject(t, store, "p2")
	createTestDocument(t, store, "p1", "d1", 2, 3)
	createTestDocument(t, store, "p2", "d2", 5, 3)

	vectors, err := store.ChunkStore().GetAllChunkVectors(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, vectors, 2)

	empty, err := store.ChunkStore().GetAllChunkVectors(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestChunkStore_HydrateChunks_SkipsMissing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	createTestProject(t, store, "p1")
	createTestDocument(t, store, "p1", "d1", 2, 2)
	createTestDocument(t, store, "p1", "d2", 1, 2)

	vectors, err := cs.GetAllChunkVectors(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	require.NoError(t, cs.DeleteDocument(ctx, "d1"))

	matches, err := cs.HydrateChunks(ctx, []string{"d1-c1", "d2-c0", "ghost", "d1-c0"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "d2-c0", matches[0].Chunk.ID)
}

func TestChunkStore_PutDocumentWithChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	createTestProject(t, store, "p1")
	doc := &domain.Document{ID: "d1", ProjectID: "p1", Name: "n", Content: "c", CreatedAt: time.Now().UTC()}
	require.NoError(t, cs.PutDocumentWithChunks(ctx, doc, makeChunks("d1", "p1", 3, 4)))

	docs, err := cs.ListDocuments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 3, docs[0].ChunkCount)

	matches, err := cs.HydrateChunks(ctx, []string{"d1-c1"})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "n", matches[0].DocumentName)
}

func TestChunkStore_PutDocumentWithChunks_FailureStoresNothing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	createTestProject(t, store, "p1")
	createTestDocument(t, store, "p1", "d1", 1, 4)

	newDoc := func(id string) *domain.Document {
		return &domain.Document{ID: id, ProjectID: "p1", Name: id, CreatedAt: time.Now().UTC()}
	}

	t.Run("duplicate chunk id", func(t *testing.T) {
		chunks := makeChunks("d2", "p1", 3, 4)
		chunks[2].ID = chunks[0].ID
		assert.ErrorIs(t, cs.PutDocumentWithChunks(ctx, newDoc("d2"), chunks), domain.ErrConstraintViolation)
	})

	t.Run("project dimension mismatch", func(t *testing.T) {
		err := cs.PutDocumentWithChunks(ctx, newDoc("d3"), makeChunks("d3", "p1", 2, 8))
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("unknown project", func(t *testing.T) {
		doc := &domain.Document{ID: "d4", ProjectID: "missing", Name: "x", CreatedAt: time.Now()}
		err := cs.PutDocumentWithChunks(ctx, doc, makeChunks("d4", "missing", 1, 4))
		assert.ErrorIs(t, err, domain.ErrConstraintViolation)
	})

	docs, err := cs.ListDocuments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, docs, 1, "failed writes must not leave documents behind")
	assert.Equal(t, "d1", docs[0].ID)

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestChunkStore_PutChunks_ReplacesExisting(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	createTestProject(t, store, "p1")
	createTestDocument(t, store, "p1", "d1", 4, 3)

	replacement := makeChunks("d1-v2", "p1", 2, 3)
	for i := range replacement {
		replacement[i].DocumentID = "d1"
	}
	require.NoError(t, cs.PutChunks(ctx, "d1", replacement))

	docs, err := cs.ListDocuments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].ChunkCount)
}

func TestChunkStore_PutChunks_Validation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	createTestProject(t, store, "p1")
	require.NoError(t, cs.PutDocument(ctx, &domain.Document{ID: "d1", ProjectID: "p1", Name: "n", CreatedAt: time.Now()}))

	t.Run("unknown document", func(t *testing.T) {
		err := cs.PutChunks(ctx, "ghost", makeChunks("ghost", "p1", 1, 2))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("gap in ordinals", func(t *testing.T) {
		chunks := makeChunks("d1", "p1", 3, 2)
		chunks[2].Ordinal = 5
		assert.ErrorIs(t, cs.PutChunks(ctx, "d1", chunks), domain.ErrConstraintViolation)
	})

	t.Run("mixed dimensions", func(t *testing.T) {
		chunks := makeChunks("d1", "p1", 3, 2)
		chunks[1].Embedding = []float32{1, 2, 3}
		assert.ErrorIs(t, cs.PutChunks(ctx, "d1", chunks), domain.ErrDimensionMismatch)
	})

	t.Run("duplicate chunk id rolls back", func(t *testing.T) {
		chunks := makeChunks("d1", "p1", 3, 2)
		chunks[2].ID = chunks[0].ID
		assert.ErrorIs(t, cs.PutChunks(ctx, "d1", chunks), domain.ErrConstraintViolation)

		vectors, err := cs.GetAllChunkVectors(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, vectors, "failed transaction must not leave partial chunks")
	})
}

func TestChunkStore_PutChunks_ProjectDimensionMismatch(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	createTestProject(t, store, "p1")
	createTestDocument(t, store, "p1", "d1", 2, 384)

	require.NoError(t, cs.PutDocument(ctx, &domain.Document{ID: "d2", ProjectID: "p1", Name: "n", CreatedAt: time.Now()}))
	err := cs.PutChunks(ctx, "d2", makeChunks("d2", "p1", 2, 768))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// Another project is free to use another dimension.
	createTestProject(t, store, "p2")
	createTestDocument(t, store, "p2", "d3", 1, 768)
}

func TestChunkStore_DeleteDocument_Cascades(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	createTestProject(t, store, "p1")
	createTestDocument(t, store, "p1", "d1", 3, 2)
	createTestDocument(t, store, "p1", "d2", 2, 2)

	require.NoError(t, cs.DeleteDocument(ctx, "d1"))

	vectors, err := cs.GetAllChunkVectors(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, vectors, 2)

	assert.ErrorIs(t, cs.DeleteDocument(ctx, "d1"), domain.ErrNotFound)
}

func TestChunkStore_ListDocuments(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestProject(t, store, "p1")
	createTestDocument(t, store, "p1", "d1", 3, 2)
	time.Sleep(5 * time.Millisecond)
	createTestDocument(t, store, "p1", "d2", 1, 2)

	docs, err := store.ChunkStore().ListDocuments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "d2", docs[0].ID)
	assert.Equal(t, 1, docs[0].ChunkCount)
	assert.Equal(t, "d1", docs[1].ID)
	assert.Equal(t, 3, docs[1].ChunkCount)
}

func TestChunkStore_ConcurrentIngestion(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	cs := store.ChunkStore()

	createTestProject(t, store, "p1")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docID := fmt.Sprintf("doc-%d", i)
			if err := cs.PutDocument(ctx, &domain.Document{
				ID: docID, ProjectID: "p1", Name: docID, CreatedAt: time.Now().UTC(),
			}); err != nil {
				errs <- err
				return
			}
			errs <- cs.PutChunks(ctx, docID, makeChunks(docID, "p1", 10, 8))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	vectors, err := cs.GetAllChunkVectors(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, vectors, 80)
}

func TestFloat32Blob_RoundTrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
