package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func TestStore_ProjectCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	require.NoError(t, store.CreateProject(ctx, &domain.Project{ID: "b", Name: "beta", CreatedAt: time.Now()}))
	require.NoError(t, store.CreateProject(ctx, &domain.Project{ID: "a", Name: "alpha", CreatedAt: time.Now()}))

	err := store.CreateProject(ctx, &domain.Project{ID: "a", Name: "again"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	got, err := store.GetProject(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)

	projects, err := store.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "alpha", projects[0].Name)
	assert.Equal(t, "beta", projects[1].Name)

	_, err = store.GetProject(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DeleteProject_Cascades(t *testing.T) {
	ctx := context.Background()
	store, p := setupStore(t)
	putDocument(t, store, p.ID, "doc-1", time.Now())
	require.NoError(t, store.PutChunks(ctx, "doc-1", makeChunks("doc-1", 2, 2)))

	require.NoError(t, store.DeleteProject(ctx, p.ID))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	matches, err := store.HydrateChunks(ctx, []string{"doc-1-c0"})
	require.NoError(t, err)
	assert.Empty(t, matches)

	assert.ErrorIs(t, store.DeleteProject(ctx, p.ID), domain.ErrNotFound)
}
