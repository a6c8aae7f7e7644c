package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragkit/internal/core/domain"
)

func TestProjectService_CreateGetList(t *testing.T) {
	ctx := context.Background()
	service := NewProjectService(memory.NewStore())

	created, err := service.Create(ctx, "  Handbook ", "company handbook")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Handbook", created.Name)
	assert.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

	got, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "company handbook", got.Description)

	projects, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, created.ID, projects[0].ID)
}

func TestProjectService_Create_Validation(t *testing.T) {
	service := NewProjectService(memory.NewStore())

	for _, name := range []string{"", "   ", "bad\x00name", "two\nlines", strings.Repeat("x", 201)} {
		_, err := service.Create(context.Background(), name, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "name %q", name)
	}
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	service := NewProjectService(store)

	project, err := service.Create(ctx, "temp", "")
	require.NoError(t, err)
	require.NoError(t, store.PutDocument(ctx, &domain.Document{ID: "d", ProjectID: project.ID, Name: "d"}))

	require.NoError(t, service.Delete(ctx, project.ID))

	_, err = service.Get(ctx, project.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetDocument(ctx, "d")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, service.Delete(ctx, project.ID), domain.ErrNotFound)
}
