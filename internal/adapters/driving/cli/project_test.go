package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectCreate(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "project", "create", "Handbook", "--description", "HR policies")

	require.NoError(t, err)
	assert.Contains(t, out, `Created project "Handbook"`)

	projects, err := projectService.List(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "HR policies", projects[0].Description)
}

func TestProjectCreate_RejectsBlankName(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "project", "create", "   ")

	assert.Error(t, err)
}

func TestProjectList(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects")

	id := createProject(t, "Handbook")
	out, err = execute(t, "", "project", "list")

	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "Handbook")
}

func TestProjectDelete(t *testing.T) {
	setupTestServices(t)
	id := createProject(t, "Scratch")

	out, err := execute(t, "", "project", "delete", id)

	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = execute(t, "", "project", "delete", id)
	assert.Error(t, err)
}

func TestProjectCmd_NotConfigured(t *testing.T) {
	SetServices(Services{})

	_, err := execute(t, "", "project", "list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "project service not configured")
}
