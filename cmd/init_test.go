package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/checkpoint/internal/models"
)

func TestInitCommand(t *testing.T) {
	p := useProject(t)
	initGameID = "doom"
	initGameName = "DOOM"

	require.NoError(t, runInit(nil, []string{}))

	assert.True(t, p.FileExists(".git"))
	assert.Equal(t, []string{models.BootstrapDescription}, p.Subjects("main"))

	cfg, err := models.LoadProjectConfig(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "doom", cfg.GameID)
	assert.Equal(t, "DOOM", cfg.GameName)
	assert.True(t, cfg.AutoSnapshotOnClose)
}

func TestInitTwiceKeepsSettings(t *testing.T) {
	p := useProject(t)
	initGameName = "First"
	require.NoError(t, runInit(nil, []string{}))

	initGameName = "Second"
	require.NoError(t, runInit(nil, []string{}))

	cfg, err := models.LoadProjectConfig(p.Path)
	require.NoError(t, err)
	assert.Equal(t, "First", cfg.GameName)
	assert.Len(t, p.Subjects("main"), 1)
}

func TestInitMissingDirectory(t *testing.T) {
	projectDir = "/definitely/not/here"
	defer func() { projectDir = "" }()

	err := runInit(nil, []string{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
