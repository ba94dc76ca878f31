package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewatersql/twinklr/internal/config"
)

func Test_RunInitProject_WritesLoadableScaffold(t *testing.T) {
	dir := t.TempDir()
	initDir = dir
	defer func() { initDir = "." }()

	require.NoError(t, runInitProject(nil, []string{"club-night"}))

	templatePath := filepath.Join(dir, "club-night.template.yaml")
	rigPath := filepath.Join(dir, "club-night.rig.yaml")

	doc, err := config.LoadTemplateDoc(templatePath)
	require.NoError(t, err)
	assert.Equal(t, "club-night", doc.Template.ID)

	rig, err := config.LoadRigProfile(rigPath)
	require.NoError(t, err)
	assert.Equal(t, "club-night-rig", rig.Name())
}

func Test_RunInitProject_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	initDir = dir
	defer func() { initDir = "." }()

	path := filepath.Join(dir, "wave.template.yaml")
	require.NoError(t, os.WriteFile(path, []byte("existing"), 0o644))

	err := runInitProject(nil, []string{"wave"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")
}

func Test_RunInitProject_RejectsBadNames(t *testing.T) {
	for _, name := range []string{"Club", "club_night", "-wave", "wave-", ""} {
		t.Run("name "+name, func(t *testing.T) {
			err := runInitProject(nil, []string{name})
			assert.Error(t, err)
		})
	}
}
