package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/bluewatersql/twinklr/internal/templates"
)

var initDir string

var projectNameRe = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

var initProjectCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Scaffold a starter template and rig profile",
	Long: `Create a starter choreography project: a template document with one
repeatable step and a preset, plus a four-fixture rig profile. Both
files compile as written and are meant to be edited from there.`,
	Example: `  twinklr init club-night
  twinklr init club-night --dir shows/club`,
	Args: cobra.ExactArgs(1),
	RunE: runInitProject,
}

func init() {
	initProjectCmd.Flags().StringVarP(&initDir, "dir", "d", ".", "Directory to write the scaffold into")
	rootCmd.AddCommand(initProjectCmd)
}

func runInitProject(_ *cobra.Command, args []string) error {
	name := args[0]
	if !projectNameRe.MatchString(name) {
		return fmt.Errorf("invalid project name %q: use kebab-case (e.g. club-night)", name)
	}

	data := templates.NewStarterData(name)

	templateDoc, err := templates.RenderTemplate(data)
	if err != nil {
		return err
	}
	rigDoc, err := templates.RenderRig(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(initDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	files := []struct {
		path string
		data []byte
	}{
		{filepath.Join(initDir, name+".template.yaml"), templateDoc},
		{filepath.Join(initDir, name+".rig.yaml"), rigDoc},
	}
	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil {
			return fmt.Errorf("refusing to overwrite %s", f.path)
		}
		if err := os.WriteFile(f.path, f.data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		slog.Info("wrote scaffold", "path", f.path)
	}

	fmt.Printf("Scaffolded %s. Try:\n  twinklr compile -t %s -r %s --window-ms 8000\n",
		name, files[0].path, files[1].path)
	return nil
}
