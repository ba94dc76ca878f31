// Package main provides the twinklr CLI for compiling choreography templates.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bluewatersql/twinklr/internal/config"
	"github.com/bluewatersql/twinklr/internal/engine"
	"github.com/bluewatersql/twinklr/internal/output"
)

var (
	templatePath string
	rigPath      string
	presetID     string
	windowMs     int64
	barMs        float64
	tunablesPath string
	outFile      string
	outFormat    string
)

// compileCmd represents the compile command
var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a template against a rig into curve IR",
	Long: `Load a template document and a rig profile, compile the choreography
across the playback window, and write the resulting segment IR.

The output is deterministic: the same template, rig, preset, and window
always produce byte-identical segments.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCompileAction(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template document path (required)")
	compileCmd.Flags().StringVarP(&rigPath, "rig", "r", "", "Rig profile path (required)")
	compileCmd.Flags().StringVarP(&presetID, "preset", "p", "", "Preset to apply on top of the base template")
	compileCmd.Flags().Int64Var(&windowMs, "window-ms", 0, "Playback window length in milliseconds (required)")
	compileCmd.Flags().Float64Var(&barMs, "bar-ms", 2000, "One musical bar in milliseconds")
	compileCmd.Flags().StringVar(&tunablesPath, "tunables", "", "Compiler tunables YAML (defaults when omitted)")
	compileCmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file path (default: stdout)")
	compileCmd.Flags().StringVarP(&outFormat, "format", "f", "json", fmt.Sprintf("Output format %v", output.SupportedFormats()))

	_ = compileCmd.MarkFlagRequired("template")
	_ = compileCmd.MarkFlagRequired("rig")
	_ = compileCmd.MarkFlagRequired("window-ms")
}

// runCompileAction implements the core logic for the compile command
func runCompileAction(ctx context.Context) error {
	slog.Info("loading template", "path", templatePath)
	doc, err := config.LoadTemplateDoc(templatePath)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	slog.Info("loading rig", "path", rigPath)
	rig, err := config.LoadRigProfile(rigPath)
	if err != nil {
		return fmt.Errorf("failed to load rig: %w", err)
	}

	tunables, err := config.LoadTunables(tunablesPath)
	if err != nil {
		return fmt.Errorf("failed to load tunables: %w", err)
	}

	compiler := engine.NewCompiler(tunables, slog.Default())
	result, err := compiler.Compile(ctx, engine.CompileRequest{
		Doc:      doc,
		PresetID: presetID,
		Rig:      rig,
		WindowMs: windowMs,
		BarMs:    barMs,
	})
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	slog.Info("compiled",
		"template", result.TemplateID,
		"segments", len(result.Segments),
		"fixtures", len(result.FixtureIDs()),
		"warnings", len(result.Warnings))

	writer := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		writer = f
	}

	formatter, err := output.NewFormatter(outFormat, writer, output.Options{Indent: true})
	if err != nil {
		return err
	}
	if err := formatter.Format(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if outFile != "" {
		slog.Info("wrote IR", "path", outFile)
	}
	return nil
}
