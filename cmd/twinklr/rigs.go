package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bluewatersql/twinklr/internal/config"
)

var inspectRigPath string

// rigsCmd groups rig-related subcommands.
var rigsCmd = &cobra.Command{
	Use:   "rigs",
	Short: "Inspect rig profiles",
}

// rigsInspectCmd prints a rig summary: fixtures, groups, orders, poses.
var rigsInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a rig profile summary",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runRigsInspectAction()
	},
}

func init() {
	rootCmd.AddCommand(rigsCmd)
	rigsCmd.AddCommand(rigsInspectCmd)

	rigsInspectCmd.Flags().StringVarP(&inspectRigPath, "rig", "r", "", "Rig profile path (required)")
	_ = rigsInspectCmd.MarkFlagRequired("rig")
}

func runRigsInspectAction() error {
	rig, err := config.LoadRigProfile(inspectRigPath)
	if err != nil {
		return fmt.Errorf("failed to load rig: %w", err)
	}

	fmt.Printf("Rig: %s\n", rig.Name())
	fmt.Printf("Fixtures (%d):\n", len(rig.Fixtures()))
	for _, id := range rig.Fixtures() {
		line := "  " + id
		if role, ok := rig.RoleOf(id); ok {
			line += "  role=" + role
		}
		if cal, ok := rig.Calibration(id); ok {
			line += fmt.Sprintf("  pan=[%.0f..%.0f] tilt=[%.0f..%.0f] dimmer=[%.0f..%.0f]",
				cal.PanMin, cal.PanMax, cal.TiltMin, cal.TiltMax, cal.DimmerMin, cal.DimmerMax)
		}
		fmt.Println(line)
	}

	fmt.Println("Groups:")
	for _, name := range rig.GroupNames() {
		members, _ := rig.Group(name)
		fmt.Printf("  %s: %s\n", name, strings.Join(members, ", "))
	}

	if names := rig.OrderNames(); len(names) > 0 {
		fmt.Println("Orders:")
		for _, name := range names {
			seq, _ := rig.Order(name)
			fmt.Printf("  %s: %s\n", name, strings.Join(seq, " -> "))
		}
	}

	return nil
}
