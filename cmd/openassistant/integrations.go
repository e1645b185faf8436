package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIntegrationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "integrations",
		Short: "List registered integrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := buildHarness()
			if err != nil {
				return err
			}
			for _, s := range h.registry.All() {
				fmt.Printf("%-12s %-14s %s (%d skills)\n", s.ID, s.Category, s.Name, len(s.Skills))
			}
			return nil
		},
	}
}

func newSkillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills [integration]",
		Short: "List skills, optionally for one integration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := buildHarness()
			if err != nil {
				return err
			}
			for _, s := range h.registry.All() {
				if len(args) == 1 && s.ID != args[0] {
					continue
				}
				for _, sk := range s.Skills {
					fmt.Printf("%-24s %s\n", sk.ID, sk.Description)
				}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("openassistant", version)
		},
	}
}

var version = "dev"
