package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryan12324/OpenAssistant-sub003/audit"
)

func newAuditCmd() *cobra.Command {
	var (
		userID  string
		action  string
		skillID string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := buildHarness()
			if err != nil {
				return err
			}

			entries, err := h.store.Query(cmd.Context(), userID, audit.Filter{
				Action:  audit.Action(action),
				SkillID: skillID,
			}, audit.Page{Limit: limit, Offset: offset})
			if err != nil {
				return err
			}

			for _, e := range entries {
				status := "ok"
				if !e.Success {
					status = "fail"
				}
				fmt.Printf("%s  %-14s %-24s %-4s %5dms  %s\n",
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.Action, e.SkillID, status, e.DurationMs, e.Output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Filter by user id.")
	cmd.Flags().StringVar(&action, "action", "", "Filter by action.")
	cmd.Flags().StringVar(&skillID, "skill", "", "Filter by skill id.")
	cmd.Flags().IntVar(&limit, "limit", 20, "Max entries.")
	cmd.Flags().IntVar(&offset, "offset", 0, "Pagination offset.")
	return cmd
}
