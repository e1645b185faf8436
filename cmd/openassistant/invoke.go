package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryan12324/OpenAssistant-sub003/dispatch"
	"github.com/ryan12324/OpenAssistant-sub003/integration"
)

func newInvokeCmd() *cobra.Command {
	var (
		argPairs []string
		userID   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "invoke [integration] <skill>",
		Short: "Invoke one skill with key=value arguments",
		Long:  "Invoke one skill. With a single argument the skill id alone is resolved to its owning integration.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			h, err := buildHarness()
			if err != nil {
				return err
			}

			args := make(map[string]any, len(argPairs))
			for _, pair := range argPairs {
				k, v, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("invalid --arg %q: expected key=value", pair)
				}
				args[strings.TrimSpace(k)] = v
			}

			caller := dispatch.Caller{UserID: userID, Source: "cli"}
			var res integration.Result
			if len(cmdArgs) == 1 {
				res = h.dispatcher.ExecuteSkill(cmd.Context(), cmdArgs[0], args, caller)
			} else {
				res = h.dispatcher.Execute(cmd.Context(), cmdArgs[0], cmdArgs[1], args, caller)
			}
			h.recorder.Flush()

			if asJSON {
				b, _ := json.MarshalIndent(res, "", "  ")
				fmt.Println(string(b))
			} else {
				fmt.Println(res.Output)
			}
			if !res.Success {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&argPairs, "arg", nil, "Skill argument key=value (repeatable).")
	cmd.Flags().StringVar(&userID, "user", "local", "User id recorded in the audit trail.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON.")
	return cmd
}
