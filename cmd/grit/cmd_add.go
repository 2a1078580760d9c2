package main

import (
	"fmt"

	"github.com/jmallove/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "add [paths...]",
		Short: "Stage file contents for the next commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if all {
				logger.Debug("staging full working tree")
				return r.StageAll()
			}
			if len(args) == 0 {
				return fmt.Errorf("nothing specified; use paths or --all")
			}
			return r.StageFile(args...)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "A", false, "stage every non-ignored working-tree file")
	return cmd
}
