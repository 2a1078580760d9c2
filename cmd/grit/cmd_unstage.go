package main

import (
	"github.com/jmallove/grit/pkg/repo"
	"github.com/spf13/cobra"
)

func newUnstageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unstage <paths...>",
		Short: "Drop staged additions; mark tracked paths for removal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			for _, path := range args {
				if err := r.Unstage(path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
