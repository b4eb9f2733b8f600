package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/zigzag/ast"
)

func (a *app) astCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ast <files...>",
		Short: "Print the syntax tree of source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := a.readSources(args)
			if err != nil {
				return err
			}
			c := a.compiler()
			program, err := c.Parse(cmd.Context(), sources...)
			if err != nil {
				return err
			}
			if !a.v.GetBool("unresolved") {
				if err := c.Resolve(cmd.Context(), program); err != nil {
					return err
				}
			}
			fmt.Fprint(a.stdout, ast.Dump(program.Tree, program.Root))
			return nil
		},
	}
	cmd.Flags().Bool("unresolved", false, "print the tree as parsed, before resolution")
	return cmd
}
