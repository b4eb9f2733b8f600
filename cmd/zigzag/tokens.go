package main

import (
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/zigzag/internal/lexer"
)

func (a *app) tokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the tokens of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := a.readSources(args)
			if err != nil {
				return err
			}
			tokens, err := a.compiler().Tokenize(sources[0])
			if err != nil {
				return err
			}
			lexer.Dump(a.stdout, tokens)
			return nil
		},
	}
}
