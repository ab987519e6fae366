package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/compiler"
	"github.com/njchilds90/gonewton/symbolic"
)

var diffCmd = &cobra.Command{
	Use:   "diff EXPRESSION",
	Short: "Print f(x) and its derivative",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, _ := cmd.Flags().GetInt("order")
		latex, _ := cmd.Flags().GetBool("latex")
		if order < 1 || order > gonewton.MaxDiffOrder {
			return fmt.Errorf("--order must be between 1 and %d, got %d", gonewton.MaxDiffOrder, order)
		}

		c, err := compiler.Compile(strings.Join(args, " "))
		if err != nil {
			return err
		}
		d := c.FPrime.Expr()
		if order > 1 {
			d = symbolic.DiffN(c.F.Expr(), compiler.Variable, order)
		}

		show := func(e symbolic.Expr) string {
			if latex {
				return e.LaTeX()
			}
			return e.String()
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "f(x) = %s\n", show(c.F.Expr()))
		fmt.Fprintf(out, "%s = %s\n", derivativeName(order), show(d))
		return nil
	},
}

func derivativeName(order int) string {
	if order <= 3 {
		return "f" + strings.Repeat("'", order) + "(x)"
	}
	return fmt.Sprintf("f^(%d)(x)", order)
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().IntP("order", "k", 1, "Derivative order")
	diffCmd.Flags().Bool("latex", false, "Print LaTeX instead of plain text")
}
