package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/internal/presentation/tui"
	"github.com/njchilds90/gonewton/plot"
)

var solveCmd = &cobra.Command{
	Use:   "solve EXPRESSION",
	Short: "Find a root of f(x)",
	Long: `Runs Newton-Raphson on f(x) from --guess until the relative error drops
below --stop percent. Exits with status 1 when the input or the expression
is rejected; a run that ends without a root still exits 0.`,
	Example: `  newton solve "x^2 - 4" --guess 3 --stop 0.01
  newton solve "cos x - x" -g 1 -s 1e-6 --format json
  newton solve "e^x - 2" -g 0 -s 0.001 --plot root.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		guess, _ := cmd.Flags().GetString("guess")
		stop, _ := cmd.Flags().GetString("stop")
		maxIter, _ := cmd.Flags().GetInt("max-iter")
		samples, _ := cmd.Flags().GetInt("samples")
		format, _ := cmd.Flags().GetString("format")
		plotPath, _ := cmd.Flags().GetString("plot")

		req := gonewton.Request{
			Expression:    strings.Join(args, " "),
			InitialGuess:  guess,
			StopPercent:   stop,
			MaxIterations: maxIter,
			Samples:       samples,
		}
		resp := gonewton.Calculate(req,
			gonewton.WithLogger(logger),
			gonewton.WithDefaults(cfg.Solver.MaxIterations, cfg.Plot.Samples))

		if err := printResponse(cmd.OutOrStdout(), resp, format); err != nil {
			return err
		}
		if plotPath != "" && resp.Plot != nil {
			if err := writePlot(plotPath, resp); err != nil {
				return err
			}
			logger.Info("plot written", "path", plotPath)
		}
		if resp.Result.Status.IsRequestError() {
			return errRejected
		}
		return nil
	},
}

func printResponse(w io.Writer, resp *gonewton.Response, format string) error {
	if format == "auto" {
		format = "text"
		if f, ok := w.(*os.File); ok && tui.IsTerminal(f) {
			format = "markdown"
		}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "markdown":
		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		out, err := render(tui.Markdown(resp))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(w, out)
		return err
	case "text":
		_, err := fmt.Fprintf(w, "%s%s\n", tui.Table(resp), tui.StatusLine(tui.Profile(), resp.Result))
		return err
	}
	return fmt.Errorf("unknown format %q (want auto, text, markdown or json)", format)
}

func writePlot(path string, resp *gonewton.Response) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}
	opts := plot.RenderOptions{
		Width:  cfg.Plot.Width,
		Height: cfg.Plot.Height,
		Title:  "f(x) = " + resp.Function,
	}
	if err := plot.Render(f, resp.Plot, opts); err != nil {
		_ = f.Close()
		return fmt.Errorf("render plot: %w", err)
	}
	return f.Close()
}

func init() {
	rootCmd.AddCommand(solveCmd)

	solveCmd.Flags().StringP("guess", "g", "", "Initial guess x0")
	solveCmd.Flags().StringP("stop", "s", "", "Stopping criterion: relative error in percent")
	solveCmd.Flags().IntP("max-iter", "n", 0, "Iteration cap (0 uses the configured default)")
	solveCmd.Flags().Int("samples", 0, "Curve samples for plot data (0 uses the configured default)")
	solveCmd.Flags().StringP("format", "f", "auto", "Output format: auto, text, markdown or json")
	solveCmd.Flags().String("plot", "", "Write a PNG plot of the curve and the iterates to this file")
}
