package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	iterator "github.com/simon020286/go-step-iterator"
	"github.com/simon020286/go-step-iterator/builder"
	"github.com/simon020286/go-step-iterator/config"
	"github.com/simon020286/go-step-iterator/models"
)

type runFlags struct {
	settle  bool
	verbose bool
	jsonOut bool
}

func newRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <sequence.yaml>",
		Short: "Run a sequence and print its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadSequenceFile(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("settle") {
				cfg.Settle = flags.settle
			}
			return runSequence(cmd, cfg, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.settle, "settle", false, "Capture step errors as results instead of stopping")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Print each step as it runs")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "Print results as JSON")

	return cmd
}

func runSequence(cmd *cobra.Command, cfg *config.SequenceConfig, flags *runFlags) error {
	steps, err := builder.BuildSteps(cfg)
	if err != nil {
		return err
	}

	base := iterator.New(cfg.InitialContext())
	base.SetLogger(slog.Default().With("sequence", cfg.Name))
	if flags.verbose {
		attachConsole(base, cmd.ErrOrStderr())
	}

	results, runErr := base.Run(cmd.Context(), steps, &iterator.Options{Settle: cfg.Settle})

	out := cmd.OutOrStdout()
	if flags.jsonOut {
		if err := writeJSON(out, steps, results, base.Context()); err != nil {
			return err
		}
	} else {
		writeText(out, steps, results)
	}
	return runErr
}

// attachConsole prints step lifecycle events as they are published
func attachConsole(base *iterator.Base, w io.Writer) {
	base.OnBeforeEach(func(step *models.Step) {
		fmt.Fprintf(w, "▶ %s (%s)\n", step, step.Kind())
	}).OnAfterEach(func(err error, result any, step *models.Step) {
		if err != nil {
			fmt.Fprintf(w, "✗ %s: %v\n", step, err)
			return
		}
		if captured, ok := result.(error); ok {
			fmt.Fprintf(w, "~ %s settled: %v\n", step, captured)
			return
		}
		fmt.Fprintf(w, "✓ %s\n", step)
	})
}

func writeText(w io.Writer, steps []*models.Step, results []any) {
	for i, result := range results {
		if err, ok := result.(error); ok {
			fmt.Fprintf(w, "%s: error: %v\n", steps[i], err)
			continue
		}
		fmt.Fprintf(w, "%s: %v\n", steps[i], result)
	}
}

type stepResult struct {
	Step   string `json:"step"`
	Kind   string `json:"kind"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func writeJSON(w io.Writer, steps []*models.Step, results []any, ctx models.Context) error {
	payload := struct {
		Results []stepResult   `json:"results"`
		Context models.Context `json:"context"`
	}{
		Results: make([]stepResult, 0, len(results)),
		Context: ctx,
	}

	for i, result := range results {
		sr := stepResult{Step: steps[i].String(), Kind: string(steps[i].Kind())}
		if err, ok := result.(error); ok {
			sr.Error = err.Error()
		} else {
			sr.Result = result
		}
		payload.Results = append(payload.Results, sr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
