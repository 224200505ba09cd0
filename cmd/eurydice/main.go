// Command eurydice evaluates dice expressions: one-shot from a file or the
// command line, interactively via the REPL, or as a JSON sandbox host.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	eurydice "github.com/valadaptive/eurydice"
)

const appName = "eurydice"

type cliConfig struct {
	Expr       string
	Seed       int64
	MaxRerolls int
	JSON       bool
	Debug      bool
}

func main() {
	var cfg cliConfig

	rootCmd := &cobra.Command{
		Use:   appName + " [flags] [file]",
		Short: "Dice expression interpreter",
		Long: `Eurydice is an expression language for dice rolls. Expressions combine
die rolls (d20, 4 dF()), arithmetic, arrays, and higher-order roll
combinators like reroll, explode, and drop.`,
		Example: `  # Roll four six-sided dice and sum them
  ` + appName + ` -e "... (4 d6)"

  # Evaluate a script file
  ` + appName + ` roll.dice

  # Start the interactive REPL
  ` + appName + `

  # Reproducible rolls
  ` + appName + ` --seed 7 -e "2 d20"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg.Debug)

			if cfg.Expr != "" {
				return evalOnce(cfg, cfg.Expr)
			}
			if len(args) == 1 {
				src, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("cannot read %s: %w", args[0], err)
				}
				return evalOnce(cfg, string(src))
			}
			return runREPL(cfg)
		},
	}

	rootCmd.Flags().StringVarP(&cfg.Expr, "eval", "e", "", "Evaluate an expression given on the command line")
	rootCmd.Flags().Int64Var(&cfg.Seed, "seed", 0, "Seed the random source (0 uses the clock)")
	rootCmd.Flags().IntVar(&cfg.MaxRerolls, "max-rerolls", 0, "Cap reroll attempts (0 uses the project or built-in default)")
	rootCmd.Flags().BoolVar(&cfg.JSON, "json", false, "Emit {success, output} JSON instead of plain text")
	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion(eurydice.Version),
		fang.WithCommit(eurydice.BuildDate),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// newInterpreter builds an interpreter from flags layered over any
// discovered project config. Flags win.
func newInterpreter(cfg cliConfig) *eurydice.Interpreter {
	var opts []eurydice.Option

	cwd, _ := os.Getwd()
	configPath, project, err := findProjectConfig(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", configFile, err)
	} else if project != nil {
		slog.Debug("loaded project config", "path", configPath)
		if project.Seed != 0 && cfg.Seed == 0 {
			cfg.Seed = project.Seed
		}
		if project.MaxRerolls != 0 && cfg.MaxRerolls == 0 {
			cfg.MaxRerolls = project.MaxRerolls
		}
	}

	if cfg.Seed != 0 {
		opts = append(opts, eurydice.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}
	if cfg.MaxRerolls > 0 {
		opts = append(opts, eurydice.WithMaxRerolls(cfg.MaxRerolls))
	}
	return eurydice.NewInterpreter(opts...)
}

func evalOnce(cfg cliConfig, src string) error {
	ip := newInterpreter(cfg)

	if cfg.JSON {
		res := ip.Run(src)
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(res)
	}

	v, err := ip.EvalSource(src)
	if err != nil {
		return err
	}
	fmt.Println(eurydice.FormatValue(v))
	return nil
}
