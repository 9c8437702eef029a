package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/scaffold-engine/internal/engine"
	"github.com/danielpatrickdp/scaffold-engine/internal/events"
	"github.com/danielpatrickdp/scaffold-engine/internal/policy"
	"github.com/danielpatrickdp/scaffold-engine/internal/provider"
	"github.com/danielpatrickdp/scaffold-engine/internal/template"
	"github.com/danielpatrickdp/scaffold-engine/internal/watch"
)

// #region run-cmd

func newRunCmd() *cobra.Command {
	var (
		toolName    string
		constraints string
		presetName  string
		model       string
		domain      string
		dbPath      string
		dryRun      bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "run [input text]",
		Short: "Run an input through the full pipeline: select, render, generate, guard",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry()
			if err != nil {
				return err
			}

			pol, err := buildPolicy(presetName, constraints)
			if err != nil {
				return err
			}

			var prov provider.Provider
			if dryRun {
				prov = &provider.Mock{Fallback: "[dry run: no provider call made]"}
			} else {
				apiKey := os.Getenv("OPENAI_API_KEY")
				if apiKey == "" {
					return fmt.Errorf("OPENAI_API_KEY is not set (use --dry-run to skip generation)")
				}
				prov = provider.NewOpenAI(apiKey, model)
			}

			var store *events.Store
			if dbPath != "" {
				store, err = events.NewStore(dbPath)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			eng, err := engine.New(engine.Config{
				Registry:      reg,
				Provider:      prov,
				Events:        store,
				Logger:        logger,
				DefaultDomain: domain,
			})
			if err != nil {
				return err
			}

			if interactive {
				return runInteractive(cmd, eng, toolName, pol, model)
			}

			input := strings.Join(args, " ")
			if input == "" {
				return fmt.Errorf("input text is required (or use --interactive)")
			}
			return runOnce(cmd, eng, input, toolName, pol, model)
		},
	}

	cmd.Flags().StringVar(&toolName, "tool", "", "tool name for direct template binding")
	cmd.Flags().StringVar(&constraints, "constraints", "", "natural-language constraint text, e.g. 'be concise; skip disclaimers'")
	cmd.Flags().StringVar(&presetName, "preset", "", "built-in policy preset to start from")
	cmd.Flags().StringVar(&model, "model", "", "provider model override")
	cmd.Flags().StringVar(&domain, "domain", "", "fallback domain when nothing scores")
	cmd.Flags().StringVar(&dbPath, "db", "", "event database path (empty disables event logging)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "skip the provider call, print the rendered prompt")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read inputs line by line, reloading templates on change")
	return cmd
}

// buildPolicy layers parsed constraint text over an optional preset.
func buildPolicy(presetName, constraints string) (*policy.RunPolicy, error) {
	registry := policy.NewPresetRegistry(true)

	var pol *policy.RunPolicy
	if presetName != "" {
		preset := registry.Get(presetName)
		if preset == nil {
			return nil, fmt.Errorf("unknown preset %q (have: %s)",
				presetName, strings.Join(registry.Names(), ", "))
		}
		pol = policy.FromPreset(preset)
	}
	if constraints != "" {
		result := policy.ParseConstraints(constraints, registry)
		for _, clause := range result.Unrecognized {
			fmt.Fprintf(os.Stderr, "warning: unrecognized constraint %q\n", clause)
		}
		if pol == nil {
			pol = result.Policy
		} else {
			pol = pol.Merge(result.Policy)
		}
	}
	return pol, nil
}

// #endregion run-cmd

// #region run-exec

func runOnce(cmd *cobra.Command, eng *engine.Engine, input, toolName string, pol *policy.RunPolicy, model string) error {
	result, err := eng.Run(cmd.Context(), engine.RunRequest{
		Input:    input,
		ToolName: toolName,
		Policy:   pol,
		Model:    model,
	})
	if err != nil {
		return err
	}

	fmt.Printf("template: %s (mode=%s)\n", result.TemplateID, result.Mode)
	if !result.Guardrails.Passed {
		fmt.Printf("guardrails: FAILED (%s)\n", strings.Join(result.Guardrails.HardViolations, ", "))
	}
	for _, flag := range result.Guardrails.Flags {
		fmt.Printf("flag: %s\n", flag)
	}
	fmt.Printf("safety: %s (m_score=%.4f dominant=%s)\n\n",
		result.Safety.Signal, result.Safety.MScore, result.Safety.DominantLayer)
	fmt.Println(result.Content)
	return nil
}

// runInteractive reads one input per line and keeps the registry fresh
// via the template watcher.
func runInteractive(cmd *cobra.Command, eng *engine.Engine, toolName string, pol *policy.RunPolicy, model string) error {
	watcher, err := watch.New(flagTemplatesDir, func(reg *template.Registry) {
		eng.SwapRegistry(reg)
	}, watch.Options{Logger: logger})
	if err != nil {
		logger.Warn("template watching disabled", zap.Error(err))
	} else {
		watcher.Start()
		defer watcher.Stop()
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("enter input per line, ctrl-d to exit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if err := runOnce(cmd, eng, input, toolName, pol, model); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// #endregion run-exec
