package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"azdoctl/internal/cli"
	"azdoctl/internal/vars"

	"github.com/spf13/cobra"
)

// Vars-specific flags
var (
	varsFile           string
	varsTarget         string
	varsPrefix         string
	varsSeparator      string
	varsUppercase      bool
	varsSanitize       bool
	varsSecretPatterns []string
	varsTemplate       string
	varsOut            string
	varsWatch          bool
)

// varsCmd represents the vars command group
var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Turn configuration files into variables",
	Long: `Turn JSON, JSONC and YAML configuration files into flat variables.

Nested documents are flattened into dotted names and exported as Azure
Pipelines variables, dotenv files, environment variables, JSON or
through a custom template. Variables whose source key matches a secret
pattern are marked secret and masked where the target supports it.`,
}

// varsExportCmd represents the vars export command
var varsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Flatten a configuration file and export the variables",
	Long: `Flatten a configuration file and write the variables to an export
target.

Targets:
  pipeline   Azure Pipelines logging commands (##vso[task.setvariable ...])
  dotenv     KEY="value" lines for .env files
  env        Set in this process and echo KEY=value (secrets masked)
  json       A flat JSON object of name/value pairs
  template   A Go template rendered with the variable list

Keys matching a secret pattern (default *secret*, *password*, *token*)
are flagged issecret=true for pipelines and masked in echoed output.

Examples:
  azdoctl vars export -f config.json                          # Pipeline variables
  azdoctl vars export -f config.jsonc --target dotenv         # .env format
  azdoctl vars export -f app.yaml --prefix CFG_ --uppercase --sanitize
  azdoctl vars export -f config.json --secret-pattern '*key*' --secret-pattern '*secret*'
  azdoctl vars export -f config.json --target json --out vars.json
  azdoctl vars export -f config.json --watch                  # Re-export on change`,
	RunE: runVarsExport,
}

func init() {
	rootCmd.AddCommand(varsCmd)
	varsCmd.AddCommand(varsExportCmd)

	varsExportCmd.Flags().StringVarP(&varsFile, "file", "f", "", "Configuration file to flatten (.json, .jsonc, .yaml or .yml)")
	varsExportCmd.Flags().StringVar(&varsTarget, "target", string(vars.TargetPipeline), "Export target: pipeline, dotenv, env, json or template")
	varsExportCmd.Flags().StringVar(&varsPrefix, "prefix", "", "Prefix applied to every variable name")
	varsExportCmd.Flags().StringVar(&varsSeparator, "separator", vars.DefaultSeparator, "Separator between nested key segments")
	varsExportCmd.Flags().BoolVar(&varsUppercase, "uppercase", false, "Uppercase variable names")
	varsExportCmd.Flags().BoolVar(&varsSanitize, "sanitize", false, "Replace characters not valid in environment variable names")
	varsExportCmd.Flags().StringArrayVar(&varsSecretPatterns, "secret-pattern", nil, "Glob marking matching keys as secret (repeatable, replaces the defaults)")
	varsExportCmd.Flags().StringVar(&varsTemplate, "template", "", "Template source for --target template")
	varsExportCmd.Flags().StringVar(&varsOut, "out", "", "Write output to a file instead of stdout")
	varsExportCmd.Flags().BoolVar(&varsWatch, "watch", false, "Watch the file and re-export on every change")

	_ = varsExportCmd.MarkFlagRequired("file")
}

func runVarsExport(cmd *cobra.Command, args []string) error {
	opts := vars.Options{
		Separator:      varsSeparator,
		Prefix:         varsPrefix,
		Uppercase:      varsUppercase,
		SanitizeEnv:    varsSanitize,
		SecretPatterns: varsSecretPatterns,
	}
	exportOpts := vars.ExportOptions{
		Target:   vars.Target(varsTarget),
		Template: varsTemplate,
	}

	if err := exportOnce(cmd, varsFile, opts, exportOpts); err != nil {
		return err
	}
	if !varsWatch {
		return nil
	}
	return watchAndExport(cmd, varsFile, opts, exportOpts)
}

// exportOnce loads, flattens and exports the document once. With --out the
// file is rewritten from scratch on every run.
func exportOnce(cmd *cobra.Command, path string, opts vars.Options, exportOpts vars.ExportOptions) error {
	doc, err := vars.Load(path)
	if err != nil {
		return err
	}
	variables := vars.Flatten(doc, opts)

	if varsOut == "" {
		return vars.Export(cmd.OutOrStdout(), variables, exportOpts)
	}

	f, err := os.Create(varsOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", varsOut, err)
	}
	if err := vars.Export(f, variables, exportOpts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// watchAndExport re-runs the export every time the document changes, until
// the process is interrupted. Export failures are reported but do not stop
// the watch; the next change gets another chance.
func watchAndExport(cmd *cobra.Command, path string, opts vars.Options, exportOpts vars.ExportOptions) error {
	watcher, err := vars.NewWatcher(vars.WatchConfig{
		Path: path,
		OnChange: func() {
			if err := exportOnce(cmd, path, opts, exportOpts); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatError(err))
			}
		},
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes. Press Ctrl+C to stop.\n", path)

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	return nil
}
