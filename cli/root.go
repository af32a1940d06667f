// Package cli implements the reflink command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lukemcguire/reflink/config"
	"github.com/lukemcguire/reflink/resolver"
)

const usageLine = "reflink [flags] <file>"

// Streams are the process streams a command writes to.
type Streams struct {
	Out io.Writer
	Err io.Writer
}

// Execute runs reflink with the process arguments and returns the exit code.
func Execute() int {
	return Run(context.Background(), os.Args[1:], Streams{Out: os.Stdout, Err: os.Stderr})
}

// Run executes the command line args and returns the exit code.
func Run(ctx context.Context, args []string, streams Streams) int {
	cmd := NewRootCmd(streams)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		cliErr := classify(err)
		FprintError(streams.Err, cliErr)
		return cliErr.Category.ExitCode()
	}
	return ExitSuccess
}

// NewRootCmd builds the reflink root command.
func NewRootCmd(streams Streams) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   usageLine,
		Short: "Turn issue numbers, commit hashes and @handles into verified links",
		Long: `reflink scans a markdown document such as a changelog for references
like #42, a1b2c3d and @octocat, checks that each one exists on the forge,
and rewrites the ones that do into markdown links. References that cannot be
verified are left untouched.`,
		Example: `  reflink --repo acme/widget CHANGELOG.md
  reflink --repo acme/widget --dry-run --retry-profile fast NOTES.md
  REFLINK_REPO=acme/widget reflink --report report.json CHANGELOG.md`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return newArgumentError(
					fmt.Sprintf("expected exactly one file, got %d arguments", len(args)),
					usageLine,
					"Pass the path of the markdown file to rewrite",
				)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.LoadOptions{
				ConfigPath: configPath,
				Overrides:  flagOverrides(cmd.Flags()),
			})
			if err != nil {
				return err
			}
			return runRewrite(cmd.Context(), cfg, args[0], streams)
		},
	}
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newArgumentError(err.Error(), usageLine, "Run 'reflink --help' for the list of flags")
	})

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "config file (default ./"+config.DefaultFile+" if present)")
	f.StringP("repo", "r", "", "repository as owner/name; required for issue and commit links")
	f.String("host", "https://github.com", "forge base URL")
	f.String("retry-profile", resolver.ProfileFull, "retry schedule: full or fast")
	f.Int("max-attempts", 0, "probe attempts per URL (default from the retry profile)")
	f.Duration("base-delay", 0, "fixed part of every retry delay (default from the retry profile)")
	f.Duration("retry-step", 0, "delay added per attempt (default from the retry profile)")
	f.Duration("max-delay", 0, "cap on a single retry delay (0 = none)")
	f.Duration("timeout", 0, "abort the whole run after this long (0 = none)")
	f.Duration("request-timeout", 10*time.Second, "timeout for a single probe")
	f.String("user-agent", resolver.DefaultUserAgent, "User-Agent header for probes")
	f.Float64("rate-limit", 10, "maximum probes per second (0 = unlimited)")
	f.Int("concurrency", 1, "references resolved in parallel per pass")
	f.Bool("respect-robots", false, "skip URLs disallowed by the host's robots.txt")
	f.Bool("no-protect-markdown", false, "also rewrite inside code, raw HTML and existing links")
	f.String("issue-boundary", "strict", "character rule before #n: strict or loose")
	f.Bool("commit-heuristic", false, "skip short commit hashes made only of digits or only of letters")
	f.String("families", "issue,commit,handle", "comma-separated families to rewrite: issue-url, issue, commit, handle")
	f.Bool("dry-run", false, "print the result to stdout instead of writing the file")
	f.StringP("output", "o", "", "write the result here instead of the input file (- for stdout)")
	f.String("report", "", "write a per-reference report to this file")
	f.String("report-format", "json", "report format: json or csv")
	f.String("metrics-file", "", "write prometheus metrics in text format to this file")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.String("log-format", "text", "log format: text or json")
	f.Bool("tui", false, "show an interactive progress view")

	cmd.AddCommand(newInitCmd())
	return cmd
}

// flagOverrides returns the config keys for flags set on the command line.
func flagOverrides(flags *pflag.FlagSet) map[string]any {
	overrides := make(map[string]any)
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "config", "help":
			return
		case "no-protect-markdown":
			overrides["protect_markdown"] = f.Value.String() != "true"
		default:
			overrides[strings.ReplaceAll(f.Name, "-", "_")] = f.Value.String()
		}
	})
	return overrides
}

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented " + config.DefaultFile + " to the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(config.DefaultFile); err == nil && !force {
				return newArgumentError(config.DefaultFile+" already exists", "reflink init --force",
					"Pass --force to overwrite it")
			}
			if err := writeFileAtomic(config.DefaultFile, []byte(config.Template()), 0o644); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.DefaultFile)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
