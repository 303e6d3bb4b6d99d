package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"aggcsv/internal/config"
	"aggcsv/internal/service/convert"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI against the process streams and returns the exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run executes the command line args with the given streams and returns the
// exit code: 0 on success, 1 on any failure. An upstream query error is
// echoed verbatim to stdout; every other error is one line on stderr.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		if text, ok := convert.UpstreamOutput(err); ok {
			_, _ = fmt.Fprint(stdout, text)
			return 1
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// rootOptions holds the flag values of the root command.
type rootOptions struct {
	input      string
	output     string
	profile    string
	logLevel   string
	separator  rune
	strictJSON bool
	banners    []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{separator: ','}

	rootCmd := &cobra.Command{
		Use:   "aggcsv [input]",
		Short: "Convert MongoDB aggregation output to CSV",
		Long: `Convert the JSON result of a MongoDB aggregation into CSV.

Reads the aggregation envelope ({"result": [...], "ok": 1}) from standard
input or a file, checks that every result document is flat, and writes a
header row plus one row per document. Shell banners and the NumberLong(...)
and ObjectId(...) wrappers printed by the interactive shell are removed.`,
		Example: `  mongo --quiet db/col query.js | aggcsv > out.csv
  aggcsv --separator ';' --input result.json --output out.csv`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cmd.Flags().Changed("input") {
					return fmt.Errorf("input given both as argument and --input")
				}
				opts.input = args[0]
			}
			return runConvert(cmd, opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "Input file (default: standard input, '-' for standard input)")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file (default: standard output)")
	flags.VarP(newSeparatorValue(&opts.separator), "separator", "s", "Field separator: a single character, \\t, or tab|comma|semicolon|pipe")
	flags.BoolVar(&opts.strictJSON, "strict-json", false, "Treat input as plain JSON; skip shell banner and wrapper rewriting")
	flags.StringArrayVar(&opts.banners, "banner", nil, "Additional line prefix to drop as a shell banner (repeatable)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level for diagnostics on stderr (debug, info, warn, error)")
	flags.StringVarP(&opts.profile, "profile", "p", "", "Config profile to use")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

func runConvert(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	in, closeIn, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	defer closeIn()

	out := cmd.OutOrStdout()
	var file *lazyFile
	if opts.output != "" && opts.output != "-" {
		file = &lazyFile{path: opts.output}
		out = file
	}

	svc := convert.NewConvertService(cfg, logger)
	sum, err := svc.Convert(in, out)
	if err != nil {
		return err
	}
	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
	}

	logger.Info("conversion complete",
		"rows", sum.Rows,
		"columns", sum.Columns,
		"banners_dropped", sum.BannersDropped,
		"wrappers_rewritten", sum.WrappersRewritten)
	return nil
}

// resolveConfig applies precedence: flag > env > profile > default.
func resolveConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	base := config.Default()

	userCfg, err := LoadUserConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		// Config file is optional
		userCfg = &UserConfig{
			CurrentProfile: "default",
			Profiles:       map[string]Profile{},
		}
	}
	p, err := userCfg.ActiveProfile(opts.profile)
	if err != nil {
		return nil, err
	}
	if err := p.apply(base); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	cfg, err := config.LoadFromEnv(base)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("separator") {
		cfg.Separator = opts.separator
	}
	if flags.Changed("strict-json") {
		cfg.StrictJSON = opts.strictJSON
	}
	if flags.Changed("banner") {
		cfg.Banners = append(cfg.Banners, opts.banners...)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
