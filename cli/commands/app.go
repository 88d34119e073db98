// Package commands implements the coverkit CLI using Cobra.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petal-labs/coverkit/cli/config"
	"github.com/petal-labs/coverkit/cli/keystore"
	"github.com/petal-labs/coverkit/cli/logging"
	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/gate"
	"github.com/petal-labs/coverkit/providers/gemini"
	"github.com/petal-labs/coverkit/studio"
)

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// GeneratorFactory creates the image provider from config.
type GeneratorFactory func(cfg *config.Config, logger zerolog.Logger) (core.ImageGenerator, error)

// KeystoreFactory creates a keystore instance.
type KeystoreFactory func() (keystore.Keystore, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig   ConfigLoader
	newGenerator GeneratorFactory
	newKeystore  KeystoreFactory
	prompter     Prompter
	now          func() time.Time
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer

	cfgFile    string
	model      string
	jsonOutput bool
	verbose    bool
	quiet      bool

	cfg    *config.Config
	logger zerolog.Logger
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithGeneratorFactory injects a provider factory dependency.
func WithGeneratorFactory(factory GeneratorFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newGenerator = factory
		}
	}
}

// WithKeystoreFactory injects a keystore factory dependency.
func WithKeystoreFactory(factory KeystoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newKeystore = factory
		}
	}
}

// WithPrompter injects the interactive prompt driver used by `studio`.
func WithPrompter(p Prompter) AppOption {
	return func(a *App) {
		if p != nil {
			a.prompter = p
		}
	}
}

// WithClock injects the clock used for output file names.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:   config.LoadConfig,
		newGenerator: defaultGeneratorFactory,
		newKeystore:  keystore.NewKeystore,
		prompter:     surveyPrompter{},
		now:          time.Now,
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		logger:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "coverkit",
		Short: "coverkit - AI video cover generator",
		Long: `coverkit generates video cover images (thumbnails) with Gemini.

Describe the title, target platform, style and optional reference photos;
coverkit composes the prompt, calls the image model and saves the result.
Keep refining the cover with follow-up edit instructions.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.coverkit/config.yaml)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (default gemini-3-pro-image-preview)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "only log warnings and errors")

	root.AddCommand(a.newLoginCommand())
	root.AddCommand(a.newLogoutCommand())
	root.AddCommand(a.newStatusCommand())
	root.AddCommand(a.newPlatformsCommand())
	root.AddCommand(a.newTagsCommand())
	root.AddCommand(a.newGenerateCommand())
	root.AddCommand(a.newEditCommand())
	root.AddCommand(a.newStudioCommand())
	root.AddCommand(a.newServeCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command. Errors not already reported by a
// command are printed to stderr.
func (a *App) Execute() error {
	err := a.root.Execute()
	if err == nil {
		return nil
	}
	var ee *exitError
	if !errors.As(err, &ee) || !ee.reported {
		if a.jsonOutput {
			outputErrorJSON(a.stderr, err, ExitCode(err))
		} else {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	}
	return err
}

// SetArgs overrides os.Args[1:] for the next Execute.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

func (a *App) configPath() string {
	if a.cfgFile != "" {
		return a.cfgFile
	}
	return config.DefaultConfigPath()
}

func (a *App) initConfig() error {
	config.LoadDotenv()

	cfg, err := a.loadConfig(a.configPath())
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	if a.model != "" {
		cfg.Model = a.model
	}
	a.cfg = cfg

	a.logger = logging.New(a.stderr, logging.Options{
		Env:     cfg.Env,
		Verbose: a.verbose,
		Quiet:   a.quiet,
	})
	return nil
}

// openGate opens the keystore and wraps it in a credential gate.
func (a *App) openGate() (*gate.Gate, error) {
	ks, err := a.newKeystore()
	if err != nil {
		return nil, exitWithCode(ExitValidation, err)
	}
	return gate.New(ks, gate.WithLogger(a.logger)), nil
}

// newStudio builds the orchestrator with the configured provider.
func (a *App) newStudio() (*studio.Studio, error) {
	gen, err := a.newGenerator(a.cfg, a.logger)
	if err != nil {
		return nil, exitWithCode(ExitValidation, err)
	}
	return studio.New(gen,
		studio.WithModel(core.ModelID(a.cfg.Model)),
		studio.WithLogger(a.logger),
		studio.WithTelemetry(studio.LogTelemetry{Logger: a.logger}),
	), nil
}

// openSession loads the stored credential and starts a session.
// modelInfo describes the configured model, or returns nil when the
// provider's catalogue does not list it.
func (a *App) modelInfo() *core.ModelInfo {
	if a.cfg.Provider != config.DefaultProvider {
		return nil
	}
	model := core.ModelID(a.cfg.Model)
	if model == "" {
		model = gemini.DefaultModel
	}
	return gemini.GetModelInfo(model)
}

// requireCapability fails when the configured model is known to lack f.
// Unknown models are let through and the service decides.
func (a *App) requireCapability(f core.Feature) error {
	info := a.modelInfo()
	if info == nil || info.HasCapability(f) {
		return nil
	}
	return exitWithCode(ExitValidation, fmt.Errorf("model %s does not support %s", info.ID, f))
}

func (a *App) openSession() (*studio.Session, *gate.Gate, error) {
	g, err := a.openGate()
	if err != nil {
		return nil, nil, err
	}
	cred, ok := g.Current()
	if !ok {
		return nil, nil, exitWithCode(ExitValidation, core.ErrMissingCredential)
	}
	st, err := a.newStudio()
	if err != nil {
		return nil, nil, err
	}
	return studio.NewSession(st, cred, g), g, nil
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}
