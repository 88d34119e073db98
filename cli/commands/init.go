package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/petal-labs/coverkit/cli/config"
	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/providers/gemini"
)

type initFlags struct {
	platform  string
	outputDir string
	force     bool
}

func (a *App) newInitCommand() *cobra.Command {
	var f initFlags

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long: `Write a commented config file to ~/.coverkit/config.yaml (or --config)
and create the output directory.

Example:
  coverkit init --platform youtube --output-dir ~/covers`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(f)
		},
	}

	cmd.Flags().StringVar(&f.platform, "platform", string(core.DefaultPlatformID), "default platform")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", ".", "directory for saved covers")
	cmd.Flags().BoolVar(&f.force, "force", false, "overwrite an existing config file")

	return cmd
}

func (a *App) runInit(f initFlags) error {
	if _, ok := core.LookupPlatform(core.PlatformID(f.platform)); !ok {
		return exitWithCode(ExitValidation, fmt.Errorf("%w: %q", core.ErrUnknownPlatform, f.platform))
	}

	path := a.configPath()
	if _, err := os.Stat(path); err == nil && !f.force {
		return exitWithCode(ExitValidation, fmt.Errorf("config file %q already exists (use --force to overwrite)", path))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}
	if err := generateFile(path, configTemplate, templateData{
		Provider:   config.DefaultProvider,
		Model:      string(gemini.DefaultModel),
		Platform:   f.platform,
		OutputDir:  f.outputDir,
		ListenAddr: config.DefaultListenAddr,
	}); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", f.outputDir, err)
	}

	fmt.Fprintf(a.stdout, "Created %s\n\n", path)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintln(a.stdout, "  coverkit login")
	fmt.Fprintln(a.stdout, `  coverkit generate --title "My first cover"`)
	return nil
}

type templateData struct {
	Provider   string
	Model      string
	Platform   string
	OutputDir  string
	ListenAddr string
}

func generateFile(path string, tmplContent string, data templateData) error {
	tmpl, err := template.New("file").Parse(tmplContent)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

var configTemplate = `# coverkit configuration
# Environment variables COVERKIT_PROVIDER, COVERKIT_MODEL, COVERKIT_BASE_URL,
# COVERKIT_PLATFORM, COVERKIT_OUTPUT_DIR, COVERKIT_ENV and COVERKIT_LISTEN_ADDR
# override these values. The API key is stored with 'coverkit login'.
provider: {{.Provider}}
model: {{.Model}}
default_platform: {{.Platform}}
output_dir: {{printf "%q" .OutputDir}}
listen_addr: {{printf "%q" .ListenAddr}}
env: production
`
