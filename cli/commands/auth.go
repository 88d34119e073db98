package commands

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/petal-labs/coverkit/core"
)

const apiKeyHelpURL = "https://aistudio.google.com/app/apikey"

func (a *App) newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store your Gemini API key",
		Long: `Store your Gemini API key in the encrypted local keystore.

The key is read without echo when stdin is a terminal, or from the first
line of piped input. Only the format is checked here; the key is verified
on first use and removed automatically if Gemini rejects it.

Get a key at ` + apiKeyHelpURL + `

Examples:
  coverkit login
  echo "$GEMINI_API_KEY" | coverkit login`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.readSecret("Enter Gemini API key: ")
			if err != nil {
				return exitWithCode(ExitValidation, fmt.Errorf("failed to read key: %w", err))
			}

			g, err := a.openGate()
			if err != nil {
				return err
			}
			secret, err := g.Login(key)
			if err != nil {
				if errors.Is(err, core.ErrInvalidCredentialFormat) {
					return exitWithCode(ExitValidation, err)
				}
				return exitWithCode(ExitValidation, fmt.Errorf("failed to store key: %w", err))
			}

			if a.jsonOutput {
				return writeJSON(a.stdout, map[string]any{"authenticated": true, "key": secret.Hint()})
			}
			fmt.Fprintf(a.stdout, "API key %s stored.\n", secret.Hint())
			return nil
		},
	}
}

func (a *App) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.openGate()
			if err != nil {
				return err
			}
			if err := g.Logout(); err != nil {
				return exitWithCode(ExitValidation, fmt.Errorf("failed to remove key: %w", err))
			}
			if a.jsonOutput {
				return writeJSON(a.stdout, map[string]any{"authenticated": false})
			}
			fmt.Fprintln(a.stdout, "API key removed.")
			return nil
		},
	}
}

func (a *App) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show credential and configuration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.openGate()
			if err != nil {
				return err
			}
			secret, ok := g.Current()
			info := a.modelInfo()

			if a.jsonOutput {
				out := map[string]any{
					"authenticated": ok,
					"provider":      a.cfg.Provider,
					"model":         a.cfg.Model,
					"platform":      a.cfg.Platform(),
					"output_dir":    a.cfg.OutputDir,
				}
				if ok {
					out["key"] = secret.Hint()
				}
				if info != nil {
					out["model"] = info.ID
					out["model_name"] = info.DisplayName
				}
				return writeJSON(a.stdout, out)
			}

			if ok {
				fmt.Fprintf(a.stdout, "Logged in (key %s)\n", secret.Hint())
			} else {
				fmt.Fprintln(a.stdout, "Not logged in. Run 'coverkit login'.")
			}
			model := a.cfg.Model
			switch {
			case info != nil:
				model = fmt.Sprintf("%s (%s)", info.ID, info.DisplayName)
			case model == "":
				model = "(provider default)"
			}
			fmt.Fprintf(a.stdout, "  provider:   %s\n", a.cfg.Provider)
			fmt.Fprintf(a.stdout, "  model:      %s\n", model)
			fmt.Fprintf(a.stdout, "  platform:   %s\n", a.cfg.Platform())
			fmt.Fprintf(a.stdout, "  output dir: %s\n", a.cfg.OutputDir)
			return nil
		},
	}
}

// readSecret reads one line from stdin, without echo on a terminal.
func (a *App) readSecret(prompt string) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
