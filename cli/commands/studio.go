package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/media"
	"github.com/petal-labs/coverkit/studio"
)

// ErrAborted is returned by a Prompter when the user interrupts a prompt.
var ErrAborted = errors.New("aborted")

// Prompter drives the interactive studio prompts.
type Prompter interface {
	Input(ctx context.Context, message, def string) (string, error)
	Password(ctx context.Context, message string) (string, error)
	Select(ctx context.Context, message string, options []string, def int) (int, error)
	MultiSelect(ctx context.Context, message string, options []string) ([]int, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Input(ctx context.Context, message, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Password(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := survey.AskOne(&survey.Password{Message: message}, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Select(ctx context.Context, message string, options []string, def int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	prompt := &survey.Select{Message: message, Options: options}
	if def >= 0 && def < len(options) {
		prompt.Default = options[def]
	}
	var out string
	if err := survey.AskOne(prompt, &out); err != nil {
		return 0, translateSurveyErr(err)
	}
	return indexOf(options, out), nil
}

func (surveyPrompter) MultiSelect(ctx context.Context, message string, options []string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []string
	if err := survey.AskOne(&survey.MultiSelect{Message: message, Options: options}, &out); err != nil {
		return nil, translateSurveyErr(err)
	}
	var idx []int
	for _, v := range out {
		if i := indexOf(options, v); i >= 0 {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func indexOf(options []string, value string) int {
	for i, option := range options {
		if option == value {
			return i
		}
	}
	return -1
}

func (a *App) newStudioCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "studio",
		Short: "Design a cover interactively",
		Long: `Walk through the cover form, generate an image, then refine it with
follow-up instructions until you submit an empty one.

Every image is saved to the output directory as it is produced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = a.cfg.OutputDir
			}
			err := a.runStudio(cmd.Context(), out)
			if errors.Is(err, ErrAborted) {
				fmt.Fprintln(a.stderr, "Aborted.")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output directory")
	return cmd
}

func (a *App) runStudio(ctx context.Context, out string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	g, err := a.openGate()
	if err != nil {
		return err
	}
	cred, ok := g.Current()
	for !ok {
		key, err := a.prompter.Password(ctx, "Gemini API key (starts with AIza):")
		if err != nil {
			return err
		}
		cred, err = g.Login(key)
		if err != nil {
			fmt.Fprintf(a.stderr, "%v\n", err)
			continue
		}
		ok = true
	}

	st, err := a.newStudio()
	if err != nil {
		return err
	}
	sess := studio.NewSession(st, cred, g)

	req, err := a.promptCoverRequest(ctx)
	if err != nil {
		return err
	}

	for {
		fmt.Fprintln(a.stdout, "Generating…")
		art, err := sess.Generate(ctx, req)
		if err == nil {
			if err := a.saveStep(out, art); err != nil {
				return err
			}
			break
		}
		switch {
		case errors.Is(err, core.ErrMissingTitle):
			fmt.Fprintf(a.stderr, "%v\n", err)
			if req.MainTitle, err = a.prompter.Input(ctx, "Main title:", ""); err != nil {
				return err
			}
		case core.IsInvalidCredential(err):
			return a.handleGenerationError(err)
		default:
			// The form is kept; the user decides whether to send it again.
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			retry, perr := a.confirmRetry(ctx)
			if perr != nil {
				return perr
			}
			if !retry {
				return a.handleGenerationError(err)
			}
		}
	}

	for {
		instruction, err := a.prompter.Input(ctx, "Edit instruction (empty to finish):", "")
		if err != nil {
			return err
		}
		if strings.TrimSpace(instruction) == "" {
			return nil
		}

		fmt.Fprintln(a.stdout, "Editing…")
		art, err := sess.Edit(ctx, instruction)
		if err != nil {
			if core.IsInvalidCredential(err) {
				return a.handleGenerationError(err)
			}
			// The previous image stays current; let the user try again.
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			continue
		}
		if err := a.saveStep(out, art); err != nil {
			return err
		}
	}
}

// confirmRetry asks whether to resend the request. An empty answer or
// anything starting with y means yes.
func (a *App) confirmRetry(ctx context.Context) (bool, error) {
	answer, err := a.prompter.Input(ctx, "Try again? [Y/n]", "y")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "" || strings.HasPrefix(answer, "y"), nil
}

func (a *App) promptCoverRequest(ctx context.Context) (*core.CoverRequest, error) {
	req := core.NewCoverRequest()
	var err error

	if req.MainTitle, err = a.prompter.Input(ctx, "Main title:", ""); err != nil {
		return nil, err
	}
	if req.SubTitle, err = a.prompter.Input(ctx, "Subtitle (optional):", ""); err != nil {
		return nil, err
	}

	platforms := core.Platforms()
	options := make([]string, len(platforms))
	def := 0
	for i, p := range platforms {
		options[i] = fmt.Sprintf("%s (%s, %s)", p.Name, p.ID, p.Ratio)
		if p.ID == a.cfg.Platform() {
			def = i
		}
	}
	i, err := a.prompter.Select(ctx, "Platform:", options, def)
	if err != nil {
		return nil, err
	}
	if i >= 0 {
		req.Platform = platforms[i].ID
	}

	tags := core.StyleTags()
	picked, err := a.prompter.MultiSelect(ctx, "Style tags:", tags)
	if err != nil {
		return nil, err
	}
	for _, i := range picked {
		req.Tags.Add(tags[i])
	}

	if req.Subject, err = a.promptImage(ctx, "Subject image path (optional):"); err != nil {
		return nil, err
	}
	if req.StyleRef, err = a.promptImage(ctx, "Style reference image path (optional):"); err != nil {
		return nil, err
	}
	if req.CustomPrompt, err = a.prompter.Input(ctx, "Extra requirements (optional):", ""); err != nil {
		return nil, err
	}
	return req, nil
}

// promptImage asks for a path until it names a readable image or is left empty.
func (a *App) promptImage(ctx context.Context, message string) (*core.Attachment, error) {
	for {
		path, err := a.prompter.Input(ctx, message, "")
		if err != nil {
			return nil, err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil, nil
		}
		att, err := media.Load(path)
		if err != nil {
			fmt.Fprintf(a.stderr, "%v\n", err)
			continue
		}
		return att, nil
	}
}

func (a *App) saveStep(dir string, art core.Artifact) error {
	path, err := media.SaveArtifact(dir, art, a.now())
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	fmt.Fprintf(a.stdout, "Saved %s\n", path)
	return nil
}
