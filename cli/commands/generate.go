package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/media"
)

type generateFlags struct {
	title    string
	subtitle string
	platform string
	subject  string
	style    string
	tags     []string
	prompt   string
	out      string
	edits    []string
}

// coverResult is the JSON shape printed for each saved cover.
type coverResult struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction,omitempty"`
	Path        string `json:"path"`
	MimeType    string `json:"mime_type"`
}

func (a *App) newGenerateCommand() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a cover image",
		Long: `Generate a cover image from a title, platform and optional references.

Each --edit flag applies one follow-up instruction to the latest image, in
order. Every intermediate image is saved, so a failed edit keeps the last
good cover on disk.

Examples:
  coverkit generate --title "三天学会Go" --platform bilibili
  coverkit generate --title "Vlog 03" --subject me.jpg --tag 电影感 --tag 复古胶片
  coverkit generate --title "Deep Dive" --platform youtube --edit "make the title red"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.title, "title", "", "main title (required)")
	cmd.Flags().StringVar(&f.subtitle, "subtitle", "", "optional subtitle")
	cmd.Flags().StringVar(&f.platform, "platform", "", "target platform (see 'coverkit platforms')")
	cmd.Flags().StringVar(&f.subject, "subject", "", "main subject image; the person or product keeps its likeness")
	cmd.Flags().StringVar(&f.style, "style", "", "style reference image for palette, layout and lighting")
	cmd.Flags().StringArrayVar(&f.tags, "tag", nil, "style tag (repeatable, see 'coverkit tags')")
	cmd.Flags().StringVar(&f.prompt, "prompt", "", "extra free-form requirements")
	cmd.Flags().StringVar(&f.out, "out", "", "output directory")
	cmd.Flags().StringArrayVar(&f.edits, "edit", nil, "follow-up edit instruction (repeatable)")

	return cmd
}

func (a *App) newEditCommand() *cobra.Command {
	var (
		in          string
		instruction string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit an existing cover image",
		Long: `Apply a natural-language instruction to an existing image.

Examples:
  coverkit edit --in cover-1718000000000.png --instruction "swap the background to a night city"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				return exitWithCode(ExitValidation, fmt.Errorf("--in is required"))
			}
			if err := a.requireCapability(core.FeatureImageEditing); err != nil {
				return err
			}
			current, err := media.LoadArtifact(in)
			if err != nil {
				return exitWithCode(ExitValidation, err)
			}
			sess, _, err := a.openSession()
			if err != nil {
				return err
			}
			if out == "" {
				out = a.cfg.OutputDir
			}

			sess.Load(current)
			art, err := sess.Edit(cmd.Context(), instruction)
			if err != nil {
				return a.handleGenerationError(err)
			}
			path, err := media.SaveArtifact(out, art, a.now())
			if err != nil {
				return exitWithCode(ExitValidation, err)
			}
			return a.printResults([]coverResult{{Step: 1, Instruction: instruction, Path: path, MimeType: art.MimeType}})
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "image to edit (required)")
	cmd.Flags().StringVar(&instruction, "instruction", "", "edit instruction (required)")
	cmd.Flags().StringVar(&out, "out", "", "output directory")

	return cmd
}

func (a *App) runGenerate(ctx context.Context, f generateFlags) error {
	req, err := a.buildCoverRequest(f)
	if err != nil {
		return exitWithCode(ExitValidation, err)
	}
	if err := req.Validate(); err != nil {
		return exitWithCode(ExitValidation, err)
	}
	if len(f.edits) > 0 {
		if err := a.requireCapability(core.FeatureImageEditing); err != nil {
			return err
		}
	}

	sess, _, err := a.openSession()
	if err != nil {
		return err
	}
	out := f.out
	if out == "" {
		out = a.cfg.OutputDir
	}

	var results []coverResult
	save := func(step int, instruction string, art core.Artifact) error {
		path, err := media.SaveArtifact(out, art, a.now())
		if err != nil {
			return exitWithCode(ExitValidation, err)
		}
		results = append(results, coverResult{Step: step, Instruction: instruction, Path: path, MimeType: art.MimeType})
		if !a.jsonOutput {
			fmt.Fprintf(a.stdout, "Saved %s\n", path)
		}
		return nil
	}

	art, err := sess.Generate(ctx, req)
	if err != nil {
		return a.handleGenerationError(err)
	}
	if err := save(0, "", art); err != nil {
		return err
	}

	for i, instruction := range f.edits {
		art, err = sess.Edit(ctx, instruction)
		if err != nil {
			if a.jsonOutput {
				a.printResults(results)
			}
			return a.handleGenerationError(err)
		}
		if err := save(i+1, instruction, art); err != nil {
			return err
		}
	}

	if a.jsonOutput {
		return a.printResults(results)
	}
	return nil
}

func (a *App) buildCoverRequest(f generateFlags) (*core.CoverRequest, error) {
	req := core.NewCoverRequest()
	req.MainTitle = f.title
	req.SubTitle = f.subtitle
	req.CustomPrompt = f.prompt
	req.Tags = core.NewTagSet(f.tags...)

	req.Platform = a.cfg.Platform()
	if f.platform != "" {
		req.Platform = core.PlatformID(f.platform)
	}

	if f.subject != "" {
		att, err := media.Load(f.subject)
		if err != nil {
			return nil, fmt.Errorf("subject image: %w", err)
		}
		req.Subject = att
	}
	if f.style != "" {
		att, err := media.Load(f.style)
		if err != nil {
			return nil, fmt.Errorf("style image: %w", err)
		}
		req.StyleRef = att
	}
	return req, nil
}

func (a *App) printResults(results []coverResult) error {
	if a.jsonOutput {
		return writeJSON(a.stdout, map[string]any{"covers": results})
	}
	for _, r := range results {
		fmt.Fprintf(a.stdout, "Saved %s\n", r.Path)
	}
	return nil
}
