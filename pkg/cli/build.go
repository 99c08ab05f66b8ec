package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/cli/config"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/domain/types"
	"github.com/storyspark-lab/storyspark/pkg/service/scenegen"
	"github.com/storyspark-lab/storyspark/pkg/usecase"
	"github.com/storyspark-lab/storyspark/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdBuild() *cli.Command {
	var title string
	var premise string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var storyCfg config.Story
	var publishCfg config.Publish

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Usage:       "Story title (optional)",
			Destination: &title,
		},
		&cli.StringFlag{
			Name:        "premise",
			Usage:       "Story premise (prompted interactively when omitted)",
			Destination: &premise,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, storyCfg.Flags()...)
	flags = append(flags, publishCfg.Flags()...)

	return &cli.Command{
		Name:    "build",
		Aliases: []string{"b"},
		Usage:   "Build a story interactively in the terminal",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Gemini client")
			}

			sceneSvc, err := scenegen.New(llmClient)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize scene generator")
			}

			storyConfig, err := storyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load story configuration")
			}

			publishers, publishCloser, err := publishCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure publishers")
			}
			defer publishCloser()

			uc := usecase.New(repo, llmClient, sceneSvc,
				usecase.WithStoryConfig(storyConfig),
				usecase.WithPublishers(publishers...),
			)

			loop := &buildLoop{
				uc:  uc,
				in:  bufio.NewReader(os.Stdin),
				out: os.Stdout,
			}
			return loop.run(ctx, title, premise)
		},
	}
}

// buildLoop drives the generate/decide cycle on a terminal. It is the
// interactive counterpart of the HTTP session endpoints.
type buildLoop struct {
	uc  *usecase.UseCases
	in  *bufio.Reader
	out io.Writer
}

func (b *buildLoop) run(ctx context.Context, title, premise string) error {
	if premise == "" {
		var err error
		premise, err = b.ask("Story premise: ")
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(b.out, "Generating the first scene...")
	session, err := b.uc.Workflow.Start(ctx, title, premise)
	if err != nil {
		// The session is durable even when the first generation fails;
		// fall through and let the phase loop retry with Step.
		if session == nil || !b.confirmRetry(ctx, err) {
			return err
		}
	}

	for {
		session, err = b.uc.Workflow.Get(ctx, session.ID)
		if err != nil {
			return err
		}

		switch session.Phase {
		case types.SessionPhaseRetrieving:
			fmt.Fprintf(b.out, "Generating scene %d...\n", session.CurrentIndex)
			if _, err := b.uc.Workflow.Step(ctx, session.ID); err != nil {
				if !b.confirmRetry(ctx, err) {
					return err
				}
			}

		case types.SessionPhaseAwaitingDecision:
			b.printScene(session)
			if err := b.decide(ctx, session); err != nil {
				if !b.confirmRetry(ctx, err) {
					return err
				}
			}

		default:
			doc, err := b.uc.Workflow.Assemble(ctx, session.ID)
			if err != nil {
				return err
			}

			color.New(color.FgGreen, color.Bold).Fprintln(b.out, "\nStory complete!")
			fmt.Fprintln(b.out)
			fmt.Fprintln(b.out, doc.Content)
			return nil
		}
	}
}

// confirmRetry reports whether the reviewer wants to keep going after a
// failed generation. The session state is unchanged by the failure.
func (b *buildLoop) confirmRetry(ctx context.Context, err error) bool {
	logging.From(ctx).Error("scene generation failed", "error", err)

	answer, askErr := b.ask("Generation failed. Try again? [Y/n]: ")
	if askErr != nil {
		return false
	}
	return !strings.EqualFold(answer, "n") && !strings.EqualFold(answer, "no")
}

func (b *buildLoop) printScene(session *model.StorySession) {
	scene := session.PendingScene()
	if scene == nil {
		return
	}

	fmt.Fprintln(b.out)
	color.New(color.FgCyan, color.Bold).Fprintf(b.out, "--- Scene %d ---\n", scene.Index)
	fmt.Fprintln(b.out, scene.Text)
	if len(scene.CharacterNames) > 0 {
		color.New(color.Faint).Fprintf(b.out, "Cast: %s\n", strings.Join(scene.CharacterNames, ", "))
	}
}

// decide prompts for one decision and applies it. A generation failure
// inside Decide leaves the session durable; the caller re-reads the phase
// and retries from there.
func (b *buildLoop) decide(ctx context.Context, session *model.StorySession) error {
	for {
		answer, err := b.ask("\n[a]ccept, [r]egenerate, [c]ustom rewrite: ")
		if err != nil {
			return err
		}

		var decision model.Decision
		switch strings.ToLower(answer) {
		case "a", "accept":
			decision = model.Decision{Kind: types.DecisionAccept}
			more, err := b.ask("Add another scene? [y/N]: ")
			if err != nil {
				return err
			}
			decision.MoreScenes = strings.EqualFold(more, "y") || strings.EqualFold(more, "yes")

		case "r", "regenerate":
			decision = model.Decision{Kind: types.DecisionReject}
			fmt.Fprintln(b.out, "Regenerating...")

		case "c", "custom":
			instruction, err := b.ask("What should change? ")
			if err != nil {
				return err
			}
			decision = model.Decision{Kind: types.DecisionRewrite, Instruction: instruction}
			fmt.Fprintln(b.out, "Rewriting...")

		default:
			fmt.Fprintln(b.out, "Please answer a, r or c")
			continue
		}

		_, err = b.uc.Workflow.Decide(ctx, session.ID, decision)
		return err
	}
}

func (b *buildLoop) ask(prompt string) (string, error) {
	fmt.Fprint(b.out, prompt)
	line, err := b.in.ReadString('\n')
	if err != nil && line == "" {
		return "", goerr.Wrap(err, "failed to read input")
	}
	return strings.TrimSpace(line), nil
}
