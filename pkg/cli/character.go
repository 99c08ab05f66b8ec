package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/storyspark-lab/storyspark/pkg/cli/config"
	"github.com/storyspark-lab/storyspark/pkg/domain/model"
	"github.com/storyspark-lab/storyspark/pkg/service/scenegen"
	"github.com/storyspark-lab/storyspark/pkg/usecase"
	"github.com/storyspark-lab/storyspark/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// characterUseCases wires the repository and LLM client for the character
// subcommands. The caller runs the returned closer when done.
func characterUseCases(ctx context.Context, repoCfg *config.Repository, geminiCfg *config.Gemini) (*usecase.UseCases, func(), error) {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	llmClient, err := geminiCfg.Configure(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, nil, goerr.Wrap(err, "failed to initialize Gemini client")
	}

	sceneSvc, err := scenegen.New(llmClient)
	if err != nil {
		_ = repo.Close()
		return nil, nil, goerr.Wrap(err, "failed to initialize scene generator")
	}

	closer := func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	return usecase.New(repo, llmClient, sceneSvc), closer, nil
}

func cmdCharacter() *cli.Command {
	var repoCfg config.Repository
	var geminiCfg config.Gemini

	flags := repoCfg.Flags()
	flags = append(flags, geminiCfg.Flags()...)

	var name, description string
	addCmd := &cli.Command{
		Name:  "add",
		Usage: "Add a character to the store",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Character name",
				Required:    true,
				Destination: &name,
			},
			&cli.StringFlag{
				Name:        "description",
				Usage:       "Character description (used for retrieval)",
				Required:    true,
				Destination: &description,
			},
		}, flags...),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := characterUseCases(ctx, &repoCfg, &geminiCfg)
			if err != nil {
				return err
			}
			defer closer()

			character, err := uc.Character.Create(ctx, name, description)
			if err != nil {
				return err
			}

			fmt.Printf("Added %s (%s)\n", character.Name, character.ID)
			return nil
		},
	}

	listCmd := &cli.Command{
		Name:  "list",
		Usage: "List all characters",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := characterUseCases(ctx, &repoCfg, &geminiCfg)
			if err != nil {
				return err
			}
			defer closer()

			characters, err := uc.Character.List(ctx)
			if err != nil {
				return err
			}

			printCharacters(characters)
			return nil
		},
	}

	var deleteID string
	deleteCmd := &cli.Command{
		Name:  "delete",
		Usage: "Delete a character",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "id",
				Usage:       "Character ID",
				Required:    true,
				Destination: &deleteID,
			},
		}, flags...),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := characterUseCases(ctx, &repoCfg, &geminiCfg)
			if err != nil {
				return err
			}
			defer closer()

			if err := uc.Character.Delete(ctx, model.CharacterID(deleteID)); err != nil {
				return err
			}

			fmt.Printf("Deleted %s\n", deleteID)
			return nil
		},
	}

	var query string
	var limit int
	searchCmd := &cli.Command{
		Name:  "search",
		Usage: "Search characters by semantic similarity",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "query",
				Aliases:     []string{"q"},
				Usage:       "Search query text",
				Required:    true,
				Destination: &query,
			},
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "Maximum number of results",
				Value:       3,
				Destination: &limit,
			},
		}, flags...),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, closer, err := characterUseCases(ctx, &repoCfg, &geminiCfg)
			if err != nil {
				return err
			}
			defer closer()

			characters, err := uc.Character.FindSimilar(ctx, query, limit)
			if err != nil {
				return err
			}

			printCharacters(characters)
			return nil
		},
	}

	return &cli.Command{
		Name:    "character",
		Aliases: []string{"c"},
		Usage:   "Manage the character store",
		Commands: []*cli.Command{
			addCmd,
			listCmd,
			deleteCmd,
			searchCmd,
		},
	}
}

func printCharacters(characters []*model.Character) {
	if len(characters) == 0 {
		fmt.Println("No characters found")
		return
	}

	nameColor := color.New(color.FgCyan, color.Bold)
	for _, c := range characters {
		_, _ = nameColor.Fprintf(os.Stdout, "%s", c.Name)
		fmt.Printf("  (%s)\n  %s\n", c.ID, c.Description)
	}
}
