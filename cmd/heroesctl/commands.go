package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"heroes/internal/catalog"
	"heroes/internal/models"
	"heroes/internal/validation"

	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "output raw JSON"}
}

// fieldFlags maps the editable character fields to their flags.
var fieldFlags = []struct {
	name  string
	usage string
	set   func(*models.Character, string)
}{
	{"name", "display name", func(c *models.Character, v string) { c.Name = v }},
	{"real-name", "secret identity", func(c *models.Character, v string) { c.RealName = v }},
	{"origin", "place of origin", func(c *models.Character, v string) { c.Origin = v }},
	{"universe", "universe, e.g. Earth-1", func(c *models.Character, v string) { c.Universe = v }},
	{"powers", "powers and abilities", func(c *models.Character, v string) { c.Powers = v }},
	{"affiliation", "team or organisation", func(c *models.Character, v string) { c.Affiliation = v }},
	{"first-appearance", "year of first appearance", func(c *models.Character, v string) { c.FirstAppearance = v }},
	{"status", "ACTIVE, INACTIVE or DEAD", func(c *models.Character, v string) { c.Status = models.Status(strings.ToUpper(v)) }},
	{"alignment", "HERO, VILLAIN, ANTIHERO or NEUTRAL", func(c *models.Character, v string) { c.Alignment = models.Alignment(strings.ToUpper(v)) }},
	{"description", "free text description", func(c *models.Character, v string) { c.Description = v }},
	{"image-url", "portrait URL or uploaded image path", func(c *models.Character, v string) { c.ImageURL = v }},
}

func characterFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(fieldFlags)+1)
	for _, f := range fieldFlags {
		flags = append(flags, &cli.StringFlag{Name: f.name, Usage: f.usage})
	}
	return append(flags, jsonFlag())
}

// applyFlags copies the explicitly set field flags onto rec.
func applyFlags(c *cli.Command, rec *models.Character) {
	for _, f := range fieldFlags {
		if c.IsSet(f.name) {
			f.set(rec, c.String(f.name))
		}
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List characters, filtered by text, status and alignment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "q", Usage: "text matched against name and real name"},
			&cli.StringFlag{Name: "status", Usage: "ACTIVE, INACTIVE or DEAD"},
			&cli.StringFlag{Name: "alignment", Usage: "HERO, VILLAIN, ANTIHERO or NEUTRAL"},
			jsonFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			criteria := catalog.Criteria{
				Text:      c.String("q"),
				Status:    models.Status(strings.ToUpper(c.String("status"))),
				Alignment: models.Alignment(strings.ToUpper(c.String("alignment"))),
			}
			if criteria.Status != "" && !criteria.Status.Valid() {
				return fmt.Errorf("unknown status %q", c.String("status"))
			}
			if criteria.Alignment != "" && !criteria.Alignment.Valid() {
				return fmt.Errorf("unknown alignment %q", c.String("alignment"))
			}

			snapshot, err := fetchSnapshot(ctx, c)
			if err != nil {
				return err
			}
			items := catalog.Filter(snapshot, criteria)

			if c.Bool("json") {
				return printJSON(output(c), items)
			}
			printCharacters(output(c), items)
			return nil
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show totals by status, affiliation and universe",
		Flags: []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			snapshot, err := fetchSnapshot(ctx, c)
			if err != nil {
				return err
			}
			stats := catalog.Aggregate(snapshot)

			if c.Bool("json") {
				return printJSON(output(c), stats)
			}
			printStats(output(c), stats)
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show one character",
		ArgsUsage: "<id>",
		Flags:     []cli.Flag{jsonFlag()},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return err
			}
			api, err := newClient(c)
			if err != nil {
				return err
			}
			item, err := api.Get(ctx, id)
			if err != nil {
				return err
			}
			return showCharacter(c, *item)
		},
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Add a character",
		Flags: characterFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			api, err := newClient(c)
			if err != nil {
				return err
			}
			draft := models.NewCharacter()
			applyFlags(c, &draft)

			saved, err := api.Save(ctx, draft)
			if err != nil {
				return reportSaveError(c, err)
			}
			return showCharacter(c, *saved)
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Edit a character; unset flags keep their current value",
		ArgsUsage: "<id>",
		Flags:     characterFlags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return err
			}
			api, err := newClient(c)
			if err != nil {
				return err
			}
			current, err := api.Get(ctx, id)
			if err != nil {
				return err
			}
			draft := current.Clone()
			applyFlags(c, &draft)

			saved, err := api.Save(ctx, draft)
			if err != nil {
				return reportSaveError(c, err)
			}
			return showCharacter(c, *saved)
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove a character",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := requireArg(c, "id")
			if err != nil {
				return err
			}
			api, err := newClient(c)
			if err != nil {
				return err
			}
			if err := api.Delete(ctx, id); err != nil {
				return err
			}
			_, err = fmt.Fprintf(output(c), "deleted %s\n", id)
			return err
		},
	}
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a portrait image and print its URL",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "character", Usage: "also set the image URL of this character ID"},
			jsonFlag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			path, err := requireArg(c, "file")
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			api, err := newClient(c)
			if err != nil {
				return err
			}
			res, err := api.UploadImage(ctx, filepath.Base(path), data)
			if err != nil {
				return err
			}

			if id := c.String("character"); id != "" {
				current, err := api.Get(ctx, id)
				if err != nil {
					return err
				}
				draft := current.Clone()
				draft.ImageURL = res.URL
				if _, err := api.Save(ctx, draft); err != nil {
					return reportSaveError(c, err)
				}
			}

			if c.Bool("json") {
				return printJSON(output(c), res)
			}
			printKV(output(c), [][2]string{
				{"filename", res.Filename},
				{"url", api.ImageURL(res.URL)},
				{"thumbnail_url", orDash(api.ImageURL(res.ThumbnailURL))},
			})
			return nil
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Exchange admin credentials for a token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Value: "admin"},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("HEROES_PASSWORD")},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			api, err := newClient(c)
			if err != nil {
				return err
			}
			token, err := api.Login(ctx, c.String("username"), c.String("password"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(output(c), token)
			return err
		},
	}
}

func fetchSnapshot(ctx context.Context, c *cli.Command) ([]models.Character, error) {
	api, err := newClient(c)
	if err != nil {
		return nil, err
	}
	return api.List(ctx, catalog.Criteria{})
}

func requireArg(c *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(c.Args().First())
	if v == "" {
		return "", fmt.Errorf("missing <%s> argument", name)
	}
	return v, nil
}

func showCharacter(c *cli.Command, item models.Character) error {
	if c.Bool("json") {
		return printJSON(output(c), item)
	}
	printCharacter(output(c), item)
	return nil
}

func reportSaveError(c *cli.Command, err error) error {
	if verr, ok := validation.AsError(err); ok {
		printValidation(output(c), verr)
		return errors.New("character is invalid")
	}
	return err
}
