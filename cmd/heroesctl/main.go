// Command heroesctl manages the character catalog of a heroes server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"heroes/pkg/client"
	"heroes/pkg/logger"

	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	if err := newRootCommand(os.Stdout).Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "heroesctl",
		Usage:  "Browse and edit the character catalog of a heroes server",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "server base URL",
				Sources: cli.EnvVars("HEROES_SERVER"),
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "bearer token for write operations",
				Sources: cli.EnvVars("HEROES_TOKEN"),
			},
			&cli.DurationFlag{Name: "timeout", Value: client.DefaultTimeout, Usage: "per request timeout"},
			&cli.BoolFlag{Name: "debug", Usage: "log every request"},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Bool("debug") {
				logger.Init("development")
			} else {
				logger.SetLevel("warn")
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			listCommand(),
			statsCommand(),
			getCommand(),
			createCommand(),
			updateCommand(),
			deleteCommand(),
			uploadCommand(),
			loginCommand(),
		},
	}
}

func newClient(c *cli.Command) (*client.Client, error) {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		timeout = client.DefaultTimeout
	}
	return client.New(
		strings.TrimSpace(c.String("server")),
		client.WithToken(c.String("token")),
		client.WithTimeout(timeout),
	)
}

func output(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
