// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "lang",
			Aliases: []string{"l"},
			Usage:   "Display language (en, af, zu, xh)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, markdown, csv or json",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write output to a file instead of stdout",
		},
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database, run migrations and seed the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file (default: $HYMNAL_CONFIG or config.toml)",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "status",
				Usage: "Show applied and pending migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SetupStatus,
			},
		},
	}
}

// hymnsCommand handles catalog browsing
func hymnsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "hymns",
		Usage: "Browse the hymn catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List hymns, optionally filtered by category and search term",
				Flags: append(outputFlags(),
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Category name, or \"all\"",
						Value:   "all",
					},
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Match hymn numbers and titles",
					},
				),
				Action: r.HymnsList,
			},
			{
				Name:  "search",
				Usage: "Search hymns by number or title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "term"},
				},
				Flags: append(outputFlags(),
					&cli.BoolFlag{
						Name:  "generate",
						Usage: "Write a new hymn about the term when nothing matches",
					},
				),
				Action: r.HymnsSearch,
			},
			{
				Name:  "show",
				Usage: "Show a hymn with its lyrics",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags(),
				Action: r.HymnsShow,
			},
			{
				Name:  "recent",
				Usage: "List the most recently added hymns",
				Flags: append(outputFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of hymns",
						Value: 4,
					},
				),
				Action: r.HymnsRecent,
			},
			{
				Name:  "categories",
				Usage: "List categories with their hymn counts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "featured",
						Usage: "Only featured categories",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HymnsCategories,
			},
		},
	}
}

// aiCommand handles AI generation through the gateway
func aiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ai",
		Usage: "Generate content with the AI gateway",
		Commands: []*cli.Command{
			{
				Name:  "inspire",
				Usage: "Generate a short devotional with a Bible verse",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "category",
						Aliases: []string{"c"},
						Usage:   "Theme category (default: general)",
					},
					&cli.StringFlag{
						Name:    "lang",
						Aliases: []string{"l"},
						Usage:   "Language to write in",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AIInspire,
			},
			{
				Name:  "generate",
				Usage: "Write a new hymn about a topic",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "topic"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "lang",
						Aliases: []string{"l"},
						Usage:   "Language to write in",
					},
					&cli.BoolFlag{
						Name:  "like",
						Usage: "Add the hymn to favorites (requires login)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the hymn as Markdown to a file",
					},
				},
				Action: r.AIGenerate,
			},
			{
				Name:  "translate",
				Usage: "Translate text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "text"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "to",
						Usage:    "Target language",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Source language",
						Value: "en",
					},
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Fail instead of echoing the input when translation fails",
					},
				},
				Action: r.AITranslate,
			},
		},
	}
}

// likesCommand handles the liked set
func likesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "likes",
		Aliases: []string{"favorites"},
		Usage:   "Manage liked hymns (requires login)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List liked hymns",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
					},
				},
				Action: r.LikesList,
			},
			{
				Name:  "toggle",
				Usage: "Like or unlike a catalog hymn",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LikesToggle,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in through the identity provider in a browser",
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in user",
				Action: r.AuthStatus,
			},
		},
	}
}

// serveCommand runs the AI gateway
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the AI gateway server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: [gateway] host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: [gateway] port)",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "AI provider: gemini or openai (default: [ai] provider)",
			},
		},
		Action: r.Serve,
	}
}

// warmCommand pre-fetches catalog translations
func warmCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "warm",
		Usage: "Pre-fetch catalog translations through the AI gateway",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Target languages (default: all non-English)",
			},
			&cli.BoolFlag{
				Name:  "lyrics",
				Usage: "Translate lyrics as well as titles",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent fetches (default: [translation] warm_workers)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Fetches started per second (default: [translation] warm_rate)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the summary as JSON",
			},
		},
		Action: r.Warm,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive hymnal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Starting language",
			},
			&cli.BoolFlag{
				Name:  "warm",
				Usage: "Pre-fetch title translations in the background",
			},
		},
		Action: r.TUI,
	}
}
