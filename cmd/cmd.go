package main

import (
	"github.com/urfave/cli/v3"
)

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "setup",
		Aliases: []string{"init"},
		Usage:   "Initialize configuration and the local job store",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent database migration",
			},
			&cli.StringFlag{
				Name:  "cookies",
				Usage: "Path to a curl command file exported from the browser",
			},
		},
		Action: r.Setup,
	}
}

func processCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "process",
		Aliases:   []string{"p"},
		Usage:     "Transcribe a single video and save the result",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory to write the transcript into",
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Print the transcript instead of writing a file",
			},
		},
		Action: r.Process,
	}
}

func batchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Aliases:   []string{"b"},
		Usage:     "Submit every video on a channel or playlist page",
		ArgsUsage: "<page-url>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of videos to submit (0 = all)",
			},
			&cli.BoolFlag{
				Name:  "resume",
				Usage: "Resume a previously submitted batch instead of extracting",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory to write transcripts into",
			},
			&cli.BoolFlag{
				Name:  "no-probe",
				Usage: "Skip per-video title probes before submission",
			},
		},
		Action: r.Batch,
	}
}

func tasksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tasks",
		Aliases: []string{"t", "ls"},
		Usage:   "Inspect recorded jobs and their remote status",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List recorded jobs with live status from the backend",
				Action: r.TasksList,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit machine-readable output",
					},
				},
			},
			{
				Name:      "show",
				Usage:     "Fetch one job by its remote id",
				ArgsUsage: "<job-id>",
				Action:    r.TasksShow,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit machine-readable output",
					},
				},
			},
		},
	}
}

func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Aliases:   []string{"w"},
		Usage:     "Follow a video's transcription interactively",
		ArgsUsage: "<url>",
		Action:    r.Watch,
	}
}

func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that the transcription backend is reachable",
		Action: r.Health,
	}
}

func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Issue raw requests against the backend (debugging)",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET a backend path and print the response",
				ArgsUsage: "<path>",
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "POST a JSON body to a backend path",
				ArgsUsage: "<path> [body]",
				Action:    r.APIPost,
			},
		},
	}
}
