package main

import (
	"fmt"
	"io"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"kouji-photo-backend/internal/logging"
	"kouji-photo-backend/internal/uploadclient"
	"kouji-photo-backend/internal/uploadqueue"
)

func main() {
	app := &cli.App{
		Name:  "uploader",
		Usage: "upload construction photos to a project",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "server", Value: "http://localhost:8080", Usage: "backend base URL", EnvVars: []string{"KOUJI_SERVER"}},
			&cli.StringFlag{Name: "token", Usage: "bearer token", EnvVars: []string{"KOUJI_TOKEN"}, Required: true},
			&cli.StringFlag{Name: "project", Usage: "project id", Required: true},
			&cli.StringFlag{Name: "log-level", Value: "warn"},
		},
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "upload files through a bounded queue",
				ArgsUsage: "FILES...",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "concurrency", Value: 3, Usage: "parallel uploads"},
					&cli.IntFlag{Name: "retries", Value: 3, Usage: "retries per file"},
					&cli.BoolFlag{Name: "auto-retry", Value: true, Usage: "retry failed uploads with backoff"},
					&cli.StringFlag{Name: "category", Usage: "写真区分 label or alias applied to every file"},
					&cli.StringFlag{Name: "shooting-date", Usage: "撮影年月日 (YYYY-MM-DD) applied to every file"},
				},
				Action: uploadAction,
			},
			{
				Name:   "list",
				Usage:  "list photos already in the project",
				Action: listAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newClient(c *cli.Context) *uploadclient.Client {
	return uploadclient.NewClient(c.String("server"), c.String("token"), c.String("project"))
}

func uploadAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("no files given", 2)
	}
	logger := logging.NewWithWriter(os.Stderr, c.String("log-level"))

	files, err := readFiles(c.Args().Slice(), c.String("category"), c.String("shooting-date"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := uploadqueue.DefaultOptions()
	opts.MaxConcurrency = c.Int("concurrency")
	opts.MaxRetries = c.Int("retries")
	opts.AutoRetry = c.Bool("auto-retry")
	q := uploadqueue.New(newClient(c), opts, logger)

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printEvents(c.App.Writer, q.Events())
	}()

	if _, err := q.Add(files...); err != nil {
		q.Close()
		<-printed
		return err
	}
	q.Start(ctx)
	waitErr := q.Wait(ctx)
	items := q.Items()
	q.Close()
	<-printed

	summary := summarize(items)
	fmt.Fprintf(c.App.Writer, "\n%d completed, %d duplicate, %d failed, %d cancelled\n",
		summary[uploadqueue.StateCompleted], summary[uploadqueue.StateDuplicate],
		summary[uploadqueue.StateError], summary[uploadqueue.StateCancelled])

	if waitErr != nil {
		return cli.Exit("interrupted", 130)
	}
	if summary[uploadqueue.StateError] > 0 {
		return cli.Exit("some uploads failed", 1)
	}
	return nil
}

func readFiles(paths []string, category, shootingDate string) ([]uploadqueue.File, error) {
	files := make([]uploadqueue.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		meta := map[string]string{}
		if category != "" {
			meta["category"] = category
		}
		if shootingDate != "" {
			meta["shootingDate"] = shootingDate
		}
		files = append(files, uploadqueue.File{
			Name:        filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Data:        data,
			Metadata:    meta,
		})
	}
	return files, nil
}

func printEvents(w io.Writer, events <-chan uploadqueue.Event) {
	for ev := range events {
		line := fmt.Sprintf("%s  %-10s %s", time.Now().Format("15:04:05"), ev.State, ev.Name)
		if ev.Attempt > 1 {
			line += fmt.Sprintf(" (attempt %d)", ev.Attempt)
		}
		if ev.Err != nil {
			line += ": " + ev.Err.Error()
		}
		fmt.Fprintln(w, line)
	}
}

func summarize(items []uploadqueue.Item) map[uploadqueue.State]int {
	out := make(map[uploadqueue.State]int)
	for _, item := range items {
		out[item.State]++
	}
	return out
}

func listAction(c *cli.Context) error {
	photos, err := newClient(c).ListPhotos(c.Context)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFILE\tCATEGORY\tSHOOTING DATE\tTITLE")
	for _, p := range photos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.FileName, p.Category, p.ShootingDate, p.Title)
	}
	return tw.Flush()
}

