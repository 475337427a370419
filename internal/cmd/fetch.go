package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/github"
	"github.com/nixlim/jarviz/internal/history"
)

var (
	fetchBranch string
	fetchOut    string
	fetchToken  string

	// githubBaseURL overrides the archive host in tests.
	githubBaseURL string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <repo-link>",
	Short: "Download a GitHub repository branch as a ZIP archive",
	Long: `Download a branch archive for an HTTPS or SSH GitHub link. A /tree/<branch>
segment in the link wins over --branch. The token defaults to the environment
variable named by download.token_env and is never written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchBranch, "branch", "b", "", "Branch to download (default: main)")
	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "Output directory (default: download.output_dir)")
	fetchCmd.Flags().StringVar(&fetchToken, "token", "", "GitHub token for private repos")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ref, err := github.ParseRepo(args[0], fetchBranch)
	if err != nil {
		return err
	}

	out := fetchOut
	if out == "" {
		out = cfg.Download.OutputDir
	}
	token := fetchToken
	if token == "" && cfg.Download.TokenEnv != "" {
		token = os.Getenv(cfg.Download.TokenEnv)
	}

	opts := []github.Option{
		github.WithTimeout(time.Duration(cfg.Download.TimeoutSeconds) * time.Second),
		github.WithLogger(logger.Named("github")),
	}
	if githubBaseURL != "" {
		opts = append(opts, github.WithBaseURL(githubBaseURL))
	}
	client := github.NewClient(opts...)

	store, _, err := history.NewStore(cfg.Storage, logger.Named("history"))
	if err != nil {
		return fmt.Errorf("history error: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), stopSignals...)
	defer stop()

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Downloading %s\n", ref)

	var lastReport int64
	path, err := client.Download(ctx, github.Request{
		URL:    args[0],
		Branch: fetchBranch,
		OutDir: config.ExpandPath(out),
		Token:  token,
	}, func(done, total int64) {
		if done-lastReport < 1<<20 && done != total {
			return
		}
		lastReport = done
		if total > 0 {
			fmt.Fprintf(stderr, "\r  %s / %s", humanize.Bytes(uint64(done)), humanize.Bytes(uint64(total)))
		} else {
			fmt.Fprintf(stderr, "\r  %s", humanize.Bytes(uint64(done)))
		}
	})
	fmt.Fprintln(stderr)

	rec := history.Download{
		Repo:   ref.String(),
		Branch: ref.Branch,
		URL:    github.ZipURL(ref),
		Path:   path,
		Status: history.StatusOK,
		At:     time.Now(),
	}
	if err != nil {
		rec.Status, rec.Error = history.StatusFailed, err.Error()
		store.RecordDownload(rec)
		return err
	}
	if fi, statErr := os.Stat(path); statErr == nil {
		rec.Bytes = fi.Size()
	}
	store.RecordDownload(rec)

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", path, humanize.Bytes(uint64(rec.Bytes)))
	return nil
}
