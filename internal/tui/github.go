package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/github"
	"github.com/nixlim/jarviz/internal/history"
	"github.com/nixlim/jarviz/internal/registry"
)

const (
	ghFieldURL = iota
	ghFieldBranch
	ghFieldToken
	ghFieldOutDir
)

type downloadProgressMsg struct {
	done, total int64
}

type downloadDoneMsg struct {
	ref   github.RepoRef
	path  string
	bytes int64
	err   error
	at    time.Time
}

// GithubPage downloads a repository branch as a ZIP archive.
type GithubPage struct {
	keys   KeyMap
	client *github.Client
	store  history.Store
	now    func() time.Time

	form     form
	bar      progress.Model
	running  bool
	cancel   context.CancelFunc
	ch       chan tea.Msg
	done     int64
	total    int64
	result   string
	err      error
	lastRepo string
}

// NewGithubPage creates the downloader page. The token field starts with the
// value of the environment variable cfg.TokenEnv; tokens are never persisted.
func NewGithubPage(client *github.Client, store history.Store, cfg config.DownloadConfig) *GithubPage {
	p := &GithubPage{
		keys:   DefaultKeyMap(),
		client: client,
		store:  store,
		now:    time.Now,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(inputWidth)),
	}

	token := newInput("optional, for private repos", "")
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '•'
	if cfg.TokenEnv != "" {
		token.SetValue(os.Getenv(cfg.TokenEnv))
	}

	p.form.add("Repository", newInput("https://github.com/OWNER/REPO", ""))
	p.form.add("Branch", newInput(github.DefaultBranch, ""))
	p.form.add("Token", token)
	p.form.add("Save to", newInput("output directory", config.ExpandPath(cfg.OutputDir)))
	return p
}

func (p *GithubPage) ID() string    { return PageGithub }
func (p *GithubPage) Title() string { return "GitHub ZIP" }

func (p *GithubPage) RegisterActions(r *registry.Registry) {
	r.Register(registry.Action{
		ID:       "github_zip",
		Title:    "GitHub: Download repo as ZIP",
		Keywords: []string{"github", "zip", "download", "repo", "token", "private"},
		PageID:   PageGithub,
	})
}

func (p *GithubPage) Init() tea.Cmd  { return nil }
func (p *GithubPage) Focus() tea.Cmd { return p.form.Focus() }
func (p *GithubPage) Blur()          { p.form.Blur() }

func (p *GithubPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case downloadProgressMsg:
		p.done, p.total = msg.done, msg.total
		return waitFor(p.ch)

	case downloadDoneMsg:
		return p.finish(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.NextField), key.Matches(msg, arrowDown):
			return p.form.next()
		case key.Matches(msg, p.keys.PrevField), key.Matches(msg, arrowUp):
			return p.form.prev()
		case key.Matches(msg, p.keys.Enter), key.Matches(msg, p.keys.Run):
			return p.start()
		case key.Matches(msg, p.keys.Cancel):
			if p.running && p.cancel != nil {
				p.cancel()
			}
			return nil
		}
		return p.form.update(msg)
	}
	return nil
}

// start validates the form and launches the download in the background.
// Progress and completion come back as messages through p.ch.
func (p *GithubPage) start() tea.Cmd {
	if p.running {
		return nil
	}
	p.result, p.err = "", nil

	link := p.form.value(ghFieldURL)
	if link == "" {
		p.err = errors.New("paste a repository link first")
		return nil
	}
	ref, err := github.ParseRepo(link, p.form.value(ghFieldBranch))
	if err != nil {
		p.err = err
		return nil
	}

	req := github.Request{
		URL:    link,
		Branch: p.form.value(ghFieldBranch),
		OutDir: config.ExpandPath(p.form.value(ghFieldOutDir)),
		Token:  p.form.value(ghFieldToken),
	}
	if req.OutDir == "" {
		req.OutDir = "."
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan tea.Msg, 16)
	p.cancel, p.ch = cancel, ch
	p.running = true
	p.done, p.total = 0, 0
	p.lastRepo = ref.String()

	client, now := p.client, p.now
	go func() {
		defer close(ch)
		defer cancel()
		path, err := client.Download(ctx, req, func(done, total int64) {
			select {
			case ch <- downloadProgressMsg{done: done, total: total}:
			default:
			}
		})
		var size int64
		if err == nil {
			if fi, statErr := os.Stat(path); statErr == nil {
				size = fi.Size()
			}
		}
		ch <- downloadDoneMsg{ref: ref, path: path, bytes: size, err: err, at: now()}
	}()
	return waitFor(ch)
}

func (p *GithubPage) finish(msg downloadDoneMsg) tea.Cmd {
	p.running = false
	p.cancel = nil

	rec := history.Download{
		Repo:   msg.ref.String(),
		Branch: msg.ref.Branch,
		URL:    github.ZipURL(msg.ref),
		Path:   msg.path,
		Bytes:  msg.bytes,
		Status: history.StatusOK,
		At:     msg.at,
	}
	if msg.err != nil {
		p.err = describeDownloadError(msg.err)
		rec.Status = history.StatusFailed
		rec.Error = p.err.Error()
	} else {
		p.result = fmt.Sprintf("Saved %s (%s)", msg.path, humanize.Bytes(uint64(msg.bytes)))
	}
	if p.store != nil {
		p.store.RecordDownload(rec)
	}

	if msg.err != nil {
		return notice("download failed: "+p.err.Error(), true)
	}
	return notice("downloaded "+msg.ref.String(), false)
}

// describeDownloadError adds the hint a user needs to fix each failure.
func describeDownloadError(err error) error {
	var authErr *github.AuthError
	switch {
	case errors.Is(err, github.ErrNotFound):
		return fmt.Errorf("%w: check the owner, repo and branch", err)
	case errors.As(err, &authErr):
		return fmt.Errorf("%w: private repos need a token with repo read access", err)
	case errors.Is(err, github.ErrHTMLResponse):
		return fmt.Errorf("%w: wrong link or missing auth", err)
	case errors.Is(err, context.Canceled):
		return errors.New("download cancelled")
	}
	return err
}

func (p *GithubPage) View(th Theme, width, height int) string {
	var b strings.Builder
	b.WriteString(th.H1.Render("GitHub: Download repo as ZIP"))
	b.WriteString("\n")
	b.WriteString(th.Dim.Render("Paste a repo link. A /tree/<branch> link overrides the branch field."))
	b.WriteString("\n\n")
	b.WriteString(p.form.view(th))
	b.WriteString("\n\n")

	switch {
	case p.running:
		b.WriteString("Downloading " + p.lastRepo + "\n")
		if p.total > 0 {
			b.WriteString(p.bar.ViewAs(float64(p.done) / float64(p.total)))
			b.WriteString(fmt.Sprintf("  %s / %s", humanize.Bytes(uint64(p.done)), humanize.Bytes(uint64(p.total))))
		} else {
			b.WriteString(th.Dim.Render(humanize.Bytes(uint64(p.done)) + " received (size unknown)"))
		}
		b.WriteString("\n" + th.Dim.Render("ctrl+x cancel"))
	case p.err != nil:
		b.WriteString(th.Danger.Render("Error: " + p.err.Error()))
	case p.result != "":
		b.WriteString(th.OK.Render(p.result))
	default:
		b.WriteString(th.Dim.Render("enter download · tab next field"))
	}
	return b.String()
}
