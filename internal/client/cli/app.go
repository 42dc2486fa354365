// Package cli is the terminal front end of the browse client. Each
// invocation runs one command against the persisted session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"moviehub/internal/client/api"
	"moviehub/internal/client/catalog"
	"moviehub/internal/client/config"
	"moviehub/internal/client/session"
	"moviehub/internal/client/storage"
	"moviehub/internal/core/domain"

	"go.uber.org/zap"
)

const usage = `usage: moviehub [flags] <command>

commands:
  signup              create an account and sign in
  login               sign in
  logout              forget the signed-in user
  whoami              show the navigation state
  browse [-html]      load every genre section
  preview <genre> <n> show the preview of the n-th movie of a genre
`

var errUsage = errors.New("invalid usage")

type App struct {
	cfg     *config.Config
	client  *api.Client
	session *session.Controller
	logger  *zap.Logger

	in  *bufio.Reader
	out io.Writer
}

func NewApp(cfg *config.Config, in io.Reader, out io.Writer, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := api.NewClient(cfg.APIURL, cfg.Timeout, logger)
	store := storage.NewFileStorage(cfg.StoragePath)

	return &App{
		cfg:     cfg,
		client:  client,
		session: session.NewController(client, store, logger),
		logger:  logger,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

// Run restores the session and executes one command.
func (a *App) Run(ctx context.Context, args []string) error {
	if err := a.session.Init(); err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}

	switch args[0] {
	case "signup":
		return a.signup(ctx)
	case "login":
		return a.login(ctx)
	case "logout":
		if err := a.session.Logout(); err != nil {
			return err
		}
		return a.printNav()
	case "whoami":
		return a.printNav()
	case "browse":
		return a.browse(ctx, args[1:])
	case "preview":
		return a.preview(ctx, args[1:])
	default:
		fmt.Fprint(a.out, usage)
		return errUsage
	}
}

func (a *App) signup(ctx context.Context) error {
	a.session.OpenSignup()

	name, err := readLine(a.in, a.out, "Name: ")
	if err != nil {
		return err
	}
	email, err := readLine(a.in, a.out, "Email: ")
	if err != nil {
		return err
	}
	password, err := readSecret(a.in, a.out, "Password: ")
	if err != nil {
		return err
	}

	ok, err := a.session.Signup(ctx, name, email, password)
	if err != nil {
		return err
	}
	return a.report(ok, session.FormSignup)
}

func (a *App) login(ctx context.Context) error {
	a.session.OpenLogin()

	email, err := readLine(a.in, a.out, "Email: ")
	if err != nil {
		return err
	}
	password, err := readSecret(a.in, a.out, "Password: ")
	if err != nil {
		return err
	}

	ok, err := a.session.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return a.report(ok, session.FormLogin)
}

func (a *App) report(ok bool, form session.Form) error {
	if !ok {
		fmt.Fprintf(a.out, "error: %s\n", a.session.FormError(form))
		return nil
	}
	fmt.Fprintln(a.out, a.session.Notice())
	return a.printNav()
}

func (a *App) printNav() error {
	nav := a.session.Nav()
	if nav.Authenticated {
		_, err := fmt.Fprintf(a.out, "%s [%s]\n", nav.Greeting, nav.Action)
		return err
	}
	_, err := fmt.Fprintf(a.out, "[%s]\n", nav.Action)
	return err
}

func (a *App) browse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(a.out)
	asHTML := fs.Bool("html", false, "write the page as HTML")
	if err := fs.Parse(args); err != nil {
		return err
	}

	view := catalog.NewViewController(a.client, a.logger, a.cfg.Parallel)
	sections := view.Load(ctx)

	if *asHTML {
		if err := a.session.RenderNav(a.out); err != nil {
			return err
		}
		return catalog.Render(a.out, sections)
	}

	if err := a.printNav(); err != nil {
		return err
	}
	for _, s := range sections {
		fmt.Fprintf(a.out, "\n== %s ==\n", s.Genre.DisplayName)
		if s.State != catalog.StatePopulated {
			fmt.Fprintf(a.out, "  %s\n", s.Message)
			continue
		}
		for i, card := range s.Cards {
			fmt.Fprintf(a.out, "  %2d. %s\n      %s\n", i+1, card.Title, card.PosterURL)
		}
	}
	return nil
}

func (a *App) preview(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}
	genre, ok := domain.GenreByKey(args[0])
	if !ok {
		return fmt.Errorf("unknown genre %q", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 1 {
		return fmt.Errorf("movie number must be a positive integer")
	}

	movies, err := a.client.Movies(ctx, genre.ProviderID)
	if err != nil {
		return fmt.Errorf("load movies: %w", err)
	}
	if n > len(movies) {
		return fmt.Errorf("%s has only %d movies", genre.DisplayName, len(movies))
	}

	p := catalog.Preview(movies[n-1])
	_, err = fmt.Fprintf(a.out, "%s\n\n%s\n\nPlay: %s\n", p.Title, p.Overview, p.VideoURL)
	return err
}

// IsUsageError reports whether err came from bad command-line input.
func IsUsageError(err error) bool {
	return errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp)
}
