package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/itemkeeper/internal/client/api"
	"github.com/dmitrijs2005/itemkeeper/internal/client/config"
	"github.com/dmitrijs2005/itemkeeper/internal/client/cookiejar"
	"github.com/dmitrijs2005/itemkeeper/internal/client/presence"
	"github.com/dmitrijs2005/itemkeeper/internal/client/session"
	"github.com/dmitrijs2005/itemkeeper/internal/common"
	"github.com/dmitrijs2005/itemkeeper/internal/logging"
)

var errSessionExpired = errors.New("session expired, please log in again")

// logOutput is where diagnostics go; tests silence it.
var logOutput io.Writer = os.Stderr

type App struct {
	config   *config.Config
	logger   logging.Logger
	in       *bufio.Reader
	out      io.Writer
	jar      *cookiejar.Jar
	store    *session.Store
	api      *api.Client
	presence *presence.Presence
}

func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, logOutput)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.Open(ctx, c.SessionDBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	store := session.NewStore()
	client := api.New(c.ServerURL, store, jar, nil, c.RequestTimeout, logger)

	return &App{
		config:   c,
		logger:   logger,
		in:       bufio.NewReader(in),
		out:      out,
		jar:      jar,
		store:    store,
		api:      client,
		presence: presence.New(store, client.Refresh, c.RefreshLeeway, logger),
	}, nil
}

func (a *App) Close() error {
	return a.jar.Close()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// requireLogin is the gate in front of every protected command.
func (a *App) requireLogin(ctx context.Context) error {
	if !a.presence.Ensure(ctx) {
		return errSessionExpired
	}
	return nil
}

// ask returns v, or prompts for it when v is empty.
func (a *App) ask(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return GetSimpleText(a.in, prompt, a.out)
}

// askPassword prompts without echo and hands back a string; the raw bytes
// are wiped.
func (a *App) askPassword(prompt string) (string, error) {
	pw, err := GetPassword(a.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// describe turns client errors into what the user sees. Server messages are
// shown verbatim; an auth failure that survived the refresh means the
// session is gone.
func describe(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *api.Error
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return errSessionExpired
	case errors.As(err, &apiErr):
		return errors.New(apiErr.Error())
	case errors.Is(err, api.ErrUnavailable):
		return errors.New("server unavailable, try again later")
	default:
		return err
	}
}
