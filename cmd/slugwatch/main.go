// Slugwatch is a terminal client that checks slug availability while you
// type, against a running slugshare server.
package main

import (
	"errors"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/atinyakov/slugshare/internal/app/service"
	"github.com/atinyakov/slugshare/internal/slugcheck"
)

type options struct {
	server    string
	token     string
	secret    string
	user      string
	exclude   string
	minLength int
	debounce  time.Duration
}

func parseFlags(args []string) (*options, error) {
	var o options

	fs := pflag.NewFlagSet("slugwatch", pflag.ContinueOnError)
	fs.StringVar(&o.server, "server", "http://localhost:8080", "slugshare base url")
	fs.StringVar(&o.token, "token", os.Getenv("SLUGSHARE_TOKEN"), "bearer token")
	fs.StringVar(&o.secret, "secret", "", "mint a development token with this jwt secret")
	fs.StringVar(&o.user, "user", "slugwatch", "user id for a minted token")
	fs.StringVar(&o.exclude, "exclude", "", "slug currently owned by the record being edited")
	fs.IntVar(&o.minLength, "min-length", slugcheck.DefaultMinLength, "characters before a check is made")
	fs.DurationVar(&o.debounce, "debounce", slugcheck.DefaultDebounce, "pause before a check is sent")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if o.token == "" && o.secret != "" {
		tok, err := service.NewAuth(o.secret).BuildJWTString(o.user)
		if err != nil {
			return nil, err
		}
		o.token = tok
	}
	if o.token == "" {
		return nil, errors.New("a token is required: --token, SLUGSHARE_TOKEN or --secret")
	}

	return &o, nil
}

// newProgram wires a Checker over src into a bubbletea program. The model
// calls Set from the event loop; transitions come back through Send on the
// Checker's own delivery goroutine.
func newProgram(src slugcheck.Source, o *options, popts ...tea.ProgramOption) (*tea.Program, *slugcheck.Checker) {
	var program *tea.Program

	checker := slugcheck.NewChecker(src, slugcheck.Options{
		MinLength: o.minLength,
		Debounce:  o.debounce,
		OnChange: func(s slugcheck.State) {
			program.Send(stateMsg(s))
		},
	}, zap.NewNop())

	program = tea.NewProgram(newModel(checker, o.exclude, o.minLength), popts...)
	return program, checker
}

func run() error {
	o, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	program, checker := newProgram(slugcheck.NewHTTPSource(o.server, o.token), o)
	defer checker.Close()

	_, err = program.Run()
	return err
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("slugwatch: %v", err)
	}
}
