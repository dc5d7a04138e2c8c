package identityctl

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/dmitrijs2005/tasklist/internal/server/models"
	"github.com/dmitrijs2005/tasklist/internal/server/services"
)

var ErrUsage = errors.New("usage: identityctl [-d dsn] register <email> [display name] | passwd <id> | delete <id> | list")

// Credentials is the part of services.CredentialService the CLI drives.
type Credentials interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicIdentity, error)
	ChangePassword(ctx context.Context, id, newPassword string) error
	DeleteIdentity(ctx context.Context, id string) error
	ListIdentities(ctx context.Context) ([]*models.PublicIdentity, error)
}

type App struct {
	creds Credentials
	in    *bufio.Reader
	out   io.Writer
}

func NewApp(creds Credentials, in io.Reader, out io.Writer) *App {
	return &App{creds: creds, in: bufio.NewReader(in), out: out}
}

// CommandArgs strips the global flags understood by the server config from
// args and returns the subcommand and its arguments.
func CommandArgs(args []string) []string {
	fs := flag.NewFlagSet("identityctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, name := range []string{"c", "config", "a", "m", "d", "s", "t", "w", "l"} {
		fs.String(name, "", "")
	}
	if err := fs.Parse(args); err != nil {
		return nil
	}
	return fs.Args()
}

// Run executes one subcommand.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		if len(rest) < 1 {
			return ErrUsage
		}
		return a.register(ctx, rest[0], strings.Join(rest[1:], " "))
	case "passwd":
		if len(rest) != 1 {
			return ErrUsage
		}
		return a.passwd(ctx, rest[0])
	case "delete":
		if len(rest) != 1 {
			return ErrUsage
		}
		return a.delete(ctx, rest[0])
	case "list":
		return a.list(ctx)
	case "help":
		_, err := fmt.Fprintln(a.out, ErrUsage.Error())
		return err
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, ErrUsage)
	}
}

func (a *App) register(ctx context.Context, email, displayName string) error {
	password, err := getNewPassword(a.in, a.out)
	if err != nil {
		return err
	}

	identity, err := a.creds.Register(ctx, services.RegisterInput{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return describe(err)
	}

	_, err = fmt.Fprintf(a.out, "registered %s (%s)\n", identity.Email, identity.ID)
	return err
}

func (a *App) passwd(ctx context.Context, id string) error {
	password, err := getNewPassword(a.in, a.out)
	if err != nil {
		return err
	}

	if err := a.creds.ChangePassword(ctx, id, password); err != nil {
		return describe(err)
	}

	_, err = fmt.Fprintf(a.out, "password changed for %s\n", id)
	return err
}

func (a *App) delete(ctx context.Context, id string) error {
	if err := a.creds.DeleteIdentity(ctx, id); err != nil {
		return describe(err)
	}

	_, err := fmt.Fprintf(a.out, "deleted %s\n", id)
	return err
}

func (a *App) list(ctx context.Context) error {
	all, err := a.creds.ListIdentities(ctx)
	if err != nil {
		return describe(err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tDISPLAY NAME\tCREATED")
	for _, i := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", i.ID, i.Email, i.DisplayName, i.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

// describe adds a retry hint to transient failures.
func describe(err error) error {
	if common.IsRetryable(err) {
		return fmt.Errorf("%w (temporary, try again)", err)
	}
	return err
}
