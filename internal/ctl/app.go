package ctl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/flagx"
	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/config"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/booklib/internal/server/services"
)

var (
	ErrUsage            = errors.New("usage: libraryctl create-admin -email E [-name N] | set-role -email E -role ADMIN|STUDENT")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

var commandFlags = []string{"-email", "-name", "-role"}

type App struct {
	store  *repomanager.Lazy
	users  *services.UserService
	reader *bufio.Reader
	out    io.Writer
	fd     int
}

func NewApp(c *config.Config) *App {
	logger := logging.NewJSON(os.Stderr, c.LogLevel)
	store := repomanager.NewLazy(c.DatabaseDSN, logger)
	return newApp(store, services.NewUserService(store, auth.NewPasswordHasher(auth.DefaultPasswordCost), logger), os.Stdin, os.Stdout, int(os.Stdin.Fd()))
}

func newApp(store *repomanager.Lazy, users *services.UserService, in io.Reader, out io.Writer, fd int) *App {
	return &App{store: store, users: users, reader: bufio.NewReader(in), out: out, fd: fd}
}

// Run executes one command. args are the process arguments without the
// program name; flags that belong to the server config are ignored.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.store.Close(context.Background())

	cmd, rest := firstCommand(args)

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "display name")
	role := fs.String("role", "", "ADMIN or STUDENT")
	if err := fs.Parse(flagx.FilterArgs(rest, commandFlags)); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	switch cmd {
	case "create-admin":
		return a.createAdmin(ctx, *email, *name)
	case "set-role":
		return a.setRole(ctx, *email, *role)
	default:
		return ErrUsage
	}
}

// firstCommand picks the first argument that is not a flag or a flag value.
func firstCommand(args []string) (string, []string) {
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			continue
		}
		if i > 0 && strings.HasPrefix(args[i-1], "-") && !strings.Contains(args[i-1], "=") {
			continue
		}
		rest := append(append([]string{}, args[:i]...), args[i+1:]...)
		return arg, rest
	}
	return "", args
}

func (a *App) createAdmin(ctx context.Context, email, name string) error {
	if email == "" {
		return ErrUsage
	}

	var err error
	if name == "" {
		if name, err = getSimpleText(a.reader, "Display name", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.fd, "Enter password: ", a.out)
	if err != nil {
		return err
	}
	defer wipe(password)

	repeat, err := getPassword(a.fd, "Repeat password: ", a.out)
	if err != nil {
		return err
	}
	defer wipe(repeat)

	if !bytes.Equal(password, repeat) {
		return ErrPasswordMismatch
	}

	u, err := a.users.CreateAdmin(ctx, services.RegisterInput{Name: name, Email: email, Password: string(password)})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created admin %s (%s)\n", u.Email, u.ID)
	return nil
}

func (a *App) setRole(ctx context.Context, email, role string) error {
	if email == "" || role == "" {
		return ErrUsage
	}

	r, err := models.ParseRole(role)
	if err != nil {
		return err
	}

	u, err := a.users.SetRoleByEmail(ctx, email, r)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s is now %s\n", u.Email, u.Role)
	return nil
}
