package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	report(err error)

	Register(ctx context.Context) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	List(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Preview(ctx context.Context, args []string) error
	ClosePreview(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Share(ctx context.Context, args []string) error
	Unshare(ctx context.Context, args []string) error
	Public(ctx context.Context, args []string) error

	Users(ctx context.Context) error
	UserFiles(ctx context.Context, args []string) error
	DeleteUser(ctx context.Context, args []string) error
	ToggleAdmin(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, public <link> [download], exit"
	helpOwner     = "Available commands: whoami, (l)ist [search], upload <path> [comment], download <id>, " +
		"preview <id>, close, edit <id>, delete <id>, share <id>, unshare <id>, public <link> [download], logout, exit"
	helpAdmin = "Admin commands: users, userfiles [user id], deluser <id>, toggleadmin <id>, stats"
)

var (
	errLoginRequired = errors.New("please log in first")
	errAdminOnly     = errors.New("administrator rights required")
)

// runREPL reads commands from reader until EOF or "exit"/"quit". The first
// token of a line is the command, the rest are its arguments. Errors
// returned by handlers are reported and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mycloud %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if ctx.Err() != nil {
			return
		}
		a.report(dispatch(ctx, a, cmd, args))
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		switch {
		case a.isAdmin():
			printlnFn(helpOwner)
			printlnFn(helpAdmin)
		case a.isLoggedIn():
			printlnFn(helpOwner)
		default:
			printlnFn(helpAnonymous)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx, args)
	case "public":
		return a.Public(ctx, args)
	}

	if owner, ok := ownerCommands[cmd]; ok {
		if !a.isLoggedIn() {
			return errLoginRequired
		}
		return owner(ctx, a, args)
	}

	if admin, ok := adminCommands[cmd]; ok {
		if !a.isAdmin() {
			return errAdminOnly
		}
		return admin(ctx, a, args)
	}

	printlnFn("Unknown command:", cmd)
	return nil
}

type command func(ctx context.Context, a execIface, args []string) error

var ownerCommands = map[string]command{
	"logout":   func(ctx context.Context, a execIface, _ []string) error { return a.Logout(ctx) },
	"whoami":   func(ctx context.Context, a execIface, _ []string) error { return a.WhoAmI(ctx) },
	"l":        func(ctx context.Context, a execIface, args []string) error { return a.List(ctx, args) },
	"list":     func(ctx context.Context, a execIface, args []string) error { return a.List(ctx, args) },
	"upload":   func(ctx context.Context, a execIface, args []string) error { return a.Upload(ctx, args) },
	"download": func(ctx context.Context, a execIface, args []string) error { return a.Download(ctx, args) },
	"preview":  func(ctx context.Context, a execIface, args []string) error { return a.Preview(ctx, args) },
	"close":    func(ctx context.Context, a execIface, _ []string) error { return a.ClosePreview(ctx) },
	"edit":     func(ctx context.Context, a execIface, args []string) error { return a.Edit(ctx, args) },
	"delete":   func(ctx context.Context, a execIface, args []string) error { return a.Delete(ctx, args) },
	"share":    func(ctx context.Context, a execIface, args []string) error { return a.Share(ctx, args) },
	"unshare":  func(ctx context.Context, a execIface, args []string) error { return a.Unshare(ctx, args) },
}

var adminCommands = map[string]command{
	"users":       func(ctx context.Context, a execIface, _ []string) error { return a.Users(ctx) },
	"userfiles":   func(ctx context.Context, a execIface, args []string) error { return a.UserFiles(ctx, args) },
	"deluser":     func(ctx context.Context, a execIface, args []string) error { return a.DeleteUser(ctx, args) },
	"toggleadmin": func(ctx context.Context, a execIface, args []string) error { return a.ToggleAdmin(ctx, args) },
	"stats":       func(ctx context.Context, a execIface, _ []string) error { return a.Stats(ctx) },
}
