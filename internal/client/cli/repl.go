package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	println(args ...any)
	report(err error)
	Login(ctx context.Context, args []string) error
	Register(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Recover(ctx context.Context, args []string) error
	WhoAmI(ctx context.Context, args []string) error
	Profile(ctx context.Context, args []string) error
	Passwd(ctx context.Context, args []string) error
	Goto(ctx context.Context, args []string) error
	Results(ctx context.Context, args []string) error
	Labs(ctx context.Context, args []string) error
	Analyses(ctx context.Context, args []string) error
	Appointments(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Users(ctx context.Context, args []string) error
	ResetData(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: login [email], register, recover, goto <path>, exit"
	helpLoggedIn  = "Available commands: whoami, profile, passwd, goto <path>, results, download <id> <file>, labs, analyses, appointments, users, reset-data, logout, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit", and
// dispatches them to a. Command errors are reported and never end the loop.
// Prompts read from the same reader, so lines are consumed one at a time.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		a.println(fmt.Sprintf("lab %s>", statusFn()))
		if ctx.Err() != nil {
			return
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		err = nil
		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				a.println(helpLoggedIn)
			} else {
				a.println(helpAnonymous)
			}
		case "login":
			err = a.Login(ctx, args)
		case "register":
			err = a.Register(ctx, args)
		case "logout":
			err = a.Logout(ctx, args)
		case "recover":
			err = a.Recover(ctx, args)
		case "whoami":
			err = a.WhoAmI(ctx, args)
		case "profile":
			err = a.Profile(ctx, args)
		case "passwd":
			err = a.Passwd(ctx, args)
		case "goto", "cd":
			err = a.Goto(ctx, args)
		case "results":
			err = a.Results(ctx, args)
		case "labs":
			err = a.Labs(ctx, args)
		case "analyses":
			err = a.Analyses(ctx, args)
		case "appointments":
			err = a.Appointments(ctx, args)
		case "download":
			err = a.Download(ctx, args)
		case "users":
			err = a.Users(ctx, args)
		case "reset-data":
			err = a.ResetData(ctx, args)
		case "exit", "quit":
			a.println("Bye!")
			return
		default:
			a.println("Unknown command:", cmd)
		}
		a.report(err)
	}
}
