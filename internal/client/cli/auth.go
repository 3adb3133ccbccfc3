package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/services"
	"github.com/dmitrijs2005/mycloud/internal/common"
)

// getSimpleText, getPassword and confirm are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

// notifyInterrupt is a test seam for signal.NotifyContext.
var notifyInterrupt = func(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// Register prompts for a profile and creates the account. It does not log
// in.
func (a *App) Register(ctx context.Context) error {
	a.clearStaleError(ctx)

	var p models.Profile
	var err error

	prompts := []struct {
		dst    *string
		prompt string
	}{
		{&p.Username, "Enter username"},
		{&p.FirstName, "Enter first name (optional)"},
		{&p.LastName, "Enter last name (optional)"},
		{&p.Email, "Enter email"},
	}
	for _, q := range prompts {
		if *q.dst, err = getSimpleText(a.reader, q.prompt, a.out); err != nil {
			return err
		}
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	again, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(again)
	p.Password, p.PasswordConfirm = string(password), string(again)

	if err := a.auth.Register(ctx, p); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account %s created, you can log in now\n", p.Username)
	return nil
}

// Login authenticates. The username comes from args or a prompt that
// offers the last used name. Ctrl+C abandons the attempt.
func (a *App) Login(ctx context.Context, args []string) error {
	a.clearStaleError(ctx)

	username := ""
	if len(args) > 0 {
		username = args[0]
	} else {
		last := a.auth.LastUsername(ctx)
		prompt := "Enter username"
		if last != "" {
			prompt = fmt.Sprintf("Enter username [%s]", last)
		}
		var err error
		if username, err = getSimpleText(a.reader, prompt, a.out); err != nil {
			return err
		}
		if username == "" {
			username = last
		}
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}

	stop := a.cancelOnInterrupt(ctx)
	res, err := a.auth.Login(ctx, username, password)
	stop()

	switch res.Outcome {
	case services.OutcomeFulfilled:
		fmt.Fprintf(a.out, "Welcome, %s!\n", res.Principal.DisplayName())
		return nil
	case services.OutcomeIgnored:
		fmt.Fprintln(a.out, "Login cancelled")
		return nil
	}
	if err != nil {
		return err
	}
	return res.Err
}

// clearStaleError drops the error left by a previous attempt so it does not
// outlive the new prompt.
func (a *App) clearStaleError(ctx context.Context) {
	if a.auth.State().LastError == nil {
		return
	}
	if err := a.auth.ClearError(ctx); err != nil {
		a.logger.Debug(ctx, "clear auth error", "error", err)
	}
}

// cancelOnInterrupt cancels the pending login when the user presses Ctrl+C.
// The returned func stops watching.
func (a *App) cancelOnInterrupt(ctx context.Context) func() {
	sig, stopSignal := notifyInterrupt(ctx)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		select {
		case <-done:
		case <-sig.Done():
			select {
			case <-done:
			default:
				if err := a.auth.Cancel(context.WithoutCancel(ctx)); err != nil {
					a.logger.Debug(ctx, "cancel login", "error", err)
				}
			}
		}
	}()

	return func() {
		close(done)
		stopSignal()
		<-finished
	}
}

// Logout ends the session locally; the server is told in the background.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the current principal.
func (a *App) WhoAmI(ctx context.Context) error {
	p := a.view.Principal()
	if p == nil {
		return errLoginRequired
	}
	a.printPrincipal(p)
	return nil
}
