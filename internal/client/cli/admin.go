package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/errx"
)

func (a *App) Users(ctx context.Context) error {
	users, err := a.admin.ListUsers(ctx)
	if err != nil {
		return err
	}
	a.rememberUsers(users)
	a.printUsers(users)
	return nil
}

// lookupUser finds id in the last listing, refreshing it once if needed.
func (a *App) lookupUser(ctx context.Context, id int64) (models.User, error) {
	if u, ok := a.knownUser(id); ok {
		return u, nil
	}
	users, err := a.admin.ListUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	a.rememberUsers(users)
	if u, ok := a.knownUser(id); ok {
		return u, nil
	}
	return models.User{}, &errx.Error{Kind: errx.KindNotFound, Message: fmt.Sprintf("user %d not found", id)}
}

// UserFiles enters the file view of another user; file commands then act
// on that user's files. Without an id it returns to the own files.
func (a *App) UserFiles(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if a.browsing() != nil {
			a.setTarget(nil)
			fmt.Fprintln(a.out, "Back to your files")
			return nil
		}
		fmt.Fprintln(a.out, "Usage: userfiles <user id>")
		return nil
	}

	id, err := a.argID(args, "user_id", "")
	if err != nil {
		return err
	}
	u, err := a.lookupUser(ctx, id)
	if err != nil {
		return err
	}
	a.setTarget(&u)
	return a.List(ctx, nil)
}

// DeleteUser removes an account and its files after confirmation.
func (a *App) DeleteUser(ctx context.Context, args []string) error {
	id, err := a.argID(args, "user_id", "Enter user id to delete")
	if err != nil {
		return err
	}
	if !a.admin.CanManage(id) {
		return errx.Validation(map[string][]string{"user_id": {"You cannot delete your own account"}})
	}
	u, err := a.lookupUser(ctx, id)
	if err != nil {
		return err
	}

	ok, err := confirm(a.reader, fmt.Sprintf("Delete user %s and all of their files?", u.Username), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.admin.DeleteUser(ctx, id); err != nil {
		return err
	}

	if t := a.browsing(); t != nil && t.ID == id {
		a.setTarget(nil)
	}
	fmt.Fprintf(a.out, "User %s deleted\n", u.Username)
	return nil
}

// ToggleAdmin grants or revokes administrator rights.
func (a *App) ToggleAdmin(ctx context.Context, args []string) error {
	id, err := a.argID(args, "user_id", "Enter user id")
	if err != nil {
		return err
	}
	u, err := a.lookupUser(ctx, id)
	if err != nil {
		return err
	}
	isAdmin, err := a.admin.ToggleAdmin(ctx, u)
	if err != nil {
		return err
	}
	u.IsAdmin = isAdmin
	a.rememberUsers(append(a.usersExcept(id), u))

	if isAdmin {
		fmt.Fprintf(a.out, "%s is now an administrator\n", u.Username)
	} else {
		fmt.Fprintf(a.out, "%s is no longer an administrator\n", u.Username)
	}
	return nil
}

func (a *App) usersExcept(id int64) []models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.User, 0, len(a.lastUsers))
	for uid, u := range a.lastUsers {
		if uid != id {
			out = append(out, u)
		}
	}
	return out
}

func (a *App) Stats(ctx context.Context) error {
	s, err := a.admin.GetStats(ctx)
	if err != nil {
		return err
	}
	a.printStats(s)
	return nil
}
