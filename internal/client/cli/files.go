package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/client/transfer"
	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/errx"
	"github.com/dustin/go-humanize"
)

// fileOps are the per-file verbs shared by the owner and admin scopes.
type fileOps interface {
	Download(ctx context.Context, id int64) (*models.Payload, error)
	Preview(ctx context.Context, id int64) (*models.Payload, error)
	UpdateMetadata(ctx context.Context, id int64, update models.FileUpdate) (*models.FileRecord, error)
	Delete(ctx context.Context, id int64) error
	CreateShareLink(ctx context.Context, id int64) (models.ShareLink, error)
	RevokeShareLink(ctx context.Context, id int64) error
}

// adminFiles adapts the admin per-user verbs to fileOps.
type adminFiles struct {
	admin interface {
		DownloadUserFile(ctx context.Context, fileID int64) (*models.Payload, error)
		PreviewUserFile(ctx context.Context, fileID int64) (*models.Payload, error)
		UpdateUserFile(ctx context.Context, fileID int64, update models.FileUpdate) (*models.FileRecord, error)
		DeleteUserFile(ctx context.Context, fileID int64) error
		CreateUserShareLink(ctx context.Context, fileID int64) (models.ShareLink, error)
		RevokeUserShareLink(ctx context.Context, fileID int64) error
	}
}

func (f adminFiles) Download(ctx context.Context, id int64) (*models.Payload, error) {
	return f.admin.DownloadUserFile(ctx, id)
}

func (f adminFiles) Preview(ctx context.Context, id int64) (*models.Payload, error) {
	return f.admin.PreviewUserFile(ctx, id)
}

func (f adminFiles) UpdateMetadata(ctx context.Context, id int64, u models.FileUpdate) (*models.FileRecord, error) {
	return f.admin.UpdateUserFile(ctx, id, u)
}

func (f adminFiles) Delete(ctx context.Context, id int64) error {
	return f.admin.DeleteUserFile(ctx, id)
}

func (f adminFiles) CreateShareLink(ctx context.Context, id int64) (models.ShareLink, error) {
	return f.admin.CreateUserShareLink(ctx, id)
}

func (f adminFiles) RevokeShareLink(ctx context.Context, id int64) error {
	return f.admin.RevokeUserShareLink(ctx, id)
}

// ops returns the verbs for the files currently shown: the admin scope
// while browsing another user, the owner scope otherwise.
func (a *App) ops() fileOps {
	if a.browsing() != nil {
		return adminFiles{admin: a.admin}
	}
	return a.files
}

// argID reads a numeric id from args[0] or, when absent, from a prompt.
func (a *App) argID(args []string, field, prompt string) (int64, error) {
	raw := ""
	if len(args) > 0 {
		raw = args[0]
	} else {
		var err error
		if raw, err = getSimpleText(a.reader, prompt, a.out); err != nil {
			return 0, err
		}
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errx.Validation(map[string][]string{field: {"Must be a positive number"}})
	}
	return id, nil
}

// describeFile names a file for confirmations, using the last listing.
func (a *App) describeFile(id int64) string {
	f, ok := a.knownFile(id)
	if !ok {
		return fmt.Sprintf("file #%d", id)
	}
	return fmt.Sprintf("%q", f.OriginalName)
}

// List prints the files of the principal, or of the browsed user. Every
// call goes to the server.
func (a *App) List(ctx context.Context, args []string) error {
	if target := a.browsing(); target != nil {
		files, summary, err := a.admin.ListUserFiles(ctx, target.ID)
		if err != nil {
			return err
		}
		a.rememberFiles(files)
		fmt.Fprintf(a.out, "Files of %s\n", target.Username)
		a.printFiles(files)
		a.printSummary(summary)
		return nil
	}

	files, err := a.files.List(ctx, models.ListFilter{Search: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	a.rememberFiles(files)
	a.printFiles(files)
	a.printSummary(models.Summarize(files))
	return nil
}

// Upload sends a local file. The rest of the line is the comment; without
// one, a comment is prompted for and may be left empty.
func (a *App) Upload(ctx context.Context, args []string) error {
	if a.browsing() != nil {
		return errx.Validation(map[string][]string{"file": {"Uploads always go to your own storage; leave the user view first"}})
	}

	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		var err error
		if path, err = getSimpleText(a.reader, "Enter path of the file to upload", a.out); err != nil {
			return err
		}
	}
	if path == "" {
		return errx.Validation(map[string][]string{"file": {"Choose a file to upload"}})
	}

	comment := ""
	if len(args) > 1 {
		comment = strings.Join(args[1:], " ")
	} else {
		var err error
		if comment, err = getSimpleText(a.reader, "Enter comment (optional)", a.out); err != nil {
			return err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return errx.Validation(map[string][]string{"file": {err.Error()}})
	}
	defer f.Close()

	rec, err := a.files.Upload(ctx, filepath.Base(path), f, comment)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s (id %d, %s)\n", rec.OriginalName, rec.ID, humanize.IBytes(rec.Size))
	return nil
}

// Download saves a file into the download directory.
func (a *App) Download(ctx context.Context, args []string) error {
	id, err := a.argID(args, "file_id", "Enter file id to download")
	if err != nil {
		return err
	}
	p, err := a.ops().Download(ctx, id)
	if err != nil {
		return err
	}
	path, err := transfer.Save(a.downloadDir, "", p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved to %s\n", path)
	return nil
}

// Preview fetches a file inline and holds it until the next preview or
// close.
func (a *App) Preview(ctx context.Context, args []string) error {
	id, err := a.argID(args, "file_id", "Enter file id to preview")
	if err != nil {
		return err
	}
	p, err := a.ops().Preview(ctx, id)
	if err != nil {
		return err
	}
	pr, err := a.viewer.Show(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Preview of %s (%s, %s): %s\n", pr.Name, pr.ContentType, humanize.IBytes(uint64(pr.Size)), pr.Path)
	return nil
}

// ClosePreview releases the held preview.
func (a *App) ClosePreview(ctx context.Context) error {
	if _, ok := a.viewer.Current(); !ok {
		fmt.Fprintln(a.out, "No preview open")
		return nil
	}
	a.viewer.Release(ctx)
	fmt.Fprintln(a.out, "Preview closed")
	return nil
}

// Edit renames a file and/or changes its comment. Empty answers keep the
// current value; "-" clears the comment.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.argID(args, "file_id", "Enter file id to edit")
	if err != nil {
		return err
	}

	namePrompt, commentPrompt := "New name (empty keeps the current one)", "New comment (empty keeps, - clears)"
	if f, ok := a.knownFile(id); ok {
		namePrompt = fmt.Sprintf("New name [%s]", f.OriginalName)
		commentPrompt = fmt.Sprintf("New comment [%s] (- clears)", f.CommentText())
	}

	name, err := getSimpleText(a.reader, namePrompt, a.out)
	if err != nil {
		return err
	}
	comment, err := getSimpleText(a.reader, commentPrompt, a.out)
	if err != nil {
		return err
	}

	var u models.FileUpdate
	if name != "" {
		u.OriginalName = &name
	}
	switch comment {
	case "":
	case "-":
		u.Comment = common.Ptr("")
	default:
		u.Comment = &comment
	}

	rec, err := a.ops().UpdateMetadata(ctx, id, u)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated %s\n", rec.OriginalName)
	return nil
}

// Delete removes a file after confirmation naming it (and its owner when
// browsing another user).
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.argID(args, "file_id", "Enter file id to delete")
	if err != nil {
		return err
	}

	question := "Delete " + a.describeFile(id) + "?"
	if t := a.browsing(); t != nil {
		question = fmt.Sprintf("Delete %s of user %s?", a.describeFile(id), t.Username)
	}
	ok, err := confirm(a.reader, question, a.out)
	if err != nil || !ok {
		return err
	}

	if err := a.ops().Delete(ctx, id); err != nil {
		return err
	}
	a.forgetFile(id)
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// Share creates (or returns the existing) public link.
func (a *App) Share(ctx context.Context, args []string) error {
	id, err := a.argID(args, "file_id", "Enter file id to share")
	if err != nil {
		return err
	}
	link, err := a.ops().CreateShareLink(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Public link: %s\n", link.PublicURL)
	return nil
}

// Unshare revokes the public link.
func (a *App) Unshare(ctx context.Context, args []string) error {
	id, err := a.argID(args, "file_id", "Enter file id to unshare")
	if err != nil {
		return err
	}
	if err := a.ops().RevokeShareLink(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Public link revoked")
	return nil
}

// Public shows a shared file by link or identifier, without a session.
// "public <link> download" also saves it.
func (a *App) Public(ctx context.Context, args []string) error {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	} else {
		var err error
		if ref, err = getSimpleText(a.reader, "Enter public link", a.out); err != nil {
			return err
		}
	}

	info, err := a.files.GetByUniqueIdentifier(ctx, ref)
	if errx.IsKind(err, errx.KindNotFound) {
		fmt.Fprintln(a.out, "File not found or the link is invalid")
		return nil
	}
	if err != nil {
		return err
	}
	a.printPublic(info)

	if len(args) < 2 || args[1] != "download" {
		return nil
	}
	p, err := a.files.DownloadPublic(ctx, ref)
	if err != nil {
		return err
	}
	path, err := transfer.Save(a.downloadDir, info.OriginalName, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved to %s\n", path)
	return nil
}
