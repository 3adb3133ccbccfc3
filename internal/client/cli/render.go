package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/errx"
	"github.com/dustin/go-humanize"
)

const dateLayout = "2006-01-02 15:04"

var fieldLabels = map[string]string{
	"username":          "Username",
	"first_name":        "First name",
	"last_name":         "Last name",
	"email":             "Email",
	"password":          "Password",
	"password_confirm":  "Password confirmation",
	"original_name":     "File name",
	"comment":           "Comment",
	"file":              "File",
	"file_id":           "File id",
	"user_id":           "User id",
	"unique_identifier": "Link",
	"update":            "Update",
}

// report prints err as the user should see it: field errors one per line,
// anything else as a single notification.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	e, ok := errx.As(err)
	if !ok {
		fmt.Fprintln(a.out, "Error:", err)
		return
	}

	if len(e.Fields) > 0 {
		if e.Message != "" {
			fmt.Fprintln(a.out, e.Message)
		}
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(a.out, "  %s: %s\n", label(k), strings.Join(e.Fields[k], "; "))
		}
		return
	}

	fmt.Fprintln(a.out, "Error:", notification(e))
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func notification(e *errx.Error) string {
	if e.Message != "" && e.Kind != errx.KindTransport {
		return e.Message
	}
	switch e.Kind {
	case errx.KindAuthentication:
		return "please log in again"
	case errx.KindAuthorization:
		return "you are not allowed to do that"
	case errx.KindNotFound:
		return "not found"
	case errx.KindTransport:
		if e.Message != "" {
			return "server unavailable: " + e.Message
		}
		return "server unavailable"
	case errx.KindServer:
		return "server error, try again later"
	default:
		return e.Error()
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func formatLastDownload(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return humanize.Time(*t)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) printFiles(files []models.FileRecord) {
	if len(files) == 0 {
		fmt.Fprintln(a.out, "No files")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tUPLOADED\tLAST DOWNLOAD\tSHARED\tCOMMENT")
	for _, f := range files {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.OriginalName, humanize.IBytes(f.Size), formatTime(f.UploadDate),
			formatLastDownload(f.LastDownload), yesNo(f.IsShared()), f.CommentText())
	}
	_ = tw.Flush()
}

func (a *App) printSummary(s models.FileSummary) {
	fmt.Fprintf(a.out, "%d file(s), %s total\n", s.Count, humanize.IBytes(s.TotalSize))
}

func (a *App) printUsers(users []models.User) {
	if len(users) == 0 {
		fmt.Fprintln(a.out, "No users")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tADMIN\tFILES\tSIZE\tJOINED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			u.ID, u.Username, u.DisplayName(), u.Email, yesNo(u.IsAdmin),
			u.FileCount, humanize.IBytes(u.TotalSize), formatTime(u.DateJoined))
	}
	_ = tw.Flush()
}

func (a *App) printStats(s *models.Stats) {
	fmt.Fprintf(a.out, "Users: %d (administrators: %d)\n", s.Totals.TotalUsers, s.Totals.AdminCount)
	fmt.Fprintf(a.out, "Files: %d, storage used: %s\n", s.Totals.TotalFiles, humanize.IBytes(s.Totals.TotalStorageUsed))
	if len(s.Users) == 0 {
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tFILES\tSIZE\tAVERAGE")
	for _, u := range s.Users {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			u.ID, u.Username, u.FileCount, humanize.IBytes(u.TotalSize), humanize.IBytes(u.AverageFileSize()))
	}
	_ = tw.Flush()
}

func (a *App) printPublic(f *models.PublicFile) {
	fmt.Fprintf(a.out, "Name:          %s\n", f.OriginalName)
	fmt.Fprintf(a.out, "Size:          %s\n", humanize.IBytes(f.Size))
	fmt.Fprintf(a.out, "Uploaded:      %s\n", formatTime(f.UploadDate))
	fmt.Fprintf(a.out, "Last download: %s\n", formatLastDownload(f.LastDownload))
	if f.Comment != nil && *f.Comment != "" {
		fmt.Fprintf(a.out, "Comment:       %s\n", *f.Comment)
	}
}

func (a *App) printPrincipal(p *models.Principal) {
	fmt.Fprintf(a.out, "Username: %s\n", p.Username)
	if name := p.DisplayName(); name != p.Username {
		fmt.Fprintf(a.out, "Name:     %s\n", name)
	}
	fmt.Fprintf(a.out, "Email:    %s\n", p.Email)
	fmt.Fprintf(a.out, "Admin:    %s\n", yesNo(p.IsAdmin))
	fmt.Fprintf(a.out, "Joined:   %s\n", formatTime(p.DateJoined))
}
