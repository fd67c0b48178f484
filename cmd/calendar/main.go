// Command calendar renders the availability calendar in a terminal and,
// with --edit, changes days through the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bassista/studio_calendar/internal/calendar"
	"github.com/bassista/studio_calendar/internal/client"
	"github.com/bassista/studio_calendar/internal/logger"
	"github.com/bassista/studio_calendar/internal/repository"
	"github.com/spf13/pflag"
)

const passwordEnv = "STUDIO_CAL_AUTH_PASSWORD"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, time.Now); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		logger.WithComponent("calendar-cli").Fatal(err)
	}
}

type options struct {
	server   string
	locale   string
	edit     bool
	mode     string
	user     string
	password string
	offset   int
	clicks   []string
	drags    []string
}

func parseFlags(args []string, out io.Writer) (options, error) {
	var o options
	fs := pflag.NewFlagSet("calendar", pflag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&o.server, "server", "http://localhost:4000", "base URL of the availability server")
	fs.StringVar(&o.locale, "locale", "fr", "labels locale (fr, en)")
	fs.BoolVar(&o.edit, "edit", false, "open the editable admin view")
	fs.StringVar(&o.mode, "mode", string(calendar.ModeCycle), "editing mode (cycle, force-available, force-unavailable, force-pending)")
	fs.StringVar(&o.user, "user", "admin", "admin username")
	fs.StringVar(&o.password, "password", "", "admin password (default $"+passwordEnv+")")
	fs.IntVar(&o.offset, "offset", 0, "months to move from the current month (negative goes back)")
	fs.StringSliceVar(&o.clicks, "click", nil, "days to click, YYYY-MM-DD (repeatable)")
	fs.StringSliceVar(&o.drags, "drag", nil, "days to paint in a force mode, YYYY-MM-DD (repeatable)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.password == "" {
		o.password = os.Getenv(passwordEnv)
	}
	return o, nil
}

func run(ctx context.Context, args []string, out io.Writer, now func() time.Time) error {
	o, err := parseFlags(args, out)
	if err != nil {
		return err
	}

	locale, err := calendar.LocaleByName(o.locale)
	if err != nil {
		return err
	}
	mode, err := calendar.ParseMode(o.mode)
	if err != nil {
		return err
	}
	if !o.edit && (len(o.clicks) > 0 || len(o.drags) > 0) {
		return errors.New("--click and --drag need --edit")
	}

	opts := []client.Option{}
	if o.edit {
		opts = append(opts, client.WithCredentials(o.user, o.password))
	}
	api, err := client.New(o.server, opts...)
	if err != nil {
		return err
	}

	editor := calendar.NewEditor(calendar.NewView(o.edit, locale, now), api)
	if err := editor.Load(ctx); err != nil {
		// The page still renders with every day available.
		fmt.Fprintf(out, "warning: %v\n", err)
	}
	editor.SetMode(mode)

	for _, d := range o.clicks {
		key, err := repository.ParseDateKey(d)
		if err != nil {
			return err
		}
		editor.Click(ctx, key)
	}
	for _, d := range o.drags {
		key, err := repository.ParseDateKey(d)
		if err != nil {
			return err
		}
		editor.Drag(ctx, key)
	}

	view := editor.View()
	for i := 0; i < o.offset; i++ {
		view.Next()
	}
	for i := 0; i > o.offset; i-- {
		view.Prev()
	}

	printPage(out, editor.Render())
	return nil
}

var statusMarks = map[repository.Status]string{
	repository.StatusAvailable:   ".",
	repository.StatusUnavailable: "x",
	repository.StatusPending:     "?",
}

// printPage writes each month as a Sunday-first text grid. A trailing "*"
// marks today; past days in read-only views carry no mark.
func printPage(w io.Writer, page calendar.Page) {
	fmt.Fprintln(w, page.Label)
	for _, m := range page.Months {
		fmt.Fprintln(w)
		fmt.Fprintln(w, m.Label)

		var b strings.Builder
		for _, wd := range m.Weekdays {
			fmt.Fprintf(&b, "%-5s", wd)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))

		b.Reset()
		for i, c := range m.Cells {
			b.WriteString(formatCell(c))
			if i%7 == 6 {
				fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
				b.Reset()
			}
		}
		if b.Len() > 0 {
			fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, ". available  x unavailable  ? pending  * today")
}

func formatCell(c calendar.Cell) string {
	if c.Empty {
		return "     "
	}
	mark := " "
	if !c.Past {
		mark = statusMarks[c.Status]
	}
	today := " "
	if c.Today {
		today = "*"
	}
	return fmt.Sprintf("%2d%s%s ", c.Day, mark, today)
}
