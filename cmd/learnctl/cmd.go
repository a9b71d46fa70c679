// AngelaMos | 2026
// cmd.go

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/carterperez-dev/learnhub/internal/store"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	st  *store.Store
	out io.Writer
	now func() time.Time
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  signup -email EMAIL -name NAME [-role student|instructor]  - create an account and log in")
	fmt.Fprintln(cli.out, "  login -email EMAIL                                        - start a session")
	fmt.Fprintln(cli.out, "  logout                                                    - end the session")
	fmt.Fprintln(cli.out, "  whoami                                                    - show the current user")
	fmt.Fprintln(cli.out, "  courses                                                   - list the catalogue")
	fmt.Fprintln(cli.out, "  enroll -course ID                                         - enroll in a course")
	fmt.Fprintln(cli.out, "  complete -course ID -lesson ID                            - mark a lesson finished")
	fmt.Fprintln(cli.out, "  note -course ID -lesson ID -at MM:SS -text TEXT           - add a timestamped note")
	fmt.Fprintln(cli.out, "  cheatsheet -course ID                                     - print notes as a cheat sheet")
	fmt.Fprintln(cli.out, "  certify -course ID                                        - issue a course certificate")
	fmt.Fprintln(cli.out, "  pause                                                     - pause or resume the subscription")
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()
	name, rest := args[0], args[1:]

	switch name {
	case "signup":
		fs := cli.newFlagSet(name)
		email := fs.String("email", "", "account email. The password will be prompted next.")
		fullName := fs.String("name", "", "display name")
		role := fs.String("role", store.RoleStudent, "student or instructor")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(fs)
		if err != nil {
			return err
		}
		return cli.signup(ctx, store.NewUser{Email: *email, Password: pwd, Name: *fullName, Role: *role})

	case "login":
		fs := cli.newFlagSet(name)
		email := fs.String("email", "", "account email. The password will be prompted next.")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(fs)
		if err != nil {
			return err
		}
		return cli.login(ctx, *email, pwd)

	case "logout":
		if err := cli.st.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Logged out.")
		return nil

	case "whoami":
		return cli.whoami(ctx)

	case "courses":
		return cli.courses(ctx)

	case "enroll", "cheatsheet", "certify":
		fs := cli.newFlagSet(name)
		courseID := fs.String("course", "", "course id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *courseID == "" {
			fs.Usage()
			return errHelp
		}
		switch name {
		case "enroll":
			return cli.enroll(ctx, *courseID)
		case "cheatsheet":
			return cli.cheatSheet(ctx, *courseID)
		default:
			return cli.certify(ctx, *courseID)
		}

	case "note":
		fs := cli.newFlagSet(name)
		courseID := fs.String("course", "", "course id")
		lessonID := fs.String("lesson", "", "lesson id")
		at := fs.String("at", "0", "playback position as MM:SS or seconds")
		text := fs.String("text", "", "note text")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *courseID == "" || *lessonID == "" || *text == "" {
			fs.Usage()
			return errHelp
		}
		seconds, err := parseTimestamp(*at)
		if err != nil {
			return err
		}
		return cli.note(ctx, store.NewNote{
			CourseID:  *courseID,
			LessonID:  *lessonID,
			Timestamp: seconds,
			Content:   *text,
		})

	case "complete":
		fs := cli.newFlagSet(name)
		courseID := fs.String("course", "", "course id")
		lessonID := fs.String("lesson", "", "lesson id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if *courseID == "" || *lessonID == "" {
			fs.Usage()
			return errHelp
		}
		return cli.complete(ctx, *courseID, *lessonID)

	case "pause":
		return cli.pause(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) signup(ctx context.Context, in store.NewUser) error {
	u, err := cli.st.Signup(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Welcome, %s! Signed up as %s.\n", displayName(u), u.Role)
	return nil
}

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	u, err := cli.st.Login(ctx, email, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s.\n", displayName(u))
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	u, err := cli.st.CurrentUser(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", displayName(u))
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Role:\t%s\n", u.Role)
	fmt.Fprintf(w, "Plan:\t%s (%s)\n", u.Subscription.Plan, u.Subscription.EffectiveStatus(cli.now()))
	fmt.Fprintf(w, "XP:\t%d\n", u.XP)
	fmt.Fprintf(w, "Streak:\t%d\n", u.Streak)
	fmt.Fprintf(w, "Enrolled:\t%d\n", len(u.EnrolledCourseIDs))
	return w.Flush()
}

func (cli *commandLine) courses(ctx context.Context) error {
	courses, err := cli.st.Courses(ctx)
	if err != nil {
		return err
	}
	if len(courses) == 0 {
		fmt.Fprintln(cli.out, "No courses yet.")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDIFFICULTY\tLESSONS")
	for i := range courses {
		c := &courses[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.ID, c.Title, c.Difficulty, c.LessonCount())
	}
	return w.Flush()
}

func (cli *commandLine) enroll(ctx context.Context, courseID string) error {
	u, err := cli.st.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if _, err := cli.st.EnrollUser(ctx, u.ID, courseID); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Enrolled in %s.\n", courseID)
	return nil
}

func (cli *commandLine) complete(ctx context.Context, courseID, lessonID string) error {
	u, err := cli.st.CurrentUser(ctx)
	if err != nil {
		return err
	}
	u, err = cli.st.CompleteLesson(ctx, u.ID, courseID, lessonID, cli.now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Lesson complete. XP: %d.\n", u.XP)
	return nil
}

func (cli *commandLine) note(ctx context.Context, in store.NewNote) error {
	u, err := cli.st.CurrentUser(ctx)
	if err != nil {
		return err
	}
	n, err := cli.st.AddNote(ctx, u.ID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Saved note at %s.\n", store.FormatTimestamp(n.Timestamp))
	return nil
}

func (cli *commandLine) cheatSheet(ctx context.Context, courseID string) error {
	u, err := cli.st.CurrentUser(ctx)
	if err != nil {
		return err
	}
	text, err := cli.st.ExportCheatSheet(ctx, u.ID, courseID)
	if err != nil {
		return err
	}
	fmt.Fprint(cli.out, text)
	return nil
}

func (cli *commandLine) certify(ctx context.Context, courseID string) error {
	u, err := cli.st.CurrentUser(ctx)
	if err != nil {
		return err
	}
	cert, err := cli.st.IssueCertificate(ctx, u.ID, courseID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Certificate %s: %s, issued %s.\n",
		cert.ID, cert.CourseTitle, cert.IssuedAt.Format("2006-01-02"))
	return nil
}

func (cli *commandLine) pause(ctx context.Context) error {
	u, err := cli.st.CurrentUser(ctx)
	if err != nil {
		return err
	}
	sub, err := cli.st.ToggleSubscriptionPause(ctx, u.ID, cli.now())
	if err != nil {
		return err
	}
	if sub.Status == store.SubscriptionPaused && sub.PausedUntil != nil {
		fmt.Fprintf(cli.out, "Subscription paused until %s.\n", sub.PausedUntil.Format("2006-01-02"))
		return nil
	}
	fmt.Fprintln(cli.out, "Subscription resumed.")
	return nil
}

func displayName(u *store.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// parseTimestamp accepts "90" or "1:30".
func parseTimestamp(s string) (int, error) {
	s = strings.TrimSpace(s)
	mins, secs, found := strings.Cut(s, ":")
	if !found {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		return n, nil
	}

	m, err := strconv.Atoi(mins)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	sec, err := strconv.Atoi(secs)
	if err != nil || sec < 0 || sec >= 60 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return m*60 + sec, nil
}
