package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/book-rental-go/library/actions"
	"github.com/AntonStoeckl/book-rental-go/library/shared/core"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/config"
	"github.com/AntonStoeckl/book-rental-go/library/shared/shell/scheduler"
	"github.com/AntonStoeckl/book-rental-go/rentalstore"
)

const (
	jobScanOverdue     = "scan_overdue"
	jobExpireSessions  = "expire_sessions"
	defaultJobTimeout  = 5 * time.Minute
	stdinInputArgument = "-"
)

var (
	errMigrateNeedsPostgres = errors.New("migrate needs one of the postgres adapters")
	errInvalidBook          = errors.New("invalid book")
)

// actionFailedError carries the status an action failure maps to.
type actionFailedError struct {
	status int
	err    error
}

func (e actionFailedError) Error() string {
	return fmt.Sprintf("status %d: %v", e.status, e.err)
}

func (e actionFailedError) Unwrap() error {
	return e.err
}

func runWorker(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	runOnStart := fs.Bool("run-on-start", false, "Run both jobs once before waiting for their schedules")
	jobTimeout := fs.Duration("job-timeout", defaultJobTimeout, "Upper bound of one job run")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	options := []scheduler.Option{
		scheduler.WithLogger(a.logger),
		scheduler.WithJobTimeout(*jobTimeout),
	}
	if a.obs.contextualLogger != nil {
		options = append(options, scheduler.WithContextualLogger(a.obs.contextualLogger))
	}

	s, err := scheduler.New(options...)
	if err != nil {
		return err
	}

	if err := s.Add(jobScanOverdue, cfg.OverdueScanSchedule, a.job(actions.JobsScanOverdue)); err != nil {
		return err
	}

	if err := s.Add(jobExpireSessions, cfg.SessionExpirySchedule, a.job(actions.JobsExpireSessions)); err != nil {
		return err
	}

	if *runOnStart {
		// failures are logged by the scheduler, the schedule still starts
		_ = s.RunNow(ctx, jobExpireSessions)
		_ = s.RunNow(ctx, jobScanOverdue)
	}

	s.Start()
	a.logger.Info("worker started",
		jobScanOverdue, cfg.OverdueScanSchedule,
		jobExpireSessions, cfg.SessionExpirySchedule)

	<-ctx.Done()

	a.logger.Info("shutting down worker")
	s.Stop()

	return nil
}

// job runs a privileged action as the system.
func (a *app) job(name string) scheduler.JobFunc {
	return func(ctx context.Context) error {
		output, err := a.table.Dispatch(ctx, name, actions.SystemCaller, nil)
		if err != nil {
			return err
		}

		a.logger.Info("job result", "action", name, "output", string(output))

		return nil
	}
}

func runAction(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("action", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	user := fs.String("user", "", "ID of the calling user, empty for an anonymous caller")
	privileged := fs.Bool("privileged", false, "Call as a privileged user")
	input := fs.String("input", "", "JSON input of the action, - reads it from stdin")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rental action [flags] <name>")
		return errUsage
	}

	caller, err := parseCaller(*user, *privileged)
	if err != nil {
		return errors.Join(errUsage, err)
	}

	payload, err := readInput(*input, os.Stdin)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	output, err := a.table.Dispatch(ctx, fs.Arg(0), caller, payload)
	if err != nil {
		return actionFailedError{status: a.table.StatusFor(err), err: err}
	}

	_, err = fmt.Fprintln(os.Stdout, string(output))

	return err
}

func runMigrate(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if a.pgStore == nil {
		return errMigrateNeedsPostgres
	}

	if err := a.pgStore.CreateSchema(ctx); err != nil {
		return err
	}

	a.logger.Info("schema created", "adapter", cfg.DBAdapter)

	return nil
}

func runAddBook(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("add-book", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	id := fs.String("id", "", "ID of the book, generated when empty")
	title := fs.String("title", "", "Title")
	author := fs.String("author", "", "Author")
	cover := fs.String("cover", string(core.CoverSoft), "Cover: HARD or SOFT")
	inventory := fs.Int("inventory", 1, "Number of copies")
	dailyFee := fs.String("daily-fee", "", "Rental fee per day, for example 2.50; 0 lends for free")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	book, err := buildBook(*id, *title, *author, *cover, *inventory, *dailyFee)
	if err != nil {
		return errors.Join(errUsage, err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.store.InsertBook(ctx, book); err != nil {
		return err
	}

	a.logger.Info("book added", "book_id", book.ID.String(), "title", book.Title)

	return nil
}

func runRemoveBook(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("remove-book", flag.ContinueOnError)
	bindConfigFlags(fs, &cfg)
	id := fs.String("id", "", "ID of the book")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	bookID, err := uuid.Parse(*id)
	if err != nil {
		return errors.Join(errUsage, fmt.Errorf("%w: id: %w", errInvalidBook, err))
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if err := a.store.DeleteBook(ctx, bookID); err != nil {
		return err
	}

	a.logger.Info("book removed", "book_id", bookID.String())

	return nil
}

func parseCaller(user string, privileged bool) (core.Caller, error) {
	if user == "" {
		if privileged {
			return core.Caller{}, fmt.Errorf("%w: a privileged caller needs a user", core.ErrValidation)
		}

		return core.Caller{}, nil
	}

	userID, err := uuid.Parse(user)
	if err != nil {
		return core.Caller{}, fmt.Errorf("%w: user: %w", core.ErrValidation, err)
	}

	return core.Caller{UserID: userID, Privileged: privileged}, nil
}

func readInput(input string, stdin io.Reader) ([]byte, error) {
	if input != stdinInputArgument {
		return []byte(input), nil
	}

	return io.ReadAll(stdin)
}

func buildBook(id, title, author, cover string, inventory int, dailyFee string) (rentalstore.Book, error) {
	var errs []error

	bookID := uuid.New()
	if id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: id: %w", errInvalidBook, err))
		}
		bookID = parsed
	}

	title = strings.TrimSpace(title)
	if title == "" {
		errs = append(errs, fmt.Errorf("%w: title must not be empty", errInvalidBook))
	}

	format := core.CoverFormat(strings.ToUpper(cover))
	if format != core.CoverHard && format != core.CoverSoft {
		errs = append(errs, fmt.Errorf("%w: cover must be HARD or SOFT", errInvalidBook))
	}

	if inventory < 0 {
		errs = append(errs, fmt.Errorf("%w: inventory must not be negative", errInvalidBook))
	}

	fee, err := decimal.NewFromString(dailyFee)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: daily fee: %w", errInvalidBook, err))
	} else if fee.IsNegative() {
		errs = append(errs, fmt.Errorf("%w: daily fee must not be negative", errInvalidBook))
	}

	if len(errs) > 0 {
		return rentalstore.Book{}, errors.Join(errs...)
	}

	return rentalstore.Book{
		ID:        bookID,
		Title:     title,
		Author:    strings.TrimSpace(author),
		Cover:     string(format),
		Inventory: inventory,
		DailyFee:  fee.Round(2),
	}, nil
}
