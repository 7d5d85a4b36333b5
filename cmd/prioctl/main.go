package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"prioritizacion/internal/dto"
	"prioritizacion/internal/observability/logging"
	impl "prioritizacion/internal/service/impl"
	"prioritizacion/internal/spreadsheet"
	"prioritizacion/internal/store"
	pkgdb "prioritizacion/pkg/db"

	"github.com/google/uuid"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	slog.SetDefault(logging.NewLogger(logging.Config{
		ServiceName: "prioctl",
		Environment: getenv("ENVIRONMENT", "development"),
		Level:       getenv("LOG_LEVEL", "warn"),
		Output:      os.Stderr,
	}))

	var err error
	switch cmd {
	case "import":
		err = runImport(args)
	case "campaigns":
		err = runCampaigns(args)
	case "create-campaign":
		err = runCreateCampaign(args)
	case "export":
		err = runExport(args)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  import           Import a workbook of applicants and positions")
	fmt.Fprintln(os.Stderr, "  campaigns        List campaigns")
	fmt.Fprintln(os.Stderr, "  create-campaign  Create a campaign")
	fmt.Fprintln(os.Stderr, "  export           Export a campaign's rankings and access codes")
	os.Exit(2)
}

func openStore(dsn string) (*store.Store, func(), error) {
	gdb, err := pkgdb.OpenGorm(pkgdb.Config{DSN: dsn})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return store.New(gdb), closeFn, nil
}

func dsnFlag(fs *flag.FlagSet) *string {
	return fs.String("db", getenv("DATABASE_URL", ""), "postgres DSN (defaults to DATABASE_URL)")
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runImport(args []string) error {
	fs := newFlagSet("import")
	dsn := dsnFlag(fs)
	file := fs.String("file", "", "path to the .xlsx workbook")
	campaign := fs.String("campaign", "", "default campaign UUID for rows without one")
	ttl := fs.Duration("token-ttl", impl.DefaultTokenTTL, "lifetime of newly issued access codes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	req := dto.ImportRequest{
		FileName:    filepath.Base(*file),
		ContentType: spreadsheet.MIMEXLSX,
		Data:        data,
	}
	if strings.EqualFold(filepath.Ext(*file), ".xls") {
		req.ContentType = spreadsheet.MIMEXLS
	}
	if *campaign != "" {
		id, err := uuid.Parse(*campaign)
		if err != nil {
			return fmt.Errorf("invalid -campaign: %w", err)
		}
		req.DefaultCampaignID = &id
	}

	st, closeFn, err := openStore(*dsn)
	if err != nil {
		return err
	}
	defer closeFn()

	res, err := impl.NewImportService(st, impl.NewTokenIssuer(*ttl)).Import(context.Background(), req)
	if err != nil {
		return err
	}
	if err := printJSON(res); err != nil {
		return err
	}
	if !res.Success {
		return errors.New(res.Message)
	}
	return nil
}

func runCampaigns(args []string) error {
	fs := newFlagSet("campaigns")
	dsn := dsnFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, closeFn, err := openStore(*dsn)
	if err != nil {
		return err
	}
	defer closeFn()

	items, err := impl.NewCampaignService(st).List(context.Background())
	if err != nil {
		return err
	}
	return printJSON(items)
}

func runCreateCampaign(args []string) error {
	fs := newFlagSet("create-campaign")
	dsn := dsnFlag(fs)
	var in dto.CampaignInput
	fs.StringVar(&in.Name, "name", "", "campaign name")
	fs.StringVar(&in.Code, "code", "", "campaign code (ignored with -auto)")
	fs.BoolVar(&in.AutoCode, "auto", false, "generate the code and open the campaign over its dates")
	fs.BoolVar(&in.Active, "active", false, "mark the campaign active")
	start := fs.String("start", "", "start date (YYYY-MM-DD or RFC 3339)")
	end := fs.String("end", "", "end date (YYYY-MM-DD or RFC 3339)")
	from := fs.String("access-from", "", "access window start (YYYY-MM-DD or RFC 3339)")
	to := fs.String("access-to", "", "access window end (YYYY-MM-DD or RFC 3339)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, d := range []struct {
		flag string
		raw  string
		dst  **time.Time
	}{
		{"start", *start, &in.StartDate},
		{"end", *end, &in.EndDate},
		{"access-from", *from, &in.AccessFrom},
		{"access-to", *to, &in.AccessTo},
	} {
		t, err := parseDate(d.raw)
		if err != nil {
			return fmt.Errorf("invalid -%s: %w", d.flag, err)
		}
		*d.dst = t
	}

	st, closeFn, err := openStore(*dsn)
	if err != nil {
		return err
	}
	defer closeFn()

	c, err := impl.NewCampaignService(st).Create(context.Background(), in)
	if err != nil {
		return err
	}
	return printJSON(c)
}

func runExport(args []string) error {
	fs := newFlagSet("export")
	dsn := dsnFlag(fs)
	campaign := fs.String("campaign", "", "campaign UUID")
	out := fs.String("out", "", "output .xlsx path (defaults to prioritizacion-<campaign>.xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := uuid.Parse(*campaign)
	if err != nil {
		return fmt.Errorf("invalid -campaign: %w", err)
	}
	if *out == "" {
		*out = fmt.Sprintf("prioritizacion-%s.xlsx", id)
	}

	st, closeFn, err := openStore(*dsn)
	if err != nil {
		return err
	}
	defer closeFn()

	data, err := impl.NewExportService(st).Export(context.Background(), id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return err
	}
	return printJSON(struct {
		File  string `json:"file"`
		Bytes int    `json:"bytes"`
	}{*out, len(data)})
}

// parseDate accepts a calendar date (midnight UTC) or a full RFC 3339
// timestamp. Empty input yields nil.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
