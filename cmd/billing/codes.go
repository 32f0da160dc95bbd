package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/pg"
	"github.com/dmitrymomot/billingkit/pkg/redemption"
)

var errCodesUsage = errors.New("usage: billing codes <generate|import> [flags]")

func codes(ctx context.Context, cfg appConfig, log *slog.Logger, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errCodesUsage
	}

	var cmd func(context.Context, *redemption.Engine, []string, io.Reader, io.Writer) error
	switch args[0] {
	case "generate":
		cmd = generateCodes
	case "import":
		cmd = importCodes
	default:
		return errCodesUsage
	}

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	engine := redemption.NewEngine(redemption.NewPGStore(pool), redemption.WithLogger(log))
	return cmd(ctx, engine, args[1:], stdin, stdout)
}

// generateCodes provisions new codes and prints them one per line.
func generateCodes(ctx context.Context, engine *redemption.Engine, args []string, _ io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("codes generate", flag.ContinueOnError)
	tier := fs.Int("tier", 1, "AppSumo tier of the generated codes (1-3)")
	count := fs.Int("count", 1, "number of codes to generate")
	prefix := fs.String("prefix", "AS", "code prefix, empty for none")
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := engine.Provision(ctx, limits.AppsumoTier(*tier), *prefix, *count)
	if err != nil {
		return err
	}
	for _, c := range created {
		if _, err := fmt.Fprintln(stdout, c.Code); err != nil {
			return err
		}
	}
	return nil
}

// importCodes reads CSV rows of "code[,tier]" and stores the codes.
// Rows without a tier use the -tier flag. Blank rows and rows starting
// with # are skipped.
func importCodes(ctx context.Context, engine *redemption.Engine, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("codes import", flag.ContinueOnError)
	tier := fs.Int("tier", 1, "AppSumo tier for rows without one")
	file := fs.String("file", "", "CSV file to read, stdin when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	batch, err := readCodes(in, limits.AppsumoTier(*tier))
	if err != nil {
		return err
	}
	inserted, err := engine.Import(ctx, batch)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "imported %d of %d codes\n", inserted, len(batch))
	return err
}

func readCodes(r io.Reader, defaultTier limits.AppsumoTier) ([]*redemption.Code, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var batch []*redemption.Code
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return batch, nil
		}
		if err != nil {
			return nil, err
		}

		code := strings.TrimSpace(rec[0])
		if code == "" {
			continue
		}
		tier := defaultTier
		if len(rec) > 1 && strings.TrimSpace(rec[1]) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(rec[1]))
			if err != nil {
				line, _ := cr.FieldPos(1)
				return nil, fmt.Errorf("line %d: tier %q: %w", line, rec[1], err)
			}
			tier = limits.AppsumoTier(n)
		}
		batch = append(batch, redemption.NewCode(code, tier))
	}
}
