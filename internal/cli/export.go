package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rileyhilliard/vitals/internal/core"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/ui"
)

// exportCommand runs the collector headless for the requested number of
// ticks and writes the export document.
func exportCommand(output string, samples int) error {
	log := logger.NewEnvLogger("vitals")
	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	c := newCore(cfg, nil, log)
	if err := c.Check(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Run(gctx) })

	waitErr := waitForTicks(gctx, c, uint64(samples), cfg.Interval)
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	if waitErr != nil {
		return waitErr
	}

	doc, err := c.Export()
	if err != nil {
		return err
	}
	return writeExport(doc, output)
}

// waitForTicks blocks until the core has published n snapshots. The
// deadline leaves generous room beyond the expected collection time so a
// slow tick does not abort a long export.
func waitForTicks(ctx context.Context, c *core.Core, n uint64, interval time.Duration) error {
	deadline := time.NewTimer(time.Duration(n)*interval + 10*time.Second)
	defer deadline.Stop()
	poll := time.NewTicker(20 * time.Millisecond)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return errors.New(errors.ErrExport,
				fmt.Sprintf("Collected %d of %d samples before timing out", c.TickCount(), n),
				"Check the log for sampling failures, or run 'vitals doctor'.")
		case <-poll.C:
			if c.TickCount() >= n {
				return nil
			}
		}
	}
}

// writeExport writes the document to the file or, with no --output, as
// plain JSON on stdout so the command pipes cleanly.
func writeExport(doc *core.ExportDoc, output string) error {
	if output == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			"Failed to encode the export document", "")
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			"Failed to write "+output,
			"Check directory permissions and free space.")
	}

	fmt.Printf("%s Wrote %d metric series to %s\n", ui.SymbolSuccess, len(doc.Series), output)
	return nil
}
