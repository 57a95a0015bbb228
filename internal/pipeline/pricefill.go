package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/haihuyentran/melbourne-properties/internal/dataset"
	"github.com/haihuyentran/melbourne-properties/internal/upstream"
	"github.com/haihuyentran/melbourne-properties/pkg/reiv"
)

// PriceResolver resolves one suburb slug to its median price.
type PriceResolver interface {
	Resolve(ctx context.Context, slug string) (*reiv.SuburbPrice, error)
}

// PriceFill resolves the median price for every suburb that has a slug but
// no price yet, saving the dataset every checkpointEvery processed records
// so an interrupted run loses at most that many lookups. Already-resolved
// suburbs are skipped, which makes reruns cheap. Per-suburb failures are
// logged and skipped; a blocked upstream aborts the stage since every
// further call would hit the same wall.
func PriceFill(ctx context.Context, ds *dataset.Dataset, r PriceResolver, checkpointEvery int) (resolved, failed int, err error) {
	if checkpointEvery <= 0 {
		checkpointEvery = 20
	}

	processed := 0
	for _, name := range ds.SortedNames() {
		rec := ds.Get(name)
		if rec.ReivSlug == "" || rec.MedianPrice != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return resolved, failed, err
		}

		price, resolveErr := r.Resolve(ctx, rec.ReivSlug)
		processed++
		if resolveErr != nil {
			if upstream.IsBlocked(resolveErr) {
				return resolved, failed, resolveErr
			}
			zap.L().Warn("pipeline: price miss",
				zap.String("suburb", name), zap.Error(resolveErr))
			failed++
		} else {
			p := price.MedianPrice
			rec.MedianPrice = &p
			rec.MedianPriceUnit = price.MedianPriceUnit
			resolved++
		}

		if processed%checkpointEvery == 0 {
			if err := ds.Save(); err != nil {
				return resolved, failed, err
			}
		}
	}

	if err := ds.Save(); err != nil {
		return resolved, failed, err
	}
	zap.L().Info("pipeline: price fill complete",
		zap.Int("resolved", resolved), zap.Int("failed", failed))
	return resolved, failed, nil
}

// PriceFillInteractive prompts for each unresolved suburb instead of calling
// the market site, for when the site is blocking automated traffic. A blank
// line skips the suburb; "q" stops the session with progress saved.
func PriceFillInteractive(ds *dataset.Dataset, in io.Reader, out io.Writer) (resolved int, err error) {
	reader := bufio.NewReader(in)
	for _, name := range ds.SortedNames() {
		rec := ds.Get(name)
		if rec.ReivSlug == "" || rec.MedianPrice != nil {
			continue
		}

		fmt.Fprintf(out, "%s (median price, blank to skip, q to quit): ", name)
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			break
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			continue
		}
		if strings.EqualFold(answer, "q") {
			break
		}

		price, convErr := strconv.Atoi(strings.ReplaceAll(answer, ",", ""))
		if convErr != nil || price <= 0 {
			fmt.Fprintln(out, "not a price, skipped")
			continue
		}
		rec.MedianPrice = &price
		rec.MedianPriceUnit = "AUD"
		resolved++
	}

	if err := ds.Save(); err != nil {
		return resolved, err
	}
	return resolved, nil
}
