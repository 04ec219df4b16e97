package validation

import (
	"context"

	"github.com/form3tech-oss/jwt-contract-validator/internal/app/interactionlog"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ValidateFiles loads and validates each log file. Logs are independent and
// processed concurrently, but results keep the order of paths. The first
// file that cannot be loaded aborts the run.
func (v *Validator) ValidateFiles(ctx context.Context, paths []string) ([]Result, error) {
	perLog := make([][]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.parallel)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			log.Infof("validating file %s", path)
			l, err := interactionlog.Load(path)
			if err != nil {
				return err
			}
			perLog[i] = v.ValidateLog(l)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []Result
	for _, r := range perLog {
		results = append(results, r...)
	}
	return results, nil
}
