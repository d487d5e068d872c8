package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Tomlord1122/buyareco-backend/internal/cache"
	"github.com/Tomlord1122/buyareco-backend/internal/domain"
	"github.com/Tomlord1122/buyareco-backend/internal/repository"
	"github.com/Tomlord1122/buyareco-backend/internal/service"
)

var errMissingFile = errors.New("seed needs a JSON file argument")

func seed(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return errMissingFile
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	locs, err := readLocations(f)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.db.Close()
	if err := a.db.Migrate(ctx); err != nil {
		return err
	}

	locations := service.NewLocationService(repository.NewGormLocationRepository(a.db.GetDB()), cache.Noop{}, a.logger, nil)
	created := 0
	for i := range locs {
		if err := locations.Create(ctx, &locs[i]); err != nil {
			a.logger.Warn("skip location", "index", i, "name", locs[i].Name, "err", err)
			continue
		}
		created++
	}
	a.logger.Info("Seed complete", "file", path, "created", created, "skipped", len(locs)-created)
	return nil
}

// readLocations decodes a JSON array of locations.
func readLocations(r io.Reader) ([]domain.Location, error) {
	var locs []domain.Location
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&locs); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return locs, nil
}
