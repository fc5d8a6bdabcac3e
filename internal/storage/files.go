package storage

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// FileStore serves phrase configs from files on disk.
type FileStore struct {
	Paths []string
}

func NewFileStore(paths []string) *FileStore {
	return &FileStore{Paths: append([]string(nil), paths...)}
}

// LoadPhraseConfigs reads all files concurrently. Rows keep the order of
// Paths; any unreadable file fails the whole load.
func (f *FileStore) LoadPhraseConfigs(ctx context.Context) ([]ConfigRow, error) {
	out := make([]ConfigRow, len(f.Paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range f.Paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read phrase config: %w", err)
			}
			out[i] = ConfigRow{Name: p, Body: string(b)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
