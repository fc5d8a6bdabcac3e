package storage

import "context"

// Loader is anything that can produce phrase configs.
type Loader interface {
	LoadPhraseConfigs(ctx context.Context) ([]ConfigRow, error)
}

// MultiLoader concatenates the configs of several loaders in order.
type MultiLoader []Loader

func (m MultiLoader) LoadPhraseConfigs(ctx context.Context) ([]ConfigRow, error) {
	var out []ConfigRow
	for _, l := range m {
		rows, err := l.LoadPhraseConfigs(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
