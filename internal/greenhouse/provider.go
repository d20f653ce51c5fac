package greenhouse

import (
	"context"
)

// Loader abstracts the sensor gateway that publishes daily files.
type Loader interface {
	ListFiles(ctx context.Context) ([]string, error)
	LoadRecords(ctx context.Context, fileName string) ([]Reading, error)
}

// Store is the contract the records cache must satisfy.
type Store interface {
	Save(fileName string, readings []Reading)
	Get(fileName string) ([]Reading, error)
}
