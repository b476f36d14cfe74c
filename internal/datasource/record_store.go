package datasource

import (
	"context"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// RecordFinder is the part of core.App the record store needs.
type RecordFinder interface {
	FindAllRecords(collectionModelOrIdentifier any, exprs ...dbx.Expression) ([]*core.Record, error)
}

type recordStore struct {
	finder RecordFinder
}

// NewRecordStore reads the collections of the PocketBase app hosting the
// dashboard.
func NewRecordStore(finder RecordFinder) *Service {
	return &Service{src: &recordStore{finder: finder}}
}

func (s *recordStore) records(ctx context.Context, collection string) ([]Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := s.finder.FindAllRecords(collection)
	if err != nil {
		return nil, err
	}

	out := make([]Fields, 0, len(records))
	for _, r := range records {
		out = append(out, recordFields{r})
	}
	return out, nil
}

// recordFields reads the id from the model rather than the field store.
type recordFields struct {
	*core.Record
}

func (r recordFields) GetString(key string) string {
	if key == "id" {
		return r.Id
	}
	return r.Record.GetString(key)
}
