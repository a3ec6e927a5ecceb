package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/compoundlabs/compounder/business/data/history"
	"github.com/google/uuid"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func TestMemoryStore(t *testing.T) {
	t.Log("Given the need to record decision cycles in memory.")
	{
		t.Logf("\tTest 0:\tWhen saving and reading back records.")
		{
			ctx := context.Background()
			store := history.NewMemory()

			if _, err := store.Last(ctx); !errors.Is(err, history.ErrNotFound) {
				t.Fatalf("\t%s\tTest 0:\tShould report not found on an empty store: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould report not found on an empty store.", success)

			recs := []history.Record{
				{ID: uuid.New(), CreatedAt: time.Now().UTC(), Balance: 100, WaitSeconds: 86400, Defaulted: true},
				{ID: uuid.New(), CreatedAt: time.Now().UTC(), Balance: 101.5, WaitSeconds: 52_300, Confirmed: true},
			}

			for _, rec := range recs {
				if err := store.Save(ctx, rec); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to save a record: %v", failed, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould be able to save records.", success)

			last, err := store.Last(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read the last record: %v", failed, err)
			}
			if last.ID != recs[1].ID {
				t.Fatalf("\t%s\tTest 0:\tShould get the newest record back: got %v, exp %v", failed, last.ID, recs[1].ID)
			}
			t.Logf("\t%s\tTest 0:\tShould get the newest record back.", success)

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to list records: %v", failed, err)
			}
			if len(list) != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould list both records: got %d", failed, len(list))
			}
			if list[0].ID != recs[1].ID || list[1].ID != recs[0].ID {
				t.Fatalf("\t%s\tTest 0:\tShould list records newest first.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould list records newest first.", success)
		}
	}
}
