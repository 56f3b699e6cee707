package history

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/trit-recommender/internal/data/repos/testutil"
	"github.com/yungbote/trit-recommender/internal/domain/recommend"
)

func TestHistoryRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewHistoryRepo(db, testutil.Logger(t))
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	older, err := recommend.NewHistory(recommend.Result{
		UserID: 7, Needs: recommend.NeedContents, Category: "FOOD",
		Contents: &recommend.ContentPick{ContentsID: 100},
		Reason:   recommend.JustifiedReason(recommend.Justification{Title: "t", Lines: []string{"a", "b", "c"}}),
	}, base)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	newer, _ := recommend.NewHistory(recommend.Result{
		UserID: 7, Needs: recommend.NeedCreator, Category: "FOOD",
		Creator: &recommend.CreatorPick{CreatorID: 10},
		Reason:  recommend.TextReason("We found a creator who matches your interests and region."),
	}, base.Add(time.Hour))
	other, _ := recommend.NewHistory(recommend.Result{
		UserID: 8, Needs: recommend.NeedLocation, Location: &recommend.LocationPick{LocationID: 1},
		Reason: recommend.TextReason("x"),
	}, base)

	for _, rec := range []*recommend.History{older, newer, other} {
		if err := repo.Create(ctx, tx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.ID == 0 {
			t.Fatalf("Create: expected generated id")
		}
	}

	got, err := repo.ListByUser(ctx, tx, 7, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 || got[0].Needs != "creator" || got[1].Needs != "contents" {
		t.Fatalf("ListByUser: expected newest first, got %+v", got)
	}
	if got[1].ContentsID == nil || *got[1].ContentsID != 100 || got[1].CreatorID != nil {
		t.Fatalf("ListByUser: unexpected ids on contents row: %+v", got[1])
	}

	limited, err := repo.ListByUser(ctx, tx, 7, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("ListByUser limit: got %d err=%v", len(limited), err)
	}
}
