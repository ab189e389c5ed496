package analyses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/apns-backend/internal/data/repos/testutil"
	types "github.com/yungbote/apns-backend/internal/domain"
	"gorm.io/datatypes"
)

func TestDocumentAnalysisRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewDocumentAnalysisRepo(db, testutil.Logger(t))
	ctx := context.Background()

	base := time.Now().UTC()
	for i, name := range []string{"a.csv", "b.xlsx", "c.pdf"} {
		a := &types.DocumentAnalysis{
			FileName:         name,
			ProcessedRecords: i + 1,
			Alerts:           datatypes.JSON(`[]`),
			TopFindings:      datatypes.JSON(`["x"]`),
			Model:            "Rule-Enhanced Analyzer",
			CreatedAt:        base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, tx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if a.ID == uuid.Nil {
			t.Fatalf("Create: expected generated id")
		}
	}

	recent, err := repo.ListRecent(ctx, tx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 || recent[0].FileName != "c.pdf" || recent[1].FileName != "b.xlsx" {
		t.Fatalf("ListRecent: unexpected order %+v", recent)
	}
}
