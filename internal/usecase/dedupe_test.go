package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/ledgerimport/internal/domain"
	"github.com/iho/ledgerimport/internal/usecase"
	"github.com/iho/ledgerimport/internal/usecase/mocks"
)

func TestClaimSet(t *testing.T) {
	s := usecase.NewClaimSet()

	if s.Claimed("entry-1") {
		t.Error("fresh set claims entry-1")
	}

	s.Claim("entry-2")
	s.Claim("entry-1")
	s.Claim("entry-1") // claiming twice is a no-op

	if !s.Claimed("entry-1") || !s.Claimed("entry-2") {
		t.Error("claimed IDs not reported")
	}

	ids := s.IDs()
	if len(ids) != 2 || ids[0] != "entry-1" || ids[1] != "entry-2" {
		t.Errorf("IDs() = %v, want sorted [entry-1 entry-2]", ids)
	}
}

func TestDuplicateFinderPassesClaimedExclusions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	date := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("-45.99")

	entryRepo := mocks.NewMockEntryRepository(ctrl)
	entryRepo.EXPECT().
		FindDuplicate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, q usecase.DuplicateQuery) (*domain.Entry, error) {
			if q.AccountID != "acc-1" || q.Name != "Grocery Store" || q.Currency != "EUR" {
				t.Errorf("query = %+v", q)
			}
			if !q.Date.Equal(date) || !q.Amount.Equal(amount) {
				t.Errorf("date/amount = %v %v", q.Date, q.Amount)
			}
			if len(q.Exclude) != 2 || q.Exclude[0] != "entry-1" || q.Exclude[1] != "entry-9" {
				t.Errorf("exclusions = %v", q.Exclude)
			}
			return nil, nil
		})

	claimed := usecase.NewClaimSet()
	claimed.Claim("entry-9")
	claimed.Claim("entry-1")

	finder := usecase.NewDuplicateFinder(entryRepo)

	row := &domain.Row{Date: date, Amount: amount, Name: "Grocery Store"}
	got, err := finder.FindDuplicate(context.Background(), &fakeTx{}, "acc-1", row, "EUR", claimed)
	if err != nil {
		t.Fatalf("FindDuplicate() error = %v", err)
	}
	if got != nil {
		t.Errorf("FindDuplicate() = %+v, want nil", got)
	}
}
