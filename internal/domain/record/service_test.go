package record_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
	"github.com/rpggio/tabsync/internal/repository"
	"github.com/rpggio/tabsync/internal/repository/mocks"
)

const tx = partition.FamilyTransaction

func ptr(s string) *string { return &s }

func rec(name, amount, currency string, at time.Time) record.Record {
	return record.Record{
		Family:     tx,
		OwnerID:    "alice",
		Name:       name,
		Amount:     decimal.RequireFromString(amount),
		Currency:   currency,
		OccurredAt: at,
	}
}

func TestRecordService_CreateChecksTab(t *testing.T) {
	ctx := context.Background()
	records := &mocks.RecordRepository{}
	tabs := &mocks.TabRepository{}
	tabs.On("Get", ctx, tx, "alice", "t1").Return(&partition.Partition{ID: "t1"}, nil)
	tabs.On("Get", ctx, tx, "alice", "gone").Return(nil, repository.ErrNotFound)
	records.On("Create", ctx, mock.AnythingOfType("*record.Record")).Return(nil)

	svc := record.NewService(records, tabs, nil)

	created, err := svc.Create(ctx, record.CreateRequest{
		Family:   tx,
		OwnerID:  "alice",
		TabID:    ptr("t1"),
		Name:     " Rent ",
		Amount:   decimal.NewFromInt(-900),
		Currency: "EUR",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Rent", created.Name)
	require.False(t, created.OccurredAt.IsZero())

	_, err = svc.Create(ctx, record.CreateRequest{
		Family: tx, OwnerID: "alice", TabID: ptr("gone"), Name: "X", Currency: "EUR",
	})
	require.ErrorIs(t, err, record.ErrTabNotFound)

	// Orphans can still be created without a tab.
	_, err = svc.Create(ctx, record.CreateRequest{Family: tx, OwnerID: "alice", Name: "Legacy", Currency: "EUR"})
	require.NoError(t, err)
	records.AssertNumberOfCalls(t, "Create", 2)
}

func TestRecordService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := record.NewService(&mocks.RecordRepository{}, &mocks.TabRepository{}, nil)

	bad := []record.CreateRequest{
		{Family: "bonds", OwnerID: "alice", Name: "X", Currency: "EUR"},
		{Family: tx, Name: "X", Currency: "EUR"},
		{Family: tx, OwnerID: "alice", Name: " ", Currency: "EUR"},
		{Family: tx, OwnerID: "alice", Name: "X", Currency: "euro"},
		{Family: tx, OwnerID: "alice", Name: "X", Currency: "EUR", TabID: ptr("")},
	}
	for _, req := range bad {
		_, err := svc.Create(ctx, req)
		require.ErrorIs(t, err, record.ErrInvalidInput)
	}
}

func TestRecordService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	records := &mocks.RecordRepository{}
	existing := rec("Rent", "-900", "EUR", time.Now())
	existing.ID = "r1"
	records.On("Get", ctx, tx, "alice", "r1").Return(&existing, nil)
	records.On("Get", ctx, tx, "alice", "gone").Return(nil, repository.ErrNotFound)
	records.On("Update", ctx, mock.MatchedBy(func(r *record.Record) bool {
		return r.ID == "r1" && r.Name == "Rent March" && r.Currency == "EUR"
	})).Return(nil)
	records.On("Delete", ctx, tx, "alice", "r1").Return(nil)
	records.On("Delete", ctx, tx, "alice", "gone").Return(repository.ErrNotFound)

	svc := record.NewService(records, &mocks.TabRepository{}, nil)

	updated, err := svc.Update(ctx, record.UpdateRequest{Family: tx, OwnerID: "alice", ID: "r1", Name: ptr("Rent March")})
	require.NoError(t, err)
	require.Equal(t, "Rent March", updated.Name)
	require.Equal(t, "Rent", existing.Name, "update must not mutate the fetched record")

	_, err = svc.Update(ctx, record.UpdateRequest{Family: tx, OwnerID: "alice", ID: "gone", Name: ptr("X")})
	require.ErrorIs(t, err, record.ErrRecordNotFound)

	require.NoError(t, svc.Delete(ctx, tx, "alice", "r1"))
	require.ErrorIs(t, svc.Delete(ctx, tx, "alice", "gone"), record.ErrRecordNotFound)
}

func TestRecordService_SummaryAndStats(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	opts := record.ListRecordsOptions{Family: tx, OwnerID: "alice", TabID: ptr("t1")}

	records := &mocks.RecordRepository{}
	records.On("List", ctx, opts).Return([]record.Record{
		rec("Salary", "3000", "EUR", day),
		rec("Rent", "-900", "EUR", day.AddDate(0, 0, 1)),
		rec("Coffee", "-3.5", "EUR", day.AddDate(0, 0, 2)),
		rec("Coffee", "-4", "USD", day.AddDate(0, 0, 3)),
	}, nil)

	svc := record.NewService(records, &mocks.TabRepository{}, nil)

	summary, err := svc.Summary(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 4, summary.Count)
	require.Len(t, summary.Totals, 2)
	eur := summary.Totals[0]
	require.Equal(t, "EUR", eur.Currency)
	require.Equal(t, 3, eur.Count)
	require.True(t, eur.Total.Equal(decimal.RequireFromString("2096.5")))
	require.True(t, eur.Inflow.Equal(decimal.NewFromInt(3000)))
	require.True(t, eur.Outflow.Equal(decimal.RequireFromString("903.5")))
	require.Equal(t, "USD", summary.Totals[1].Currency)

	stats, err := svc.Stats(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 4, stats.Count)
	require.True(t, stats.Largest.Equal(decimal.NewFromInt(3000)))
	require.True(t, stats.Smallest.Equal(decimal.NewFromInt(-900)))
	require.True(t, stats.Average.Equal(decimal.RequireFromString("523.13")))
	require.Equal(t, day, *stats.FirstAt)
	require.Equal(t, day.AddDate(0, 0, 3), *stats.LastAt)
	require.Equal(t, record.NameCount{Name: "Coffee", Count: 2}, stats.TopNames[0])
}

func TestRecordService_StatsEmpty(t *testing.T) {
	ctx := context.Background()
	opts := record.ListRecordsOptions{Family: tx, OwnerID: "alice"}
	records := &mocks.RecordRepository{}
	records.On("List", ctx, opts).Return([]record.Record{}, nil)

	svc := record.NewService(records, &mocks.TabRepository{}, nil)
	stats, err := svc.Stats(ctx, opts)
	require.NoError(t, err)
	require.Zero(t, stats.Count)
	require.Nil(t, stats.FirstAt)
	require.Empty(t, stats.TopNames)
}

func TestRecordService_Names(t *testing.T) {
	ctx := context.Background()
	opts := record.ListRecordsOptions{Family: tx, OwnerID: "alice"}
	records := &mocks.RecordRepository{}
	records.On("Names", ctx, opts).Return([]record.NameCount{
		{Name: "Groceries", Count: 4},
		{Name: "Gym", Count: 1},
		{Name: "Rent", Count: 2},
	}, nil)

	svc := record.NewService(records, &mocks.TabRepository{}, nil)

	idx, err := svc.Names(ctx, record.NamesOptions{ListRecordsOptions: opts, Query: "gr"})
	require.NoError(t, err)
	require.Equal(t, "Groceries", idx.Names[0])

	idx, err = svc.Names(ctx, record.NamesOptions{ListRecordsOptions: opts, Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"Groceries", "Gym"}, idx.Names)
}

func TestRankNames(t *testing.T) {
	names := []string{"Rent", "Groceries", "Restaurant", "Car insurance", "Gym"}

	require.Equal(t, []string{"Car insurance", "Groceries", "Gym", "Rent", "Restaurant"}, record.RankNames(names, ""))
	require.Equal(t, []string{"Rent", "Restaurant"}, record.RankNames(names, "re"))
	require.Equal(t, []string{"Car insurance"}, record.RankNames(names, "insur"))

	// One typo in a short query is tolerated.
	require.Equal(t, "Groceries", record.RankNames(names, "grpc")[0])
}
