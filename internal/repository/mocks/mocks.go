package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rpggio/tabsync/internal/domain/partition"
	"github.com/rpggio/tabsync/internal/domain/record"
)

// PartitionRepository is a mock for partition.Repository.
type PartitionRepository struct {
	mock.Mock
}

func (m *PartitionRepository) List(ctx context.Context, family partition.Family, userID string) ([]partition.Partition, error) {
	args := m.Called(ctx, family, userID)
	if list, ok := args.Get(0).([]partition.Partition); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PartitionRepository) Create(ctx context.Context, family partition.Family, name, userID string) (*partition.Partition, error) {
	args := m.Called(ctx, family, name, userID)
	if p, ok := args.Get(0).(*partition.Partition); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PartitionRepository) Rename(ctx context.Context, family partition.Family, userID, id, name string) error {
	args := m.Called(ctx, family, userID, id, name)
	return args.Error(0)
}

func (m *PartitionRepository) Delete(ctx context.Context, family partition.Family, userID, id string, policy partition.DeletePolicy) error {
	args := m.Called(ctx, family, userID, id, policy)
	return args.Error(0)
}

// OrphanRepository is a mock for orphan.Repository.
type OrphanRepository struct {
	mock.Mock
}

func (m *OrphanRepository) CountOrphans(ctx context.Context, family partition.Family, userID string) (int, error) {
	args := m.Called(ctx, family, userID)
	return args.Int(0), args.Error(1)
}

func (m *OrphanRepository) Adopt(ctx context.Context, family partition.Family, userID, partitionID string) (int, error) {
	args := m.Called(ctx, family, userID, partitionID)
	return args.Int(0), args.Error(1)
}

// RecordRepository is a mock for record.Repository.
type RecordRepository struct {
	mock.Mock
}

func (m *RecordRepository) Create(ctx context.Context, rec *record.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *RecordRepository) Get(ctx context.Context, family partition.Family, ownerID, id string) (*record.Record, error) {
	args := m.Called(ctx, family, ownerID, id)
	if rec, ok := args.Get(0).(*record.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordRepository) Update(ctx context.Context, rec *record.Record) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *RecordRepository) Delete(ctx context.Context, family partition.Family, ownerID, id string) error {
	args := m.Called(ctx, family, ownerID, id)
	return args.Error(0)
}

func (m *RecordRepository) List(ctx context.Context, opts record.ListRecordsOptions) ([]record.Record, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]record.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordRepository) Names(ctx context.Context, opts record.ListRecordsOptions) ([]record.NameCount, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]record.NameCount); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TabRepository is a mock for record.TabRepository.
type TabRepository struct {
	mock.Mock
}

func (m *TabRepository) Get(ctx context.Context, family partition.Family, ownerID, id string) (*partition.Partition, error) {
	args := m.Called(ctx, family, ownerID, id)
	if p, ok := args.Get(0).(*partition.Partition); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// LocalStore is a mock for the client-side key-value store.
type LocalStore struct {
	mock.Mock
}

func (m *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if v, ok := args.Get(0).([]byte); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *LocalStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *LocalStore) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// TabStore is a mock for tab.Repository.
type TabStore struct {
	mock.Mock
}

func (m *TabStore) Create(ctx context.Context, family partition.Family, t *partition.Partition) error {
	args := m.Called(ctx, family, t)
	return args.Error(0)
}

func (m *TabStore) Get(ctx context.Context, family partition.Family, ownerID, id string) (*partition.Partition, error) {
	args := m.Called(ctx, family, ownerID, id)
	if p, ok := args.Get(0).(*partition.Partition); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TabStore) List(ctx context.Context, family partition.Family, ownerID string) ([]partition.Partition, error) {
	args := m.Called(ctx, family, ownerID)
	if list, ok := args.Get(0).([]partition.Partition); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TabStore) Rename(ctx context.Context, family partition.Family, ownerID, id, name string) error {
	args := m.Called(ctx, family, ownerID, id, name)
	return args.Error(0)
}

func (m *TabStore) Delete(ctx context.Context, family partition.Family, ownerID, id string, policy partition.DeletePolicy) error {
	args := m.Called(ctx, family, ownerID, id, policy)
	return args.Error(0)
}

func (m *TabStore) CountOrphans(ctx context.Context, family partition.Family, ownerID string) (int, error) {
	args := m.Called(ctx, family, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *TabStore) Adopt(ctx context.Context, family partition.Family, ownerID, id string) (int, error) {
	args := m.Called(ctx, family, ownerID, id)
	return args.Int(0), args.Error(1)
}
