package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dtroode/greenhouse-admin/internal/model"
)

// MockTreeStore mocks the TreeStore interface
type MockTreeStore struct {
	mock.Mock
}

func (m *MockTreeStore) Set(ctx context.Context, path string, value any) error {
	args := m.Called(ctx, path, value)
	return args.Error(0)
}

func (m *MockTreeStore) Get(ctx context.Context, path string) (any, error) {
	args := m.Called(ctx, path)
	return args.Get(0), args.Error(1)
}

func (m *MockTreeStore) Remove(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockTreeStore) Keys(ctx context.Context, path string) ([]string, error) {
	args := m.Called(ctx, path)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

// MockDocumentStore mocks the DocumentStore interface
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Get(ctx context.Context, collection, id string) (model.Document, error) {
	args := m.Called(ctx, collection, id)
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *MockDocumentStore) List(ctx context.Context, collection string) ([]model.Document, error) {
	args := m.Called(ctx, collection)
	docs, _ := args.Get(0).([]model.Document)
	return docs, args.Error(1)
}

func (m *MockDocumentStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	args := m.Called(ctx, collection, id, data)
	return args.Error(0)
}

func (m *MockDocumentStore) Delete(ctx context.Context, collection, id string) error {
	args := m.Called(ctx, collection, id)
	return args.Error(0)
}

func (m *MockDocumentStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx model.DocumentTx) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

// MockProvisioner mocks the Provisioner interface
type MockProvisioner struct {
	mock.Mock
}

func (m *MockProvisioner) Provision(ctx context.Context, authUID string) (model.ApprovalResult, error) {
	args := m.Called(ctx, authUID)
	return args.Get(0).(model.ApprovalResult), args.Error(1)
}
