package transport

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/healthdata-loader/pkg/engine"
	"github.com/raywall/healthdata-loader/pkg/indicators"
	"github.com/stretchr/testify/mock"
)

type MockSQSClient struct {
	mock.Mock
}

func (m *MockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	return nil, args.Error(1)
}

// MockRunner registra as finalidades recebidas de forma thread-safe.
type MockRunner struct {
	mu         sync.Mutex
	purposes   []string
	RunCycleFn func(ctx context.Context, purpose string) (*engine.CycleResult, error)
}

func (m *MockRunner) RunCycle(ctx context.Context, purpose string) (*engine.CycleResult, error) {
	m.mu.Lock()
	m.purposes = append(m.purposes, purpose)
	m.mu.Unlock()
	if m.RunCycleFn != nil {
		return m.RunCycleFn(ctx, purpose)
	}
	return &engine.CycleResult{Snapshot: indicators.Snapshot{ID: "snap-1", Source: indicators.Simulated}}, nil
}

func (m *MockRunner) Purposes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.purposes...)
}

type MockReloader struct {
	mu       sync.Mutex
	Reloaded bool
	Err      error
}

func (m *MockReloader) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reloaded = true
	return m.Err
}

func (m *MockReloader) WasReloaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Reloaded
}

func stringPtr(s string) *string {
	return &s
}
