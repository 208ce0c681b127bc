package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"voicedoc/internal/model"
	"voicedoc/internal/service"
)

type MockRecordService struct {
	mock.Mock
}

var _ service.RecordService = (*MockRecordService)(nil)

func (m *MockRecordService) Create(ctx context.Context, ownerID, title string, r io.Reader, filename string) (*model.Record, error) {
	args := m.Called(ctx, ownerID, title, r, filename)
	var rec *model.Record
	if args.Get(0) != nil {
		rec = args.Get(0).(*model.Record)
	}
	return rec, args.Error(1)
}

func (m *MockRecordService) List(ctx context.Context, ownerID string) ([]model.RecordSummary, error) {
	args := m.Called(ctx, ownerID)
	var out []model.RecordSummary
	if args.Get(0) != nil {
		out = args.Get(0).([]model.RecordSummary)
	}
	return out, args.Error(1)
}

func (m *MockRecordService) Get(ctx context.Context, ownerID, id string) (*model.Record, error) {
	args := m.Called(ctx, ownerID, id)
	var rec *model.Record
	if args.Get(0) != nil {
		rec = args.Get(0).(*model.Record)
	}
	return rec, args.Error(1)
}

func (m *MockRecordService) Update(ctx context.Context, ownerID, id string, upd service.RecordUpdate) (*model.Record, error) {
	args := m.Called(ctx, ownerID, id, upd)
	var rec *model.Record
	if args.Get(0) != nil {
		rec = args.Get(0).(*model.Record)
	}
	return rec, args.Error(1)
}

func (m *MockRecordService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockRecordService) Regenerate(ctx context.Context, ownerID, id string) (*model.Record, error) {
	args := m.Called(ctx, ownerID, id)
	var rec *model.Record
	if args.Get(0) != nil {
		rec = args.Get(0).(*model.Record)
	}
	return rec, args.Error(1)
}

func (m *MockRecordService) OpenAudio(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.Record, error) {
	args := m.Called(ctx, ownerID, id)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	var rec *model.Record
	if args.Get(1) != nil {
		rec = args.Get(1).(*model.Record)
	}
	return rc, rec, args.Error(2)
}

func (m *MockRecordService) OpenDocument(ctx context.Context, ownerID, id string) (io.ReadCloser, *model.Record, error) {
	args := m.Called(ctx, ownerID, id)
	var rc io.ReadCloser
	if args.Get(0) != nil {
		rc = args.Get(0).(io.ReadCloser)
	}
	var rec *model.Record
	if args.Get(1) != nil {
		rec = args.Get(1).(*model.Record)
	}
	return rc, rec, args.Error(2)
}
