package application_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/difystudio/internal/domain/model"
	"github.com/ericfisherdev/difystudio/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockConfigStore struct {
	mu     sync.Mutex
	cfg    *model.DifyConfig
	getErr error
	saves  []model.DifyConfigUpdate
}

func (m *mockConfigStore) Get(_ context.Context) (*model.DifyConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.cfg == nil {
		return nil, nil
	}
	cp := *m.cfg
	return &cp, nil
}

func (m *mockConfigStore) Save(_ context.Context, update model.DifyConfigUpdate) (*model.DifyConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves = append(m.saves, update)
	if m.cfg == nil {
		m.cfg = &model.DifyConfig{BaseURL: model.DefaultDifyBaseURL}
	}
	if update.BaseURL != nil && *update.BaseURL != "" {
		m.cfg.BaseURL = *update.BaseURL
	}
	if update.APIKey != nil {
		m.cfg.APIKey = *update.APIKey
		m.cfg.KeyUnreadable = false
	}
	cp := *m.cfg
	return &cp, nil
}

// mockDifyClient records the credentials of every call and answers with the
// configured response.
type mockDifyClient struct {
	mu    sync.Mutex
	calls []difyCall

	response json.RawMessage
	err      error
}

type difyCall struct {
	Op     string
	Creds  model.UpstreamCredentials
	Target string
	Opts   model.ListOptions
	Body   json.RawMessage
	Upload model.DocumentUpload
	User   string
}

func (m *mockDifyClient) record(c difyCall) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return json.RawMessage(`{}`), nil
	}
	return m.response, nil
}

func (m *mockDifyClient) lastCall() difyCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return difyCall{}
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockDifyClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockDifyClient) ListDatasets(_ context.Context, creds model.UpstreamCredentials, opts model.ListOptions) (json.RawMessage, error) {
	return m.record(difyCall{Op: "ListDatasets", Creds: creds, Opts: opts})
}

func (m *mockDifyClient) CreateDataset(_ context.Context, creds model.UpstreamCredentials, body json.RawMessage) (json.RawMessage, error) {
	return m.record(difyCall{Op: "CreateDataset", Creds: creds, Body: body})
}

func (m *mockDifyClient) DeleteDataset(_ context.Context, creds model.UpstreamCredentials, datasetID string) error {
	_, err := m.record(difyCall{Op: "DeleteDataset", Creds: creds, Target: datasetID})
	return err
}

func (m *mockDifyClient) ListDocuments(_ context.Context, creds model.UpstreamCredentials, datasetID string, opts model.ListOptions) (json.RawMessage, error) {
	return m.record(difyCall{Op: "ListDocuments", Creds: creds, Target: datasetID, Opts: opts})
}

func (m *mockDifyClient) CreateDocumentByFile(_ context.Context, creds model.UpstreamCredentials, datasetID string, upload model.DocumentUpload) (json.RawMessage, error) {
	if upload.Content != nil {
		_, _ = io.Copy(io.Discard, upload.Content)
	}
	return m.record(difyCall{Op: "CreateDocumentByFile", Creds: creds, Target: datasetID, Upload: upload})
}

func (m *mockDifyClient) DeleteDocument(_ context.Context, creds model.UpstreamCredentials, datasetID, documentID string) error {
	_, err := m.record(difyCall{Op: "DeleteDocument", Creds: creds, Target: datasetID + "/" + documentID})
	return err
}

func (m *mockDifyClient) RunWorkflow(_ context.Context, creds model.UpstreamCredentials, body json.RawMessage) (json.RawMessage, error) {
	return m.record(difyCall{Op: "RunWorkflow", Creds: creds, Body: body})
}

func (m *mockDifyClient) GetWorkflowRun(_ context.Context, creds model.UpstreamCredentials, runID string) (json.RawMessage, error) {
	return m.record(difyCall{Op: "GetWorkflowRun", Creds: creds, Target: runID})
}

func (m *mockDifyClient) UploadFile(_ context.Context, creds model.UpstreamCredentials, upload model.DocumentUpload, user string) (json.RawMessage, error) {
	return m.record(difyCall{Op: "UploadFile", Creds: creds, Upload: upload, User: user})
}

type mockModelStore struct {
	models    map[string]model.AIModel
	createErr error
}

func newMockModelStore() *mockModelStore {
	return &mockModelStore{models: map[string]model.AIModel{}}
}

func (m *mockModelStore) Create(_ context.Context, am model.AIModel) (model.AIModel, error) {
	if m.createErr != nil {
		return model.AIModel{}, m.createErr
	}
	m.models[am.ID] = am
	return am, nil
}

func (m *mockModelStore) Get(_ context.Context, id string) (model.AIModel, error) {
	am, ok := m.models[id]
	if !ok {
		return model.AIModel{}, driven.ErrModelNotFound
	}
	return am, nil
}

func (m *mockModelStore) ListAll(_ context.Context) ([]model.AIModel, error) {
	out := make([]model.AIModel, 0, len(m.models))
	for _, am := range m.models {
		out = append(out, am)
	}
	return out, nil
}

func (m *mockModelStore) Update(_ context.Context, id string, update model.AIModelUpdate) (model.AIModel, error) {
	am, ok := m.models[id]
	if !ok {
		return model.AIModel{}, driven.ErrModelNotFound
	}
	update.Apply(&am)
	m.models[id] = am
	return am, nil
}

func (m *mockModelStore) Delete(_ context.Context, id string) error {
	if _, ok := m.models[id]; !ok {
		return driven.ErrModelNotFound
	}
	delete(m.models, id)
	return nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error {
	return m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T {
	return &v
}
