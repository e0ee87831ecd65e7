package llm

import "context"

// MockChatClient is a configurable ChatClient test double.
type MockChatClient struct {
	GenerateResponseFunc func(ctx context.Context, prompt string, temperature float64) (*GenerateResponseResult, error)
	Model                string
	Endpoint             string

	GenerateCalls int
}

var _ ChatClient = (*MockChatClient)(nil)

func (m *MockChatClient) GenerateResponse(ctx context.Context, prompt string, temperature float64) (*GenerateResponseResult, error) {
	m.GenerateCalls++
	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, prompt, temperature)
	}
	return &GenerateResponseResult{Content: "{}"}, nil
}

func (m *MockChatClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

func (m *MockChatClient) GetEndpoint() string {
	if m.Endpoint == "" {
		return "http://localhost:0"
	}
	return m.Endpoint
}
