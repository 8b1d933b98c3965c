package mocks

import "context"

type BackendMock struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
}

func (m *BackendMock) Generate(ctx context.Context, prompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", nil
}
