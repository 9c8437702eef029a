package provider

import "context"

// #region mock

// Mock is a deterministic in-memory provider for tests and dry runs.
// Responses are returned in order; after the script runs out, Fallback is
// used. Requests are recorded for assertions.
type Mock struct {
	Script   []string
	Fallback string
	Err      error
	Requests []Request

	next int
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return Response{}, m.Err
	}

	content := m.Fallback
	if m.next < len(m.Script) {
		content = m.Script[m.next]
		m.next++
	}
	return Response{Content: content, Model: "mock"}, nil
}

// #endregion mock
