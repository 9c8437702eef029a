// Package provider abstracts outbound generative-text calls so the engine
// can run against a live API or a deterministic mock.
package provider

import "context"

// #region types

// Request is a rendered prompt plus sampling parameters.
type Request struct {
	SystemMessage string
	UserMessage   string
	History       []Turn
	Model         string
	Temperature   *float64
	MaxTokens     *int
}

// Turn is one prior chat exchange included for context.
type Turn struct {
	Role    string
	Content string
}

// Response is the provider's completion with usage accounting.
type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// #endregion types

// #region interface

// Provider generates a completion for a rendered prompt. Implementations
// must honor context cancellation.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// #endregion interface
