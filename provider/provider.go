// Package provider implements the external retrieval and generation clients.
package provider

import (
	"context"

	"github.com/elimu-labs/mwalimu"
)

// Generator is the interface for text-generation backends.
// This is an alias to the main package interface for convenience.
type Generator = mwalimu.Generator

// Retriever is the interface for similarity-search backends.
type Retriever = mwalimu.Retriever

// CompletionRequest is an alias to the main package type.
type CompletionRequest = mwalimu.CompletionRequest

// Filter is an alias to the main package type.
type Filter = mwalimu.Filter

// Passage is an alias to the main package type.
type Passage = mwalimu.Passage

// Embedder turns query text into the vector the index searches with. The
// OpenAI generator doubles as the embedder so retrieval needs no second
// credential set.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
