// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations for
// the supported embedding providers.
//
// # Supported Providers
//
//   - openai: text-embedding-3-small, text-embedding-3-large, text-embedding-ada-002,
//     or any OpenAI-compatible service via BaseURL
//   - embedeverything: local models through go-embedeverything (build tag embedeverything)
//   - hashing: feature-hashed bag of words, for offline use and tests
//
// # Usage
//
//	client := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model:     "text-embedding-3-small",
//	    BatchSize: 100,
//	})
//	embeddings, err := client.Embed(ctx, []string{"hello world"})
//
// New builds a client from configuration and wraps remote providers in a
// CircuitBreakerClient.
package embedder
