// Package openaicompat provides the shared HTTP client for any
// OpenAI-compatible Chat Completions backend. It handles request
// serialization, bearer authentication, response envelope parsing, and the
// classification of backend failures into the fault taxonomy.
//
// Provider adapters (openai, litellm) embed the Client from this package and
// delegate their Complete/ListModels calls to it. The client performs exactly
// one network call per invocation and never retries; failed calls return a
// raw *BackendError (or the underlying transport error) for the retry
// controller to classify via MapError.
package openaicompat
