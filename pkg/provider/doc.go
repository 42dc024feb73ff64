// Package provider defines the normalized call contract for LLM inference
// backends. Each adapter implementation handles its own backend protocol
// internally and classifies backend failures into the fault taxonomy,
// keeping protocol details invisible to the dispatch core. The request
// payload is opaque: the core routes, retries, and classifies, but never
// interprets backend request or response bodies.
package provider
