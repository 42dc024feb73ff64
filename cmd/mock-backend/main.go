// Command mock-backend runs a deterministic OpenAI-compatible Chat
// Completions server with fault injection for exercising the relais
// retry and error mapping paths.
//
// Fault scripts are selected per request via the model name suffix:
//
//	any-model              - always succeeds
//	any-model@429          - always rate limited, Retry-After: 1
//	any-model@500          - always an internal error
//	any-model@503          - always unavailable
//	any-model@401          - always rejects credentials
//	any-model@flaky        - fails twice with 503, then succeeds
//	any-model@slow         - sleeps 5s before answering
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	backend := newBackend()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", backend.handleChatCompletions)
	mux.HandleFunc("GET /v1/models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Request and response types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Fault-injecting backend ---

type backend struct {
	mu       sync.Mutex
	requests int
	flaky    map[string]int // model -> failures served so far
}

func newBackend() *backend {
	return &backend{flaky: make(map[string]int)}
}

func (b *backend) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "invalid request")
		return
	}

	b.mu.Lock()
	b.requests++
	n := b.requests
	b.mu.Unlock()

	model, script, _ := strings.Cut(req.Model, "@")
	slog.Info("request", "n", n, "model", model, "script", script)

	switch script {
	case "":
		// fall through to success
	case "429":
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "rate_limit_error", "rate limit exceeded")
		return
	case "500":
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	case "503":
		writeError(w, http.StatusServiceUnavailable, "server_error", "backend unavailable")
		return
	case "401":
		writeError(w, http.StatusUnauthorized, "authentication_error", "invalid api key")
		return
	case "flaky":
		b.mu.Lock()
		failures := b.flaky[req.Model]
		if failures < 2 {
			b.flaky[req.Model] = failures + 1
			b.mu.Unlock()
			writeError(w, http.StatusServiceUnavailable, "server_error", "transient failure")
			return
		}
		b.flaky[req.Model] = 0
		b.mu.Unlock()
	case "slow":
		select {
		case <-time.After(5 * time.Second):
		case <-r.Context().Done():
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "invalid_request_error", fmt.Sprintf("unknown fault script %q", script))
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		ID:     fmt.Sprintf("chatcmpl-mock-%d", n),
		Object: "chat.completion",
		Model:  model,
		Choices: []chatChoice{{
			Message:      chatMsg{Role: "assistant", Content: "mock response"},
			FinishReason: "stop",
		}},
		Usage: chatUsage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10},
	})
}

func handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"object": "list",
		"data": []map[string]string{
			{"id": "mock-small", "object": "model"},
			{"id": "mock-large", "object": "model"},
		},
	})
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"type": errType, "message": message},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
