package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docbridge/bridge/internal/providers"
	"github.com/docbridge/bridge/internal/schema"
)

// DefaultModelTimeout bounds a single chat call. Long documents produce long
// prompts, so this is generous, but a hung provider never hangs a request.
const DefaultModelTimeout = 5 * time.Minute

// Runnable turns page-tagged text into structured records via a chat model.
// It owns prompt assembly, the chat call, output parsing, and output-shape
// normalization. Safe for concurrent use.
type Runnable struct {
	registry *providers.Registry
	timeout  time.Duration
	logger   *slog.Logger
}

// RunnableConfig configures a Runnable.
type RunnableConfig struct {
	Registry *providers.Registry
	Timeout  time.Duration // zero means DefaultModelTimeout
	Logger   *slog.Logger
}

// NewRunnable creates a Runnable backed by the given model registry.
func NewRunnable(cfg RunnableConfig) *Runnable {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultModelTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runnable{
		registry: cfg.Registry,
		timeout:  timeout,
		logger:   logger,
	}
}

// Invoke runs one extraction. The request schema must already have passed
// schema.Check; Invoke re-checks cheaply so direct callers get the same
// guarantee as the HTTP layer.
func (r *Runnable) Invoke(ctx context.Context, req *Request) (*Response, error) {
	if err := schema.Check(req.JSONSchema); err != nil {
		return nil, err
	}

	binding, err := r.registry.Resolve(req.ModelName)
	if err != nil {
		return nil, err
	}

	chatReq := &providers.ChatRequest{
		Messages:    BuildPrompt(req.Instructions, req.Text),
		Model:       binding.Model,
		Temperature: 0,
		Timeout:     r.timeout,
		RequestID:   uuid.NewString(),
	}

	if req.JSONSchema != nil {
		schemaBytes, mErr := json.Marshal(req.JSONSchema)
		if mErr != nil {
			return nil, fmt.Errorf("marshal schema: %w", mErr)
		}
		chatReq.ResponseFormat = &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: schemaBytes,
		}
	}

	start := time.Now()
	result, err := binding.Client.Chat(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat with %s: %w", binding.Name, err)
	}

	raw := result.ParsedJSON
	if raw == nil {
		raw, err = providers.ParseJSONContent(result.Content)
		if err != nil {
			return nil, &ModelOutputParseError{Err: err, Content: result.Content}
		}
	} else if req.JSONSchema != nil {
		// Constrained decoding is provider-side; verify locally rather than
		// trusting it.
		if vErr := schema.ValidateDocument(req.JSONSchema, raw); vErr != nil {
			return nil, &ModelOutputParseError{Err: vErr, Content: string(raw)}
		}
	}

	records, err := normalizeRecords(raw)
	if err != nil {
		return nil, err
	}

	r.logger.Info("extraction complete",
		"model", binding.Name,
		"records", len(records),
		"tokens", result.TotalTokens,
		"duration", time.Since(start),
		"request_id", chatReq.RequestID)

	return &Response{Data: records}, nil
}

// normalizeRecords coerces model output into a list of records. Models asked
// for a list sometimes return a single object; that is wrapped rather than
// rejected. Anything else (scalars, nested junk) is a parse failure.
func normalizeRecords(raw json.RawMessage) ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			list = []map[string]any{}
		}
		return list, nil
	}

	var single map[string]any
	if err := json.Unmarshal(raw, &single); err == nil {
		return []map[string]any{single}, nil
	}

	return nil, &ModelOutputParseError{
		Err:     fmt.Errorf("model output is neither an object nor a list of objects"),
		Content: string(raw),
	}
}
