package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elad12390/bfl-api-mcp/internal/bfl"
	"github.com/elad12390/bfl-api-mcp/internal/mcp"
	"github.com/elad12390/bfl-api-mcp/internal/storage"
)

// Report defaults echoed when the caller leaves a parameter unset.
const (
	defaultWidth           = 1024
	defaultHeight          = 768
	defaultSafetyTolerance = 2
	promptPreviewLimit     = 100
)

// ErrArtifactNotFound indicates a Ready result without a recognizable
// artifact reference.
var ErrArtifactNotFound = errors.New("no artifact reference found in result payload")

// Handler processes MCP requests and calls the generation tools.
type Handler struct {
	client       bfl.Client
	saver        storage.Saver
	maxWait      time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewHandler creates a new tool handler.
func NewHandler(client bfl.Client, saver storage.Saver, maxWait, pollInterval time.Duration) *Handler {
	return &Handler{
		client:       client,
		saver:        saver,
		maxWait:      maxWait,
		pollInterval: pollInterval,
		logger:       slog.Default(),
	}
}

// HandleRequest routes incoming MCP requests to the appropriate handler
// method. It returns nil for notifications, which expect no response.
func (h *Handler) HandleRequest(request mcp.JSONRPCRequest) *mcp.JSONRPCResponse {
	if strings.HasPrefix(request.Method, "notifications/") {
		h.logger.Debug("Ignoring notification", "method", request.Method)
		return nil
	}
	h.logger.Debug("Handling request", "method", request.Method, "id", request.ID)

	var response mcp.JSONRPCResponse
	switch request.Method {
	case "initialize":
		response = h.handleInitialize(request)
	case "tools/list":
		response = h.handleListTools(request)
	case "tools/call":
		response = h.handleCallTool(request)
	case "resources/list":
		response = h.handleListResources(request)
	case "resources/read":
		response = h.handleReadResource(request)
	default:
		response = mcp.NewErrorResponse(request.ID, -32601, "Method not found", request.Method)
	}
	return &response
}

func (h *Handler) handleInitialize(request mcp.JSONRPCRequest) mcp.JSONRPCResponse {
	h.logger.Info("Handling initialize request", "id", request.ID)
	return mcp.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      request.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]interface{}{
				"name":    "bfl-mcp-server",
				"version": "0.1.0",
			},
			"capabilities": map[string]interface{}{
				"tools":     map[string]interface{}{},
				"resources": map[string]interface{}{},
			},
		},
	}
}

func (h *Handler) handleListTools(request mcp.JSONRPCRequest) mcp.JSONRPCResponse {
	toolsSlice := make([]map[string]interface{}, 0, len(toolOrder))
	for _, name := range toolOrder {
		cfg := models[name]
		toolsSlice = append(toolsSlice, map[string]interface{}{
			"name":        name,
			"description": cfg.Schema["description"],
			"inputSchema": cfg.Schema["inputSchema"],
		})
	}
	return mcp.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      request.ID,
		Result:  map[string]interface{}{"tools": toolsSlice},
	}
}

// handleCallTool runs one tool invocation. Addressing errors (unknown tool)
// surface as JSON-RPC errors; everything that goes wrong inside a known tool
// becomes a textual report with isError set, so a tool call never raises past
// this boundary.
func (h *Handler) handleCallTool(request mcp.JSONRPCRequest) mcp.JSONRPCResponse {
	toolName := request.Params.Name
	h.logger.Info("Handling tools/call request", "tool_name", toolName, "id", request.ID)

	cfg, ok := models[toolName]
	if !ok {
		return mcp.NewErrorResponse(request.ID, -32601, "Tool not found: "+toolName, nil)
	}

	report, isError := h.invoke(context.Background(), toolName, cfg, request.Params.Arguments)

	return mcp.JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      request.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": report},
			},
			"isError": isError,
		},
	}
}

// invoke validates the arguments, runs the remote round trip, saves the
// artifact and formats the outcome. The returned bool reports failure.
func (h *Handler) invoke(ctx context.Context, toolName string, cfg modelConfig, args map[string]interface{}) (string, bool) {
	if args == nil {
		args = map[string]interface{}{}
	}

	prompt, _ := args["prompt"].(string)
	if msg := validateArgs(prompt, args); msg != "" {
		return fmt.Sprintf("Error generating image with %s: %s", toolName, msg), true
	}

	// Local-only fields must never reach the submission payload.
	payload := make(map[string]interface{}, len(args))
	for key, value := range args {
		if key == "output_path" || key == "filename" {
			continue
		}
		payload[key] = value
	}
	outputPath, _ := args["output_path"].(string)
	filename, _ := args["filename"].(string)

	taskID, err := h.client.Submit(ctx, cfg.Endpoint, payload)
	if err != nil {
		return fmt.Sprintf("Error generating image with %s: %v", toolName, err), true
	}
	h.logger.Info("Task submitted", "tool", toolName, "task_id", taskID)

	result, err := h.client.AwaitCompletion(ctx, taskID, bfl.AwaitOptions{
		MaxWait:      h.maxWait,
		PollInterval: h.pollInterval,
		OnProgress: func(status *bfl.TaskResult) {
			if status.Progress != nil {
				h.logger.Debug("Task progress", "task_id", taskID, "status", status.Status, "progress", *status.Progress)
			} else {
				h.logger.Debug("Task progress", "task_id", taskID, "status", status.Status)
			}
		},
	})
	if err != nil {
		return fmt.Sprintf("Error generating image with %s: %v", toolName, err), true
	}

	artifactURL, err := extractArtifactURL(result.Result)
	if err != nil {
		return fmt.Sprintf("Error generating image with %s: %v", toolName, err), true
	}

	saved, err := h.saver.Save(ctx, storage.SaveRequest{
		URL:          artifactURL,
		OutputPath:   outputPath,
		Filename:     filename,
		Prompt:       prompt,
		Model:        cfg.DisplayName,
		OutputFormat: "jpg",
	})
	if err != nil {
		return fmt.Sprintf("Error generating image with %s: %v", toolName, err), true
	}

	return formatSuccessReport(cfg, args, prompt, taskID, artifactURL, saved), false
}

// validateArgs applies the call-time constraints in a fixed order: prompt,
// width, height, safety_tolerance. The first violation wins. An empty string
// means the arguments are valid.
func validateArgs(prompt string, args map[string]interface{}) string {
	if prompt == "" {
		return "the 'prompt' parameter is required and must be a non-empty string"
	}
	if msg := validateDimension(args, "width"); msg != "" {
		return msg
	}
	if msg := validateDimension(args, "height"); msg != "" {
		return msg
	}
	if raw, present := args["safety_tolerance"]; present {
		tolerance, ok := intValue(raw)
		if !ok || tolerance < 0 || tolerance > 6 {
			return "'safety_tolerance' must be an integer between 0 and 6"
		}
	}
	return ""
}

func validateDimension(args map[string]interface{}, name string) string {
	raw, present := args[name]
	if !present {
		return ""
	}
	value, ok := intValue(raw)
	if !ok || value <= 0 || value%32 != 0 {
		return fmt.Sprintf("'%s' must be a positive integer divisible by 32", name)
	}
	return ""
}

// intValue converts a decoded JSON value to an int. Floats only convert when
// they carry no fractional part.
func intValue(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int(v), true
	}
	return 0, false
}

// extractArtifactURL pulls the generated image reference out of a Ready
// result payload. The service returns either an object with a sample field or
// a sequence whose first element is the reference.
func extractArtifactURL(result interface{}) (string, error) {
	switch payload := result.(type) {
	case map[string]interface{}:
		if sample, ok := payload["sample"].(string); ok && sample != "" {
			return sample, nil
		}
	case []interface{}:
		if len(payload) == 0 {
			break
		}
		switch first := payload[0].(type) {
		case string:
			if first != "" {
				return first, nil
			}
		case map[string]interface{}:
			if sample, ok := first["sample"].(string); ok && sample != "" {
				return sample, nil
			}
		}
	}
	return "", ErrArtifactNotFound
}

func formatSuccessReport(cfg modelConfig, args map[string]interface{}, prompt, taskID, artifactURL string, saved *storage.SaveResult) string {
	// Truncate on runes so a multi-byte prompt is never split mid-character.
	preview := prompt
	if runes := []rune(preview); len(runes) > promptPreviewLimit {
		preview = string(runes[:promptPreviewLimit]) + "..."
	}

	width := intArgOrDefault(args, "width", defaultWidth)
	height := intArgOrDefault(args, "height", defaultHeight)
	steps := intArgOrDefault(args, "steps", cfg.DefaultSteps)
	safety := intArgOrDefault(args, "safety_tolerance", defaultSafetyTolerance)

	guidance := cfg.DefaultGuidance
	if raw, present := args["guidance"]; present {
		if v, ok := raw.(float64); ok {
			guidance = v
		}
	}

	seed := "random"
	if raw, present := args["seed"]; present {
		if v, ok := intValue(raw); ok {
			seed = fmt.Sprintf("%d", v)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Image generated successfully with %s\n\n", cfg.DisplayName)
	fmt.Fprintf(&b, "Prompt: %s\n", preview)
	fmt.Fprintf(&b, "Saved to: %s\n", saved.SavedPath)
	fmt.Fprintf(&b, "Task ID: %s\n", taskID)
	fmt.Fprintf(&b, "Source URL: %s\n\n", artifactURL)
	fmt.Fprintf(&b, "Parameters:\n")
	fmt.Fprintf(&b, "  Dimensions: %dx%d\n", width, height)
	fmt.Fprintf(&b, "  Seed: %s\n", seed)
	fmt.Fprintf(&b, "  Steps: %d\n", steps)
	fmt.Fprintf(&b, "  Guidance: %g\n", guidance)
	fmt.Fprintf(&b, "  Safety tolerance: %d", safety)
	return b.String()
}

func intArgOrDefault(args map[string]interface{}, name string, fallback int) int {
	if raw, present := args[name]; present {
		if v, ok := intValue(raw); ok {
			return v
		}
	}
	return fallback
}
