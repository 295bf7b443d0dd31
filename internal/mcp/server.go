package mcp

import (
	"context"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/hookcard/internal/config"
	"github.com/hpungsan/hookcard/internal/llm"
	"github.com/hpungsan/hookcard/internal/webhook"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"card_share": {
		def:     shareToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleShare },
	},
	"card_load": {
		def:     loadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLoad },
	},
	"card_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"card_send": {
		def:     sendToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSend },
	},
	"card_generate": {
		def:     generateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerate },
	},
	"card_lint": {
		def:     lintToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLint },
	},
	"card_templates": {
		def:     templatesToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTemplates },
	},
}

// AllToolNames returns all valid tool names, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with the card tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"hookcard",
		version,
		server.WithToolCapabilities(true),
	)

	disabled := make(map[string]bool)
	if h.cfg != nil {
		for _, name := range h.cfg.DisabledTools {
			disabled[name] = true
		}
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, withLogging(h.logger, name, entry.handler(h)))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(cfg *config.Config, gen llm.TextGenerator, transport webhook.Transport, logger *zap.Logger, version string) error {
	s := NewServer(NewHandlers(cfg, gen, transport, logger), version)
	return server.ServeStdio(s)
}

// withLogging records each tool call at debug level, and failures with their code.
func withLogging(logger *zap.Logger, name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := next(ctx, req)

		fields := []zap.Field{zap.String("tool", name), zap.Duration("elapsed", time.Since(start))}
		switch {
		case err != nil:
			logger.Error("tool call failed", append(fields, zap.Error(err))...)
		case result != nil && result.IsError:
			logger.Info("tool call returned error", fields...)
		default:
			logger.Debug("tool call", fields...)
		}
		return result, err
	}
}
