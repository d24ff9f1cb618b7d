package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	MCPVersion       = "2024-11-05"
	JSONRPC          = "2.0"
	MCPServerName    = "modelscout"
	MCPServerVersion = "0.1.0"
)

const (
	MCPErrorCodeParseError     = -32700
	MCPErrorCodeInvalidRequest = -32600
	MCPErrorCodeMethodNotFound = -32601
	MCPErrorCodeInvalidParams  = -32602
	MCPErrorCodeInternalError  = -32603
	MCPErrorCodeToolNotFound   = -32001
	MCPErrorCodeToolExecution  = -32002
)

type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type MCPResponse struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id,omitempty"`
	Result  any       `json:"result,omitempty"`
	Error   *MCPError `json:"error,omitempty"`
}

type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error [%d]: %s", e.Code, e.Message)
}

type MCPInitializeParams struct {
	ProtocolVersion string                `json:"protocolVersion"`
	ClientInfo      MCPImplementationInfo `json:"clientInfo"`
	Capabilities    MCPClientCapabilities `json:"capabilities"`
}

type MCPInitializeResult struct {
	ProtocolVersion string                `json:"protocolVersion"`
	ServerInfo      MCPImplementationInfo `json:"serverInfo"`
	Capabilities    MCPServerCapabilities `json:"capabilities"`
	Instructions    string                `json:"instructions,omitempty"`
}

type MCPImplementationInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type MCPClientCapabilities struct {
	Roots    *MCPRootsCapability    `json:"roots,omitempty"`
	Sampling *MCPSamplingCapability `json:"sampling,omitempty"`
}

type MCPRootsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type MCPSamplingCapability struct{}

type MCPServerCapabilities struct {
	Tools *MCPToolsCapability `json:"tools,omitempty"`
}

type MCPToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

type MCPAdapter struct {
	gateway     *Gateway
	initialized bool
	clientInfo  *MCPImplementationInfo
}

func NewMCPAdapter(gateway *Gateway) *MCPAdapter {
	return &MCPAdapter{
		gateway: gateway,
	}
}

func (a *MCPAdapter) HandleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	if req.JSONRPC != JSONRPC {
		return a.errorResponse(req.ID, MCPErrorCodeInvalidRequest, "invalid JSON-RPC version")
	}

	if req.Method == "" {
		return a.errorResponse(req.ID, MCPErrorCodeInvalidRequest, "method is required")
	}

	switch req.Method {
	case "initialize":
		return a.handleInitialize(ctx, req)
	case "notifications/initialized":
		a.handleInitialized(req)
		return nil
	case "ping":
		return a.handlePing(ctx, req)
	case "tools/list":
		return a.handleToolsList(ctx, req)
	case "tools/call":
		return a.handleToolsCall(ctx, req)
	case "shutdown":
		return a.handleShutdown(ctx, req)
	default:
		return a.errorResponse(req.ID, MCPErrorCodeMethodNotFound, "method not found: "+req.Method)
	}
}

func (a *MCPAdapter) handleInitialize(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params MCPInitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return a.errorResponse(req.ID, MCPErrorCodeInvalidParams, "invalid initialize params: "+err.Error())
		}
	}

	a.clientInfo = &params.ClientInfo
	a.initialized = true

	result := &MCPInitializeResult{
		ProtocolVersion: MCPVersion,
		ServerInfo: MCPImplementationInfo{
			Name:    MCPServerName,
			Version: MCPServerVersion,
		},
		Capabilities: MCPServerCapabilities{
			Tools: &MCPToolsCapability{
				ListChanged: false,
			},
		},
		Instructions: "modelscout MCP server - recommend AI models from the live catalog",
	}

	return a.successResponse(req.ID, result)
}

func (a *MCPAdapter) handleInitialized(req *MCPRequest) {
	a.initialized = true
}

func (a *MCPAdapter) handlePing(ctx context.Context, req *MCPRequest) *MCPResponse {
	return a.successResponse(req.ID, map[string]any{})
}

func (a *MCPAdapter) handleShutdown(ctx context.Context, req *MCPRequest) *MCPResponse {
	a.initialized = false
	return a.successResponse(req.ID, nil)
}

func (a *MCPAdapter) successResponse(id any, result any) *MCPResponse {
	return &MCPResponse{
		JSONRPC: JSONRPC,
		ID:      id,
		Result:  result,
	}
}

func (a *MCPAdapter) errorResponse(id any, code int, message string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: JSONRPC,
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
}

func (a *MCPAdapter) errorResponseWithData(id any, code int, message string, data any) *MCPResponse {
	return &MCPResponse{
		JSONRPC: JSONRPC,
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

func (a *MCPAdapter) Gateway() *Gateway {
	return a.gateway
}

func (a *MCPAdapter) IsInitialized() bool {
	return a.initialized
}

// Published tool names diverge from the internal unit names so the
// tool surface reads naturally to MCP clients.
var toolNameByUnit = map[string]string{
	"catalog.sync":         "sync_catalog",
	"catalog.profile":      "get_model_profile",
	"recommend.task2model": "task2model",
}

var unitNameByTool = func() map[string]string {
	m := make(map[string]string, len(toolNameByUnit))
	for unit, tool := range toolNameByUnit {
		m[tool] = unit
	}
	return m
}()

func unitNameToToolName(unitName string) string {
	if tool, ok := toolNameByUnit[unitName]; ok {
		return tool
	}
	return strings.ReplaceAll(unitName, ".", "_")
}

func toolNameToUnitName(toolName string) string {
	if unitName, ok := unitNameByTool[toolName]; ok {
		return unitName
	}
	parts := strings.Split(toolName, "_")
	if len(parts) < 2 {
		return toolName
	}
	return parts[0] + "." + strings.Join(parts[1:], "_")
}
