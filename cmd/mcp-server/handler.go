package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meetingtools/fathom-search-mcp/cmd/mcp-server/tools"
	"github.com/meetingtools/fathom-search-mcp/internal/audit"
	"github.com/meetingtools/fathom-search-mcp/pkg/fathom"
	"github.com/meetingtools/fathom-search-mcp/pkg/logger"
	"github.com/meetingtools/fathom-search-mcp/pkg/search"
)

// handler.go - MCP 协议处理器
// 支持的方法: initialize / tools/list / tools/call
// 其余方法一律返回 -32601（未知能力）

const (
	serverName    = "Meeting Search MCP Server"
	serverVersion = "1.0.0"
)

// NewMCPHandler 创建新的 MCP Handler 实例并注册所有工具
func NewMCPHandler(svc *search.Service, auditLogger *audit.Logger) *MCPHandler {
	registry := NewToolRegistry()

	// 搜索工具（唯一对外能力）
	registry.Register(&tools.SearchMeetingsTool{})

	logger.L().Info("tool registry initialized", "tools", len(registry.List()))

	return &MCPHandler{
		searchService: svc,
		registry:      registry,
		auditLogger:   auditLogger,
	}
}

// extractTokenFromRequest 从HTTP请求中提取token
func (h *MCPHandler) extractTokenFromRequest(r *http.Request) string {
	// 1. Authorization: Bearer token
	if auth := r.Header.Get("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			return strings.TrimPrefix(auth, "Bearer ")
		}
	}

	// 2. X-MCP-Token
	if mcpToken := r.Header.Get("X-MCP-Token"); mcpToken != "" {
		return mcpToken
	}

	return ""
}

// callerFromToken 从 JWT token 中提取调用方标识，用于审计归属
// 认证本身由前置的传输层完成，这里只读取 claim，不做签名校验
func callerFromToken(token string) string {
	if token == "" {
		return ""
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	for _, key := range []string{"username", "email", "sub"} {
		if v, ok := claims[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// ServeHTTP 实现 http.Handler 接口
func (h *MCPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-MCP-Token")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var mcpReq MCPRequest
	if err := json.Unmarshal(body, &mcpReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	switch mcpReq.Method {
	case "initialize":
		h.handleInitialize(w, mcpReq)

	case "tools/list":
		h.handleToolsList(w, mcpReq)

	case "tools/call":
		h.handleToolsCall(w, mcpReq, r)

	default:
		h.sendErrorResponse(w, mcpReq.ID, -32601, "Method not found", map[string]interface{}{
			"code": "unknown_capability",
		})
	}
}

// handleInitialize 处理 MCP 初始化请求
func (h *MCPHandler) handleInitialize(w http.ResponseWriter, req MCPRequest) {
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result": map[string]interface{}{
			"protocolVersion": "2025-06-18",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    serverName,
				"version": serverVersion,
			},
		},
	}
	json.NewEncoder(w).Encode(response)
}

// handleToolsList 处理工具列表请求
func (h *MCPHandler) handleToolsList(w http.ResponseWriter, req MCPRequest) {
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result": map[string]interface{}{
			"tools": h.registry.List(),
		},
	}
	json.NewEncoder(w).Encode(response)
}

// handleToolsCall 处理工具调用请求
func (h *MCPHandler) handleToolsCall(w http.ResponseWriter, req MCPRequest, r *http.Request) {
	// 管道内部错误统一转换为出站错误信封，不允许打穿请求
	defer func() {
		if rec := recover(); rec != nil {
			logger.L().Error("tool call panic", "panic", fmt.Sprintf("%v", rec))
			h.sendErrorResponse(w, req.ID, -32603, "Internal server error", map[string]interface{}{
				"code": "internal_error",
			})
		}
	}()

	name, ok := req.Params["name"].(string)
	if !ok {
		h.sendErrorResponse(w, req.ID, -32602, "Invalid params", "Missing or invalid tool name")
		return
	}

	arguments, ok := req.Params["arguments"].(map[string]interface{})
	if !ok && req.Params["arguments"] != nil {
		h.sendErrorResponse(w, req.ID, -32602, "Invalid params", "Arguments must be an object")
		return
	}
	if arguments == nil {
		arguments = make(map[string]interface{})
	}

	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = w.Header().Get("X-Request-ID")
	}
	caller := callerFromToken(h.extractTokenFromRequest(r))

	logger.L().Info("tool call", "rid", requestID, "tool", name, "caller", caller)

	start := time.Now()
	result, err := h.registry.Execute(r.Context(), name, arguments, requestID, h.searchService)
	h.recordAudit(requestID, caller, arguments, result, time.Since(start), err)
	if err != nil {
		h.sendToolError(w, req.ID, name, err)
		return
	}

	h.sendToolResult(w, req.ID, result)
}

// sendToolError 把管道错误映射到 JSON-RPC 错误码与机器可读代码
func (h *MCPHandler) sendToolError(w http.ResponseWriter, id interface{}, name string, err error) {
	logger.L().Error("tool call failed", "tool", name, "error", err)

	switch {
	case errors.Is(err, search.ErrInvalidRequest):
		h.sendErrorResponse(w, id, -32602, err.Error(), map[string]interface{}{
			"code": "invalid_request",
		})
	case strings.Contains(err.Error(), "not found"):
		h.sendErrorResponse(w, id, -32601, err.Error(), map[string]interface{}{
			"code": "unknown_capability",
		})
	default:
		h.sendErrorResponse(w, id, -32603, err.Error(), map[string]interface{}{
			"code": fathom.ErrorCode(err),
		})
	}
}

// recordAudit 写入一条搜索审计记录
// 成功时从结果信封回读计数字段，失败时只记录错误代码
func (h *MCPHandler) recordAudit(requestID, caller string, args map[string]interface{}, result string, duration time.Duration, err error) {
	if h.auditLogger == nil {
		return
	}

	rec := audit.SearchRecord{
		RequestID:  requestID,
		Caller:     caller,
		DurationMs: duration.Milliseconds(),
	}
	if term, ok := args["search_term"].(string); ok {
		rec.SearchTerm = term
	}

	if err != nil {
		if errors.Is(err, search.ErrInvalidRequest) {
			rec.ErrorCode = "invalid_request"
		} else {
			rec.ErrorCode = fathom.ErrorCode(err)
		}
		h.auditLogger.Record(rec)
		return
	}

	var envelope struct {
		TotalFound     int  `json:"total_found"`
		Showing        int  `json:"showing"`
		Truncated      bool `json:"truncated"`
		FiltersApplied struct {
			ExcludeTeams []string `json:"exclude_teams"`
			DaysBack     int      `json:"days_back"`
		} `json:"filters_applied"`
	}
	if jsonErr := json.Unmarshal([]byte(result), &envelope); jsonErr == nil {
		rec.TotalFound = envelope.TotalFound
		rec.Showing = envelope.Showing
		rec.Truncated = envelope.Truncated
		rec.ExcludeTeams = envelope.FiltersApplied.ExcludeTeams
		rec.DaysBack = envelope.FiltersApplied.DaysBack
	}
	h.auditLogger.Record(rec)
}
