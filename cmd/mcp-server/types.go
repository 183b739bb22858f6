package main

import (
	"github.com/meetingtools/fathom-search-mcp/internal/audit"
	"github.com/meetingtools/fathom-search-mcp/pkg/search"
)

// types.go - 类型定义

// MCPRequest MCP 请求结构（JSON-RPC 2.0 信封）
type MCPRequest struct {
	Jsonrpc string                 `json:"jsonrpc"`
	ID      interface{}            `json:"id"`
	Method  string                 `json:"method"`
	Params  map[string]interface{} `json:"params"`
}

// MCPHandler HTTP处理器结构
type MCPHandler struct {
	searchService *search.Service
	registry      *ToolRegistry
	auditLogger   *audit.Logger // 可为 nil（审计关闭时）
}
