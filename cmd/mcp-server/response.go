package main

import (
	"encoding/json"
	"net/http"
)

// response.go - 响应处理
// JSON-RPC 2.0 成功/错误信封的构建与发送
// 错误与成功载荷互斥：任一阶段失败则整个请求失败，不混合部分结果

// sendErrorResponse 发送 JSON-RPC 2.0 错误响应
// 参数:
//   - w: HTTP响应writer
//   - id: 请求ID
//   - code: 错误代码（JSON-RPC 2.0标准错误码）
//   - message: 错误消息
//   - data: 可选的额外错误数据（机器可读错误代码等）
func (h *MCPHandler) sendErrorResponse(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
	if data != nil {
		response["error"].(map[string]interface{})["data"] = data
	}
	json.NewEncoder(w).Encode(response)
}

// sendToolResult 发送工具执行成功响应（MCP协议格式）
// 参数:
//   - w: HTTP响应writer
//   - id: 请求ID
//   - text: 工具输出文本
func (h *MCPHandler) sendToolResult(w http.ResponseWriter, id interface{}, text string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
		},
	})
}
