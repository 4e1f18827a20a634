package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
)

// toolCallMessage is the part of a JSON-RPC tools/call request needed for routing.
type toolCallMessage struct {
	JSONRPC string             `json:"jsonrpc"`
	ID      mcp.RequestId      `json:"id"`
	Method  mcp.MCPMethod      `json:"method"`
	Params  mcp.CallToolParams `json:"params"`
}

// interceptToolCall answers a tools/call request for a tool the program does
// not declare. mcp-go rejects such calls with a protocol error before any
// handler runs, so they are sent to the dispatcher here and answered with an
// "Unknown tool" result. It returns nil for every other message.
func (s *Server) interceptToolCall(ctx context.Context, message []byte) mcp.JSONRPCMessage {
	trimmed := bytes.TrimSpace(message)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var msg toolCallMessage
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return nil
	}
	if msg.JSONRPC != mcp.JSONRPC_VERSION || msg.Method != mcp.MethodToolsCall || msg.ID.IsNil() {
		return nil
	}
	if _, ok := s.dispatcher.tools[msg.Params.Name]; ok {
		return nil
	}

	req := mcp.CallToolRequest{Params: msg.Params}
	req.Method = string(mcp.MethodToolsCall)

	result, err := s.dispatcher.Handle(ctx, req)
	if err != nil {
		result = mcp.NewToolResultError(err.Error())
	}
	return mcp.JSONRPCResponse{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      msg.ID,
		Result:  result,
	}
}

// routeHTTP answers undeclared tool calls posted to next and passes every
// other request through unchanged.
func (s *Server) routeHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		_ = r.Body.Close()
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}

		if response := s.interceptToolCall(r.Context(), body); response != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			if err := json.NewEncoder(w).Encode(response); err != nil {
				slog.Error("Failed to write tool call response", "err", err)
			}
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// routeStdio copies newline-delimited messages from in to forward, answering
// undeclared tool calls on out instead. forward is closed once in is exhausted
// or fails.
func (s *Server) routeStdio(ctx context.Context, in io.Reader, forward *io.PipeWriter, out io.Writer) {
	reader := bufio.NewReader(in)
	for {
		line, readErr := reader.ReadBytes('\n')
		if len(line) > 0 {
			if response := s.interceptToolCall(ctx, line); response != nil {
				if err := writeMessage(out, response); err != nil {
					slog.Error("Failed to write tool call response", "err", err)
				}
			} else if _, err := forward.Write(line); err != nil {
				return
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				readErr = nil
			}
			forward.CloseWithError(readErr)
			return
		}
	}
}

func writeMessage(w io.Writer, message mcp.JSONRPCMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// syncWriter serializes writes so that messages written by the stdio server
// and by routeStdio never interleave.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
