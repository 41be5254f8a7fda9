package stdio

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/mcp"
	"github.com/reusedev/draw-mcp/internal/service/mcpserver"
)

const maxLineBytes = 10 * 1024 * 1024

// Serve reads newline-delimited JSON-RPC requests from stdin and writes
// responses to stdout, one per line, until EOF. Stdout carries protocol
// frames only; the logger writes elsewhere.
func Serve(ctx context.Context, core *mcpserver.Core) error {
	logs.Logger.Info().Msg("stdio transport reading")
	return serve(ctx, core, os.Stdin, os.Stdout)
}

func serve(ctx context.Context, core *mcpserver.Core, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	w := bufio.NewWriter(out)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var req mcp.Request
		if err := jsoniter.Unmarshal(line, &req); err != nil {
			if err = writeFrame(w, mcp.NewErrorResponse(nil, consts.RPCParseError, "Parse error: Invalid JSON")); err != nil {
				return err
			}
			continue
		}
		if resp := answer(ctx, core, &req); resp != nil {
			if err := writeFrame(w, resp); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

// answer applies the transport-level envelope checks the HTTP layer does,
// then dispatches. Stdio has no session concept, so the session id is
// always empty.
func answer(ctx context.Context, core *mcpserver.Core, req *mcp.Request) *mcp.Response {
	if req.JSONRPC != "2.0" {
		return mcp.NewErrorResponse(req.ID, consts.RPCInvalidRequest, "Invalid Request: Missing or invalid 'jsonrpc' field")
	}
	if req.Method == "" {
		return mcp.NewErrorResponse(req.ID, consts.RPCInvalidRequest, "Invalid Request: Missing 'method' field")
	}
	return core.Dispatch(ctx, "", req)
}

func writeFrame(w *bufio.Writer, resp *mcp.Response) error {
	b, err := jsoniter.Marshal(resp)
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if _, err = w.Write(b); err != nil {
		return err
	}
	return w.Flush()
}
