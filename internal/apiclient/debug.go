package apiclient

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"
)

func (c *Client) dumpRequest(req *http.Request) {
	if c == nil || !c.Config.Debug || c.DumpTo == nil {
		return
	}
	dump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		slog.Error("api.request.dump.failed", "path", req.URL.Path, "error", err)
		return
	}
	c.writeDebugDumpBlock("OUTBOUND REQUEST", dump)
}

// dumpResponse writes the response headers followed by body, which is the
// already size-limited body read by the caller.
func (c *Client) dumpResponse(resp *http.Response, body []byte) {
	if c == nil || !c.Config.Debug || c.DumpTo == nil {
		return
	}
	dump, err := httputil.DumpResponse(resp, false)
	if err != nil {
		slog.Error("api.response.dump.failed", "status", resp.StatusCode, "error", err)
		return
	}
	c.writeDebugDumpBlock("INBOUND RESPONSE", append(dump, body...))
}

func (c *Client) writeDebugDumpBlock(title string, data []byte) {
	c.dumpMu.Lock()
	defer c.dumpMu.Unlock()

	header := "===== " + strings.TrimSpace(title) + " BEGIN =====\n"
	footer := "===== " + strings.TrimSpace(title) + " END =====\n"

	var b strings.Builder
	b.WriteString(header)
	if len(data) > 0 {
		b.Write(data)
		if data[len(data)-1] != '\n' {
			b.WriteString("\n")
		}
	}
	b.WriteString(footer)
	if _, err := c.DumpTo.Write([]byte(b.String())); err != nil {
		slog.Error("api.dump.write.failed", "title", title, "error", err)
	}
}
