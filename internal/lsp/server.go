package lsp

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/paramcheck/paramcheck/internal/config"
	"github.com/paramcheck/paramcheck/internal/devid"
	"github.com/paramcheck/paramcheck/internal/index"
	"github.com/paramcheck/paramcheck/internal/logger"
	"github.com/paramcheck/paramcheck/internal/lsp/cache"
	"github.com/paramcheck/paramcheck/internal/parser"
	"github.com/paramcheck/paramcheck/internal/schema"
	"github.com/paramcheck/paramcheck/internal/validator"
)

const diagnosticSource = "paramcheck"

var errExit = errors.New("exit requested")

type Server struct {
	schema  *schema.Schema
	checker *validator.Checker
	session *cache.Session
	graph   *index.IncludeGraph

	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer
}

// NewServer returns a server reading requests from in and writing responses
// to out. A nil schema limits diagnostics to parse and redefinition errors.
func NewServer(s *schema.Schema, checks config.Checks, in io.Reader, out io.Writer) *Server {
	return &Server{
		schema:  s,
		checker: validator.NewChecker(s, checks),
		session: cache.NewSession("paramcheck"),
		graph:   index.NewIncludeGraph(),
		reader:  bufio.NewReader(in),
		out:     out,
	}
}

// Run serves until the client sends exit or closes the input stream.
func (s *Server) Run() error {
	for {
		msg, err := readMessage(s.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				logger.Warn("malformed message", "error", err)
				s.respondError(nil, codeParseError, err.Error())
				continue
			}
			return err
		}

		if err := s.handleMessage(msg); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

func readMessage(reader *bufio.Reader) (*JsonRpcMessage, error) {
	var contentLength int
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		if line == "\r\n" || line == "\n" {
			break
		}
		if _, err := fmt.Sscanf(line, "Content-Length: %d", &contentLength); err == nil {
			continue
		}
	}
	if contentLength <= 0 {
		return nil, errors.New("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, err
	}

	var msg JsonRpcMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Server) handleMessage(msg *JsonRpcMessage) error {
	logger.Debug("lsp message", "method", msg.Method)

	switch msg.Method {
	case "initialize":
		var params InitializeParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.scanWorkspace(params)
		}
		s.respond(msg.ID, map[string]any{
			"capabilities": map[string]any{
				"textDocumentSync": map[string]any{
					"openClose": true,
					"change":    1, // full sync
					"save":      map[string]any{"includeText": true},
				},
				"hoverProvider": true,
			},
			"serverInfo": map[string]any{"name": "paramcheck"},
		})
	case "initialized":
	case "shutdown":
		s.respond(msg.ID, nil)
	case "exit":
		return errExit
	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			doc := s.session.Open(params.TextDocument.URI, params.TextDocument.Version, params.TextDocument.Text)
			s.graph.AddFile(uriToPath(doc.URI), doc.Text)
			s.publishDiagnostics(doc)
		}
	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil && len(params.ContentChanges) > 0 {
			// Full sync: the last change carries the whole document.
			text := params.ContentChanges[len(params.ContentChanges)-1].Text
			doc := s.session.Update(params.TextDocument.URI, params.TextDocument.Version, text)
			s.graph.AddFile(uriToPath(doc.URI), doc.Text)
			s.publishDiagnostics(doc)
		}
	case "textDocument/didSave":
		var params DidSaveTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.handleDidSave(params)
		}
	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(msg.Params, &params); err == nil {
			s.session.Close(params.TextDocument.URI)
			s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{
				URI:         params.TextDocument.URI,
				Diagnostics: []Diagnostic{},
			})
		}
	case "textDocument/hover":
		var params HoverParams
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			s.respondError(msg.ID, codeInvalidParams, err.Error())
			return nil
		}
		s.respond(msg.ID, s.handleHover(params))
	default:
		// Requests need an answer, notifications are dropped.
		if msg.ID != nil {
			s.respondError(msg.ID, codeMethodNotFound, "method not found: "+msg.Method)
		}
	}
	return nil
}

func (s *Server) handleDidSave(params DidSaveTextDocumentParams) {
	uri := params.TextDocument.URI
	path := uriToPath(uri)
	if params.Text != nil {
		version := 0
		if doc, ok := s.session.Document(uri); ok {
			version = doc.Version
		}
		doc := s.session.Update(uri, version, *params.Text)
		s.graph.AddFile(path, doc.Text)
	}
	if doc, ok := s.session.Document(uri); ok {
		s.publishDiagnostics(doc)
	}

	// Files including the saved one read it from disk.
	open := make(map[string]string)
	for _, u := range s.session.URIs() {
		open[filepath.Clean(uriToPath(u))] = u
	}
	for _, dep := range s.graph.Dependents(path) {
		u, ok := open[dep]
		if !ok || u == uri {
			continue
		}
		if doc, ok := s.session.Document(u); ok {
			s.publishDiagnostics(doc)
		}
	}
}

func (s *Server) scanWorkspace(params InitializeParams) {
	root := params.RootPath
	if params.RootURI != "" {
		root = uriToPath(params.RootURI)
	}
	if root == "" {
		return
	}
	if err := s.graph.ScanDirectory(root, nil); err != nil {
		logger.Warn("workspace scan failed", "root", root, "error", err)
	}
}

func uriToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return strings.TrimPrefix(uri, "file://")
	}
	return u.Path
}

// Diagnostics runs the checker on a document and converts the result to
// 0-based LSP diagnostics spanning the offending line.
func (s *Server) Diagnostics(doc *cache.Document) []Diagnostic {
	diags, err := s.checker.CheckContent(uriToPath(doc.URI), doc.Text)
	if err != nil {
		return []Diagnostic{{
			Range:    lineRange(doc, 0),
			Severity: severityError,
			Source:   diagnosticSource,
			Message:  err.Error(),
		}}
	}

	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		line := d.Line - 1
		if line < 0 {
			line = 0
		}
		out = append(out, Diagnostic{
			Range:    lineRange(doc, line),
			Severity: severityError,
			Source:   diagnosticSource,
			Message:  d.Message,
		})
	}
	return out
}

func lineRange(doc *cache.Document, line int) Range {
	return Range{
		Start: Position{Line: line},
		End:   Position{Line: line, Character: len([]rune(doc.Line(line)))},
	}
}

func (s *Server) publishDiagnostics(doc *cache.Document) {
	s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: s.Diagnostics(doc),
	})
}

func (s *Server) handleHover(params HoverParams) *Hover {
	doc, ok := s.session.Document(params.TextDocument.URI)
	if !ok {
		return nil
	}

	line, ok := parser.ScanLine(params.Position.Line+1, doc.Line(params.Position.Line))
	if !ok || line.Kind != parser.LineParam {
		return nil
	}

	content := s.describe(line)
	if content == "" {
		return nil
	}
	return &Hover{
		Contents: MarkupContent{
			Kind:  "markdown",
			Value: content,
		},
	}
}

func (s *Server) describe(line parser.Line) string {
	var b strings.Builder

	p, found := s.schema.Lookup(line.Name)
	switch {
	case s.schema == nil:
		fmt.Fprintf(&b, "**%s**", line.Name)
	case !found:
		fmt.Fprintf(&b, "**%s**\n\nNot found in metadata", line.Name)
	default:
		title := p.DisplayName
		if title == "" {
			title = line.Name
		}
		fmt.Fprintf(&b, "**%s** `%s`", title, line.Name)
		if p.Description != "" {
			fmt.Fprintf(&b, "\n\n%s", p.Description)
		}
		if p.Units != "" {
			fmt.Fprintf(&b, "\n\n**Units**: %s", p.Units)
		}
		if p.ReadOnly != nil && bool(*p.ReadOnly) {
			b.WriteString("\n\n**Read only**")
		}
		if p.Range != nil {
			fmt.Fprintf(&b, "\n\n**Range**: %s to %s", p.Range.Low, p.Range.High)
		}
		if len(p.Values) > 0 {
			fmt.Fprintf(&b, "\n\n**Values**:%s", formatTable(p.Values))
		}
		if len(p.Bitmask) > 0 {
			fmt.Fprintf(&b, "\n\n**Bitmask**:%s", formatTable(p.Bitmask))
		}
		if bool(p.RebootRequired) {
			b.WriteString("\n\nReboot required")
		}
	}

	if e := line.Entry; e != nil && devid.IsDeviceIDParam(line.Name) && e.Value >= 0 && e.Value <= 0xffffff && e.Value == float64(uint32(e.Value)) {
		fmt.Fprintf(&b, "\n\n**Device**: %s", devid.Decode(uint32(e.Value)))
	}
	return b.String()
}

// formatTable renders a metadata map as a markdown list ordered by numeric key.
func formatTable(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(keys[i], 64)
		b, errB := strconv.ParseFloat(keys[j], 64)
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- `%s`: %s", k, m[k])
	}
	return b.String()
}

func (s *Server) respond(id any, result any) {
	s.send(JsonRpcResponse{
		Jsonrpc: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (s *Server) respondError(id any, code int, message string) {
	s.send(JsonRpcErrorResponse{
		Jsonrpc: "2.0",
		ID:      id,
		Error:   &JsonRpcError{Code: code, Message: message},
	})
}

func (s *Server) notify(method string, params any) {
	body, err := json.Marshal(params)
	if err != nil {
		logger.Error("encode notification", "method", method, "error", err)
		return
	}
	s.send(JsonRpcMessage{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  body,
	})
}

func (s *Server) send(msg any) {
	body, err := json.Marshal(msg)
	if err != nil {
		logger.Error("encode message", "error", err)
		return
	}
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n%s", len(body), body)
}
