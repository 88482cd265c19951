// Package lsp exposes the analyzers over the language server protocol:
// validation published as diagnostics on open/change, the external checker
// merged in on save, plus formatting, hover and completion backed by the
// command table.
package lsp

import (
	con "context"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/scr-community/scr-dev-tools/internal/checker"
	"github.com/scr-community/scr-dev-tools/internal/commands"
	"github.com/scr-community/scr-dev-tools/internal/config"
	"github.com/scr-community/scr-dev-tools/internal/formatter"
	"github.com/scr-community/scr-dev-tools/internal/logger"
	"github.com/scr-community/scr-dev-tools/internal/lsp/cache"
	"github.com/scr-community/scr-dev-tools/internal/scan"
	"github.com/scr-community/scr-dev-tools/internal/validator"
)

const lsName = "scrtool"

// Version is stamped by the build.
var Version = "dev"

// checkerTimeout bounds one external checker run.
const checkerTimeout = 15 * time.Second

type Server struct {
	handler *protocol.Handler
	store   *cache.Store
	table   *commands.Table
	cfg     config.Config
	runner  checker.Runner
}

// NewServer wires the handlers and returns a stdio-ready server.
func NewServer() *server.Server {
	ls := &Server{
		store: cache.NewStore(),
		table: commands.Default(),
		cfg:   config.Default(),
	}
	ls.handler = &protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentFormatting: ls.textDocumentFormatting,
		TextDocumentHover:      ls.textDocumentHover,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}
	return server.NewServer(ls.handler, lsName, false)
}

func (ls *Server) initialize(
	context *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	root := ""
	if params.RootURI != nil {
		if u, err := url.Parse(*params.RootURI); err == nil {
			root = u.Path
		}
	}
	cfg, cfgRoot := config.LoadForDir(root)
	ls.cfg = cfg

	extra := make([]string, 0, len(cfg.Commands))
	for _, p := range cfg.Commands {
		if !filepath.IsAbs(p) && cfgRoot != "" {
			p = filepath.Join(cfgRoot, p)
		}
		extra = append(extra, p)
	}
	ls.table = commands.LoadFull(cfgRoot, extra...)
	logger.Printf("workspace %q: %d commands loaded", root, ls.table.Len())

	if cfg.Checker.Binary != "" {
		ls.runner = &checker.ProcessRunner{
			Binary: cfg.Checker.Binary,
			Args:   cfg.Checker.Args,
			Table:  ls.table,
		}
	}

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &protocol.True,
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: &protocol.True},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &Version,
		},
	}, nil
}

func (ls *Server) initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	logger.Println("client initialized")
	return nil
}

func (ls *Server) shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *Server) setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(
	context *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	ls.store.Open(uri, params.TextDocument.Text, params.TextDocument.Version)
	ls.publish(context, uri)
	return nil
}

func (ls *Server) textDocumentDidChange(
	context *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	doc, ok := ls.store.Get(uri)
	if !ok {
		return fmt.Errorf("change for unopened document %s", uri)
	}
	text := doc.Text
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = change.Text
		case protocol.TextDocumentContentChangeEvent:
			text = applyChange(text, change.Range, change.Text)
		default:
			return fmt.Errorf("unexpected change event type %T", raw)
		}
	}
	ls.store.Update(uri, text, params.TextDocument.Version)
	ls.publish(context, uri)
	return nil
}

func (ls *Server) textDocumentDidSave(
	context *glsp.Context,
	params *protocol.DidSaveTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	doc, ok := ls.store.Get(uri)
	if !ok {
		return nil
	}
	if params.Text != nil && *params.Text != doc.Text {
		ls.store.Update(uri, *params.Text, doc.Version)
		doc, _ = ls.store.Get(uri)
	}
	ls.publish(context, uri)
	if ls.runner != nil {
		go ls.runChecker(context, doc)
	}
	return nil
}

// runChecker feeds the saved text to the external checker and publishes the
// merged result, unless the document changed or closed in the meantime.
func (ls *Server) runChecker(context *glsp.Context, doc cache.Document) {
	ctx, cancel := con.WithTimeout(con.Background(), checkerTimeout)
	defer cancel()

	diags := checker.Check(ctx, ls.runner, uriPath(doc.URI), doc.Text, nil)
	if len(diags) == 0 {
		return
	}
	if !ls.store.Current(doc.URI, doc.Version) {
		logger.Debugf("dropping stale checker result for %s", doc.URI)
		return
	}
	merged := append(ls.validate(doc), diags...)
	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: toProtocolDiagnostics(merged),
	})
}

func (ls *Server) textDocumentDidClose(
	context *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	ls.store.Close(uri)
	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *Server) textDocumentFormatting(
	context *glsp.Context,
	params *protocol.DocumentFormattingParams,
) ([]protocol.TextEdit, error) {
	doc, ok := ls.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	opts := formatter.Options{}
	if v, ok := params.Options[protocol.FormattingOptionInsertSpaces].(bool); ok {
		opts.InsertSpaces = v
	}
	if v, ok := params.Options[protocol.FormattingOptionTabSize].(float64); ok {
		opts.TabSize = int(v)
	}
	if opts.TabSize <= 0 {
		opts = ls.cfg.FormatterOptions()
	}
	return formattingEdits(doc.Text, formatter.Format(doc.Text, opts)), nil
}

func (ls *Server) textDocumentHover(
	context *glsp.Context,
	params *protocol.HoverParams,
) (*protocol.Hover, error) {
	doc, ok := ls.store.Get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	lines := scan.SplitLines(doc.Text)
	line := int(params.Position.Line)
	if line < 0 || line >= len(lines) {
		return nil, nil
	}
	word, start, end := scan.WordAt(lines[line], int(params.Position.Character))
	if word == "" {
		return nil, nil
	}
	value := ls.hoverText(word)
	if value == "" {
		return nil, nil
	}
	rng := protocol.Range{
		Start: protocol.Position{Line: params.Position.Line, Character: protocol.UInteger(start)},
		End:   protocol.Position{Line: params.Position.Line, Character: protocol.UInteger(end)},
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
		Range: &rng,
	}, nil
}

// hoverText renders the markdown for a command or keyword, or "" when the
// word is neither.
func (ls *Server) hoverText(word string) string {
	if cmd, ok := ls.table.Lookup(word); ok {
		var b strings.Builder
		fmt.Fprintf(&b, "**%s**", strings.ToLower(word))
		if cmd.EventVar != "" {
			fmt.Fprintf(&b, " — `%s`", cmd.EventVar)
		}
		if cmd.File != "" {
			fmt.Fprintf(&b, " (%s)", cmd.File)
		}
		if len(cmd.Args) > 0 {
			fmt.Fprintf(&b, "\n\nArguments: `%s`", strings.Join(cmd.Args, "`, `"))
		}
		if cmd.Doc != "" {
			fmt.Fprintf(&b, "\n\n%s", cmd.Doc)
		}
		return b.String()
	}
	if category := scan.KeywordCategory(word); category != "" {
		return fmt.Sprintf("**%s** — %s keyword", strings.ToLower(word), category)
	}
	return ""
}

func (ls *Server) textDocumentCompletion(
	context *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	return ls.completionItems(), nil
}

// completionItems lists every command and keyword; the client filters by
// the typed prefix.
func (ls *Server) completionItems() []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, ls.table.Len())
	fnKind := protocol.CompletionItemKindFunction
	for _, name := range ls.table.Names() {
		cmd, _ := ls.table.Lookup(name)
		item := protocol.CompletionItem{
			Label: name,
			Kind:  &fnKind,
		}
		if cmd.EventVar != "" {
			detail := cmd.EventVar
			item.Detail = &detail
		}
		if cmd.Doc != "" {
			item.Documentation = cmd.Doc
		}
		items = append(items, item)
	}
	kwKind := protocol.CompletionItemKindKeyword
	keywords := scan.Keywords()
	sort.Strings(keywords)
	for _, kw := range keywords {
		detail := scan.KeywordCategory(kw) + " keyword"
		items = append(items, protocol.CompletionItem{
			Label:  kw,
			Kind:   &kwKind,
			Detail: &detail,
		})
	}
	return items
}

// publish sends the validator's diagnostics for the current snapshot.
func (ls *Server) publish(context *glsp.Context, uri string) {
	doc, ok := ls.store.Get(uri)
	if !ok {
		return
	}
	context.Notify("textDocument/publishDiagnostics", protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(ls.validate(doc)),
	})
}

func (ls *Server) validate(doc cache.Document) []validator.Diagnostic {
	return validator.Validate(validator.Document{URI: doc.URI, Text: doc.Text}, ls.table)
}

// uriPath strips the file scheme so the checker sees a real path.
func uriPath(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Path != "" {
		return u.Path
	}
	return uri
}
