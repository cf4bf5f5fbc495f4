// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the notebook's sources, summaries, and notes to LLM clients over
// streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notebook/internal/apperr"
	"github.com/starford/notebook/internal/notebook"
)

const defaultSearchLimit = 20

// Server wraps the MCP server with notebook tools.
type Server struct {
	mcp *server.MCPServer
	svc *notebook.Service
}

// New creates a new MCP server with all notebook tools registered.
func New(svc *notebook.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Notebook",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List uploaded documents with their individual summaries."),
	), s.listSources)

	s.mcp.AddTool(mcp.NewTool("get_source",
		mcp.WithDescription("Read the extracted text and summary of one uploaded document."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Source id")),
	), s.getSource)

	s.mcp.AddTool(mcp.NewTool("get_summaries",
		mcp.WithDescription("Get every individual summary plus the combined summary of all documents."),
	), s.getSummaries)

	s.mcp.AddTool(mcp.NewTool("upload_source",
		mcp.WithDescription("Upload a text or PDF document. It is summarized with earlier "+
			"documents as context and the combined summary is rebuilt."),
		mcp.WithString("filename", mcp.Required(), mcp.Description("File name including extension (e.g. notes.md, paper.pdf)")),
		mcp.WithString("text", mcp.Description("Plain text content for text files")),
		mcp.WithString("data", mcp.Description("Base64 data URI (data:<mime>;base64,...) for binary files such as PDF")),
	), s.uploadSource)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Inline #hashtags in the content become searchable tags."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note body")),
		mcp.WithArray("tags", mcp.Description("Optional tags"), mcp.Items(map[string]any{"type": "string"})),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("analyze_note",
		mcp.WithDescription("Ask the LLM for insights on a note. The analysis is not stored."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.analyzeNote)

	s.mcp.AddTool(mcp.NewTool("search",
		mcp.WithDescription("Full-text search across uploaded documents and notes."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.search)

	s.mcp.AddResource(
		mcp.NewResource(combinedURI, "Combined Summary",
			mcp.WithResourceDescription("Summary of every uploaded document taken together."),
			mcp.WithMIMEType("text/plain"),
		),
		s.readCombined,
	)

	return s
}

// Handler returns a streamable HTTP handler for mounting on a router.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listSources(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Summaries(ctx).IndividualSummaries), nil
}

func (s *Server) getSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := s.svc.GetSource(ctx, id)
	if err != nil {
		return mcp.NewToolResultError("source not found: " + id), nil
	}
	return jsonResult(src), nil
}

func (s *Server) getSummaries(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Summaries(ctx)), nil
}

func (s *Server) listNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListNotes(ctx)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := req.GetStringSlice("tags", nil)
	return jsonResult(s.svc.CreateNote(ctx, title, content, tags)), nil
}

func (s *Server) analyzeNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	analysis, err := s.svc.AnalyzeNote(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError("note not found: " + id), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(analysis), nil
}

func (s *Server) search(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultSearchLimit)
	results, err := s.svc.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

const combinedURI = "notebook://summaries/combined"

func (s *Server) readCombined(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	text := ""
	if c := s.svc.Summaries(ctx).CombinedSummary; c != nil {
		text = *c
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      combinedURI,
			MIMEType: "text/plain",
			Text:     text,
		},
	}, nil
}
