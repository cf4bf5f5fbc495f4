package mcpserver

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/notebook/internal/apperr"
)

func (s *Server) uploadSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text := req.GetString("text", "")
	dataURI := req.GetString("data", "")

	var data []byte
	switch {
	case dataURI != "":
		data, err = decodeDataURI(dataURI)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	case text != "":
		data = []byte(text)
	default:
		return mcp.NewToolResultError("one of text or data is required"), nil
	}

	res, err := s.svc.Upload(ctx, filename, data)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrFileTooLarge):
			return mcp.NewToolResultError(fmt.Sprintf("file too large: %d bytes (max %d)", len(data), s.svc.MaxUploadBytes())), nil
		case errors.Is(err, apperr.ErrUnsupportedType):
			return mcp.NewToolResultError("unsupported file type: only PDF and text files are accepted"), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return jsonResult(res), nil
}

// decodeDataURI parses a data:[<mediatype>];base64,<data> URI.
func decodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("invalid data URI: missing data: prefix")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, nil
}
