package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/wodcoach/internal/issues"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) movementCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	movements, err := h.b.Movements(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(movements)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

type issueCode struct {
	Code     int          `json:"code"`
	Name     string       `json:"name"`
	Severity string       `json:"severity"`
	Range    issues.Range `json:"range"`
}

func (h *handlers) issueCodes(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	codes := issues.Codes()
	out := make([]issueCode, 0, len(codes))
	for _, c := range codes {
		out = append(out, issueCode{Code: int(c), Name: c.String(), Severity: c.Severity().String(), Range: c.Range()})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
