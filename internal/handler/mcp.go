// MCP transport handler using the official MCP Go SDK.
// Exposes negotiation and catalog operations as MCP tools so agent
// frontends can haggle over the same engine the REST API uses.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"negobot/internal/chat"
	"negobot/internal/model"
	"negobot/internal/policy"
	"negobot/internal/search"
)

// === MCP Tool Input/Output Types ===

// NegotiateInput is the input schema for the negotiate tool.
type NegotiateInput struct {
	UserID    string `json:"user_id" jsonschema:"shopper identifier,required"`
	ProductID int64  `json:"product_id,omitempty" jsonschema:"product under negotiation (0 for general chat)"`
	Message   string `json:"message" jsonschema:"the shopper's utterance,required"`
}

// GetProductInput is the input schema for the get_product tool.
type GetProductInput struct {
	ID int64 `json:"id" jsonschema:"product ID,required"`
}

// SearchProductsInput is the input schema for the search_products tool.
type SearchProductsInput struct {
	Query string `json:"query" jsonschema:"free-text product query,required"`
	K     int    `json:"k,omitempty" jsonschema:"number of results (default 3)"`
}

// SearchProductsOutput wraps the ranked hits.
type SearchProductsOutput struct {
	Results []search.Result `json:"results"`
}

// GetPolicyInput is the input schema for the get_policy tool.
type GetPolicyInput struct{}

// NewMCPServer creates an MCP server with negotiation tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "negobot",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Price negotiation for the store catalog. " +
				"Use negotiate to relay shopper messages and offers; the engine " +
				"decides whether to accept, counter, or hold its floor.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "negotiate",
		Description: "Relay one shopper message. Returns the bot reply plus the structured decision and session state.",
	}, h.mcpNegotiate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_product",
		Description: "Get one catalog product by ID, including list price and stock.",
	}, h.mcpGetProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_products",
		Description: "Rank catalog products against a free-text query.",
	}, h.mcpSearchProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_policy",
		Description: "Get the live negotiation policy: stock bands, discount percentages, and floor ratio.",
	}, h.mcpGetPolicy)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpNegotiate(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input NegotiateInput,
) (*mcp.CallToolResult, *chat.Response, error) {
	resp, err := h.chat.Respond(ctx, &chat.Request{
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Message:   input.Message,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, resp, nil
}

func (h *Handler) mcpGetProduct(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetProductInput,
) (*mcp.CallToolResult, *model.Product, error) {
	if input.ID == 0 {
		return nil, nil, fmt.Errorf("id is required")
	}

	product, err := h.catalog.GetProduct(ctx, input.ID)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, product, nil
}

func (h *Handler) mcpSearchProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchProductsInput,
) (*mcp.CallToolResult, *SearchProductsOutput, error) {
	if h.index == nil {
		return nil, nil, fmt.Errorf("search is not enabled")
	}
	if input.Query == "" {
		return nil, nil, fmt.Errorf("query is required")
	}

	results, err := h.index.Search(ctx, input.Query, input.K)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &SearchProductsOutput{Results: results}, nil
}

func (h *Handler) mcpGetPolicy(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetPolicyInput,
) (*mcp.CallToolResult, *policy.Policy, error) {
	pol := h.policies.Get()
	return nil, &pol, nil
}

// mcpError converts service errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
