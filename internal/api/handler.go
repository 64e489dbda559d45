package api

import (
	"context"
	"errors"
	"strings"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"github.com/rpgo/rmd-simulator/internal/store"
)

// ItemStore is the storage surface the handler needs.
type ItemStore interface {
	PutItem(ctx context.Context, id, body string) error
	GetItem(ctx context.Context, id string) (string, error)
}

// Handler serves the item key-value API: GET /items/<id> fetches a stored
// document, POST /items stores one keyed by its "id" field.
type Handler struct {
	store ItemStore
}

// NewHandler creates a handler over the given store.
func NewHandler(s ItemStore) *Handler {
	return &Handler{store: s}
}

type errorResponse struct {
	Error string `json:"error"`
}

type createdResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HandleRequest routes a request by HTTP method.
func (h *Handler) HandleRequest(ctx *fasthttp.RequestCtx) {
	setCORSHeaders(ctx)

	switch string(ctx.Method()) {
	case fasthttp.MethodGet:
		h.handleGet(ctx)
	case fasthttp.MethodPost:
		h.handlePost(ctx)
	case fasthttp.MethodOptions:
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	default:
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *Handler) handleGet(ctx *fasthttp.RequestCtx) {
	id := strings.TrimPrefix(string(ctx.Path()), "/items/")
	if id == "" || strings.Contains(id, "/") || !strings.HasPrefix(string(ctx.Path()), "/items/") {
		writeError(ctx, fasthttp.StatusBadRequest, "Missing id parameter")
		return
	}

	body, err := h.store.GetItem(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(ctx, fasthttp.StatusNotFound, "Item not found")
		return
	}
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(body)
}

func (h *Handler) handlePost(ctx *fasthttp.RequestCtx) {
	if string(ctx.Path()) != "/items" {
		writeError(ctx, fasthttp.StatusBadRequest, "Unknown path")
		return
	}

	var doc map[string]any
	if err := json.Unmarshal(ctx.PostBody(), &doc); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	id, _ := doc["id"].(string)
	if id == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "Missing id in request body")
		return
	}

	stored, err := json.Marshal(doc)
	if err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}
	if err := h.store.PutItem(ctx, id, string(stored)); err != nil {
		writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusCreated)
	resp, _ := json.Marshal(createdResponse{Message: "Item created", ID: id})
	ctx.SetBody(resp)
}

func setCORSHeaders(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-Api-Key")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(errorResponse{Error: message})
	ctx.SetBody(body)
}
