package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/baditaflorin/go_asm_preprocess/pkg/preprocess"
	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"
)

// TextRequest carries a single text buffer.
type TextRequest struct {
	Text string `json:"text"`
}

// StripRequest asks for comment stripping of a source text.
type StripRequest struct {
	Text           string `json:"text"`
	KeepBlankLines bool   `json:"keep_blank_lines,omitempty"`
}

// ReplaceRequest asks for a single global substitution.
type ReplaceRequest struct {
	Text    string `json:"text"`
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// RadixRequest asks for a literal to be re-based.
type RadixRequest struct {
	Text      string `json:"text"`
	DestRadix uint8  `json:"dest_radix"`
	SrcRadix  uint8  `json:"src_radix"`
}

// SubstitutionJSON is the wire form of a substitution.
type SubstitutionJSON struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// PreprocessRequest runs the whole pipeline over a source text.
type PreprocessRequest struct {
	Text           string             `json:"text"`
	Substitutions  []SubstitutionJSON `json:"substitutions,omitempty"`
	LiteralRadix   uint8              `json:"literal_radix,omitempty"`
	KeepBlankLines bool               `json:"keep_blank_lines,omitempty"`
	Uppercase      *bool              `json:"uppercase,omitempty"`
}

// TextResponse carries a transformed text.
type TextResponse struct {
	Text string `json:"text"`
}

// StripResponse carries the residue and pass statistics.
type StripResponse struct {
	Text      string   `json:"text"`
	LinesRead int      `json:"lines_read"`
	LinesKept int      `json:"lines_kept"`
	BytesRead int64    `json:"bytes_read"`
	Errors    []string `json:"errors,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	pre    *preprocess.Preprocessor
	logger l.Logger
}

func newHandler(pre *preprocess.Preprocessor, lg l.Logger) *handler {
	return &handler{pre: pre, logger: lg}
}

// serve is the main fasthttp request handler
func (h *handler) serve(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "AsmPreprocessServer")

	switch string(ctx.Path()) {
	case "/health":
		h.handleHealthCheck(ctx)
	case "/upper":
		h.handleUpper(ctx)
	case "/strip":
		h.handleStrip(ctx)
	case "/replace":
		h.handleReplace(ctx)
	case "/radix":
		h.handleRadix(ctx)
	case "/preprocess":
		h.handlePreprocess(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		h.writeJSONError(ctx, "Not found")
	}

	h.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

// handleHealthCheck responds to health check requests
func (h *handler) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		h.writeJSONError(ctx, "Method not allowed")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *handler) handleUpper(ctx *fasthttp.RequestCtx) {
	var req TextRequest
	if !h.decodePost(ctx, &req) {
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, TextResponse{Text: h.pre.ToUpper(req.Text)})
}

func (h *handler) handleStrip(ctx *fasthttp.RequestCtx) {
	var req StripRequest
	if !h.decodePost(ctx, &req) {
		return
	}

	pre := h.pre
	if req.KeepBlankLines {
		var err error
		pre, err = preprocess.New(preprocess.WithLogger(h.logger), preprocess.WithKeepBlankLines(true))
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			h.writeJSONError(ctx, "Internal server error")
			return
		}
	}

	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var out bytes.Buffer
	stats, err := pre.StripInfoTo(c, strings.NewReader(req.Text), &out)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		h.writeJSONError(ctx, "Strip failed: "+err.Error())
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, StripResponse{
		Text:      out.String(),
		LinesRead: stats.LinesRead,
		LinesKept: stats.LinesKept,
		BytesRead: stats.BytesRead,
	})
}

func (h *handler) handleReplace(ctx *fasthttp.RequestCtx) {
	var req ReplaceRequest
	if !h.decodePost(ctx, &req) {
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, TextResponse{Text: h.pre.FindAndReplace(req.Text, req.Find, req.Replace)})
}

func (h *handler) handleRadix(ctx *fasthttp.RequestCtx) {
	var req RadixRequest
	if !h.decodePost(ctx, &req) {
		return
	}

	out, err := h.pre.ConvertRadix(req.Text, req.DestRadix, req.SrcRadix)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusUnprocessableEntity)
		h.writeJSONError(ctx, err.Error())
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, TextResponse{Text: out})
}

func (h *handler) handlePreprocess(ctx *fasthttp.RequestCtx) {
	var req PreprocessRequest
	if !h.decodePost(ctx, &req) {
		return
	}

	opts := []preprocess.Option{
		preprocess.WithLogger(h.logger),
		preprocess.WithFastNormalizer(),
		preprocess.WithLiteralRadix(req.LiteralRadix),
		preprocess.WithKeepBlankLines(req.KeepBlankLines),
	}
	if req.Uppercase != nil {
		opts = append(opts, preprocess.WithUppercase(*req.Uppercase))
	}
	subs := make([]preprocess.Substitution, 0, len(req.Substitutions))
	for _, s := range req.Substitutions {
		subs = append(subs, preprocess.Substitution{Find: s.Find, Replace: s.Replace})
	}
	opts = append(opts, preprocess.WithSubstitutions(subs...))

	pre, err := preprocess.New(opts...)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		h.writeJSONError(ctx, "Invalid configuration: "+err.Error())
		return
	}

	c, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var out bytes.Buffer
	stats, err := pre.Process(c, strings.NewReader(req.Text), &out)

	resp := StripResponse{
		Text:      out.String(),
		LinesRead: stats.LinesRead,
		LinesKept: stats.LinesKept,
		BytesRead: stats.BytesRead,
	}
	if err != nil {
		var lineErr *preprocess.LineError
		if !errors.As(err, &lineErr) {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			h.writeJSONError(ctx, "Preprocess failed: "+err.Error())
			return
		}
		resp.Errors = splitJoined(err)
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	h.writeJSONResponse(ctx, resp)
}

// decodePost enforces POST and decodes the JSON body into v. It writes the
// error response itself and returns false on failure.
func (h *handler) decodePost(ctx *fasthttp.RequestCtx, v interface{}) bool {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		h.writeJSONError(ctx, "Method not allowed")
		return false
	}
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		h.writeJSONError(ctx, "Invalid request: "+err.Error())
		return false
	}
	return true
}

// splitJoined flattens an errors.Join result into its messages.
func splitJoined(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, e.Error())
		}
		return msgs
	}
	return []string{err.Error()}
}

// writeJSONResponse writes a JSON response to the context
func (h *handler) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		h.logger.Error("Error marshaling JSON response", "error", err)
		h.writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (h *handler) writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		h.logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}
