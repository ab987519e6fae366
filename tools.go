package gonewton

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/njchilds90/gonewton/compiler"
	"github.com/njchilds90/gonewton/symbolic"
)

// ============================================================
// Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type exprParams struct {
	Expression string `mapstructure:"expression"`
	Var        string `mapstructure:"var"`
	Order      int    `mapstructure:"order"`
}

type evalParams struct {
	Expression string   `mapstructure:"expression"`
	X          *float64 `mapstructure:"x"`
}

// HandleToolCall dispatches one tool invocation. Failures are reported in
// ToolResponse.Error; a newton_raphson run that ends without a root is not a
// failure and carries its terminal result in Result.
func HandleToolCall(req ToolRequest, opts ...Option) ToolResponse {
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	respond := func(e symbolic.Expr) ToolResponse {
		return ToolResponse{Result: symbolic.Tree(e), LaTeX: e.LaTeX(), String: e.String()}
	}
	getExpr := func() (symbolic.Expr, exprParams, error) {
		var p exprParams
		if err := decodeParams(req.Params, &p); err != nil {
			return nil, p, err
		}
		if p.Expression == "" {
			return nil, p, fmt.Errorf("missing param: expression")
		}
		e, err := compiler.Parse(p.Expression)
		return e, p, err
	}

	switch req.Tool {
	case "newton_raphson":
		r, err := DecodeRequest(req.Params)
		if err != nil {
			return fail(err)
		}
		resp := Calculate(r, opts...)
		out := ToolResponse{Result: resp, String: resp.Result.Message}
		if resp.Result.Status.IsRequestError() {
			out.Error = resp.Result.Message
		}
		return out

	case "differentiate":
		e, p, err := getExpr()
		if err != nil {
			return fail(err)
		}
		v := p.Var
		if v == "" {
			v = compiler.Variable
		}
		order := p.Order
		if order == 0 {
			order = 1
		}
		if order < 0 || order > MaxDiffOrder {
			return fail(fmt.Errorf("param order must be between 1 and %d, got %d", MaxDiffOrder, order))
		}
		return respond(symbolic.DiffN(e, v, order))

	case "evaluate":
		var p evalParams
		if err := decodeParams(req.Params, &p); err != nil {
			return fail(err)
		}
		if p.X == nil {
			return fail(fmt.Errorf("missing param: x"))
		}
		c, err := compiler.Compile(p.Expression)
		if err != nil {
			return fail(err)
		}
		y, err := c.F.Eval(*p.X)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: y, String: fmt.Sprintf("%g", y)}

	case "simplify":
		e, _, err := getExpr()
		if err != nil {
			return fail(err)
		}
		return respond(e)

	case "to_latex":
		e, _, err := getExpr()
		if err != nil {
			return fail(err)
		}
		return ToolResponse{LaTeX: e.LaTeX(), String: e.String()}

	case "free_symbols":
		e, _, err := getExpr()
		if err != nil {
			return fail(err)
		}
		names := symbolic.SortedFreeSymbols(e)
		return ToolResponse{Result: names, String: fmt.Sprint(names)}

	case "tool_spec":
		return ToolResponse{Result: json.RawMessage(MCPToolSpec()), String: "tool spec"}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// HandleToolCallJSON decodes a ToolRequest from data, handles it and
// encodes the response.
func HandleToolCallJSON(data []byte, logger *slog.Logger) []byte {
	var req ToolRequest
	if err := json.Unmarshal(data, &req); err != nil {
		b, _ := json.Marshal(ToolResponse{Error: "invalid JSON: " + err.Error()})
		return b
	}
	b, err := json.Marshal(HandleToolCall(req, WithLogger(logger)))
	if err != nil {
		b, _ = json.Marshal(ToolResponse{Error: "encode response: " + err.Error()})
	}
	return b
}

// MCPToolSpec returns the JSON schema of every tool HandleToolCall accepts.
func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("newton_raphson", "Find a root of f(x) with Newton-Raphson; returns the iteration trace, terminal result and plot data",
			[]string{"expression", "initialGuess", "stopPercent"},
			map[string]string{"expression": "string", "initialGuess": "string", "stopPercent": "string", "maxIterations": "integer", "samples": "integer"}),
		ts("differentiate", "Exact derivative of an expression. Optional var (default x) and order (default 1, at most 5)",
			[]string{"expression"}, map[string]string{"expression": "string", "var": "string", "order": "integer"}),
		ts("evaluate", "Evaluate f(x) at a point", []string{"expression", "x"}, map[string]string{"expression": "string", "x": "number"}),
		ts("simplify", "Parse and simplify an expression", []string{"expression"}, map[string]string{"expression": "string"}),
		ts("to_latex", "Convert to LaTeX", []string{"expression"}, map[string]string{"expression": "string"}),
		ts("free_symbols", "Return free symbol names", []string{"expression"}, map[string]string{"expression": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
