package symbolic

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON Serialization
// ============================================================

// Tree returns the JSON-ready tree form of e:
//
//	{"type":"num","value":"3/2"}
//	{"type":"sym","name":"x"}
//	{"type":"const","name":"pi"}
//	{"type":"add","terms":[...]}  {"type":"mul","factors":[...]}
//	{"type":"pow","base":{...},"exp":{...}}
//	{"type":"func","name":"sin","arg":{...}}
func Tree(e Expr) map[string]interface{} {
	switch v := e.(type) {
	case *Num:
		m := map[string]interface{}{"type": "num", "value": v.String()}
		if v.inexact {
			m["inexact"] = true
		}
		return m
	case *Sym:
		return map[string]interface{}{"type": "sym", "name": v.name}
	case *Const:
		return map[string]interface{}{"type": "const", "name": v.name}
	case *Add:
		return map[string]interface{}{"type": "add", "terms": trees(v.terms)}
	case *Mul:
		return map[string]interface{}{"type": "mul", "factors": trees(v.factors)}
	case *Pow:
		return map[string]interface{}{"type": "pow", "base": Tree(v.base), "exp": Tree(v.exp)}
	case *Func:
		return map[string]interface{}{"type": "func", "name": v.name, "arg": Tree(v.arg)}
	}
	return nil
}

func trees(es []Expr) []interface{} {
	out := make([]interface{}, len(es))
	for i, e := range es {
		out[i] = Tree(e)
	}
	return out
}

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(Tree(e))
	return string(b), err
}

// FromJSON rebuilds an expression from its tree form. The result is
// simplified, so a tree that was not produced by Tree still comes back in
// normal form.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (Expr, error) {
		m, ok := data[field].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subObjArray := func(field string) ([]Expr, error) {
		raw, ok := data[field].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		s, ok := data[field].(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		n, err := ParseNum(val)
		if err != nil {
			return nil, err
		}
		if inexact, _ := data["inexact"].(bool); inexact {
			n.inexact = true
		}
		return n, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "const":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		switch name {
		case E.name:
			return E, nil
		case Pi.name:
			return Pi, nil
		}
		return nil, fmt.Errorf("const: unknown constant %q", name)

	case "add":
		terms, err := subObjArray("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subObjArray("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := subObj("base")
		if err != nil {
			return nil, err
		}
		exp, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		arg, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		return Apply(name, arg)
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
