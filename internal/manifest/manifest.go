package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/veldt-lang/veldt/internal/ast"
	"github.com/veldt-lang/veldt/internal/diagnostics"
	"github.com/veldt-lang/veldt/internal/token"
)

// A manifest is the YAML surface for declarations: the same interfaces,
// types, impls and requires as a .vd file, one section per keyword.
//
//	interfaces:
//	  - name: Traitor
//	    params:
//	      - {name: N, kind: u8, default: 1}
//	      - {name: M, kind: u8, default: N}
//	impls:
//	  - params: [{name: N, kind: u8}]
//	    interface: {name: Traitor, args: [N, 2]}
//	    for: u32
//	requires:
//	  - target: u32
//	    interface: {name: Traitor, args: [1, 1]}
//
// The loader produces an ast.Program, so manifests flow through the
// same analysis as parsed sources. Statements keep section order:
// interfaces, types, impls, requires, each in list order.

type manifestDoc struct {
	Interfaces []headerDecl  `yaml:"interfaces,omitempty"`
	Types      []headerDecl  `yaml:"types,omitempty"`
	Impls      []implDecl    `yaml:"impls,omitempty"`
	Requires   []requireDecl `yaml:"requires,omitempty"`
}

type headerDecl struct {
	Name   yaml.Node   `yaml:"name"`
	Params []paramDecl `yaml:"params,omitempty"`
}

type paramDecl struct {
	Name    yaml.Node `yaml:"name"`
	Kind    yaml.Node `yaml:"kind"`
	Default yaml.Node `yaml:"default,omitempty"`
}

type implDecl struct {
	Params    []paramDecl `yaml:"params,omitempty"`
	Interface refDecl     `yaml:"interface"`
	For       refDecl     `yaml:"for"`
}

type requireDecl struct {
	Params    []paramDecl `yaml:"params,omitempty"`
	Target    refDecl     `yaml:"target"`
	Interface refDecl     `yaml:"interface"`
}

// refDecl is a type or interface reference. A plain scalar names a
// type without arguments; the mapping form carries args.
type refDecl struct {
	Name yaml.Node
	Args []yaml.Node
}

func (r *refDecl) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return nil
		}
		r.Name = *value
		return nil
	case yaml.MappingNode:
		for i := 0; i < len(value.Content); i += 2 {
			keyNode := value.Content[i]
			valueNode := value.Content[i+1]
			switch keyNode.Value {
			case "name":
				r.Name = *valueNode
			case "args":
				if valueNode.Kind != yaml.SequenceNode {
					return fmt.Errorf("manifest: args must be a sequence but found %s", valueNode.ShortTag())
				}
				for _, arg := range valueNode.Content {
					r.Args = append(r.Args, *arg)
				}
			default:
				return fmt.Errorf("manifest: unknown reference key %q", keyNode.Value)
			}
		}
		return nil
	case yaml.AliasNode:
		return r.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("manifest: expected name or mapping for reference but found %s", value.ShortTag())
	}
}

// Load reads a manifest file and converts it to declarations. I/O
// failures come back as the error; everything else is reported as
// diagnostics.
func Load(path string) (*ast.Program, []*diagnostics.DiagnosticError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	program, errs := Parse(data, path)
	return program, errs, nil
}

// Parse converts manifest bytes. The path is stamped onto positions
// and diagnostics only.
func Parse(data []byte, path string) (*ast.Program, []*diagnostics.DiagnosticError) {
	var doc manifestDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		diag := &diagnostics.DiagnosticError{
			Code:    diagnostics.ErrP002,
			Message: fmt.Sprintf("invalid manifest: %v", err),
			File:    path,
		}
		return &ast.Program{File: path}, []*diagnostics.DiagnosticError{diag}
	}

	c := &converter{file: path}
	program := &ast.Program{File: path}
	for i := range doc.Interfaces {
		if d := c.interfaceOf(&doc.Interfaces[i]); d != nil {
			program.Statements = append(program.Statements, d)
		}
	}
	for i := range doc.Types {
		if d := c.typeOf(&doc.Types[i]); d != nil {
			program.Statements = append(program.Statements, d)
		}
	}
	for i := range doc.Impls {
		if d := c.implOf(&doc.Impls[i]); d != nil {
			program.Statements = append(program.Statements, d)
		}
	}
	for i := range doc.Requires {
		if d := c.requireOf(&doc.Requires[i]); d != nil {
			program.Statements = append(program.Statements, d)
		}
	}
	return program, c.errs
}

type converter struct {
	file string
	errs []*diagnostics.DiagnosticError
}

func (c *converter) addError(code string, node *yaml.Node, message string, got ...interface{}) {
	e := &diagnostics.DiagnosticError{
		Code:    code,
		Message: message,
		File:    c.file,
	}
	if node != nil {
		e.Line = node.Line
		e.Column = node.Column
	}
	if len(got) > 0 {
		e.Got = got[0]
	}
	c.errs = append(c.errs, e)
}

// tokenOf synthesizes the token a parsed source would have carried,
// positioned at the YAML node.
func tokenOf(tokType token.TokenType, lexeme string, node *yaml.Node) token.Token {
	t := token.Token{Type: tokType, Lexeme: lexeme}
	if node != nil {
		t.Line = node.Line
		t.Column = node.Column
	}
	return t
}

func identTokenType(name string) token.TokenType {
	for _, r := range name {
		if unicode.IsUpper(r) {
			return token.IDENT_UPPER
		}
		return token.IDENT_LOWER
	}
	return token.IDENT_LOWER
}

func (c *converter) identOf(node *yaml.Node, what string) *ast.Identifier {
	if node.Kind != yaml.ScalarNode || node.Tag != "!!str" || node.Value == "" {
		c.addError(diagnostics.ErrP005, node, fmt.Sprintf("expected a %s name", what))
		return nil
	}
	return &ast.Identifier{
		Token: tokenOf(identTokenType(node.Value), node.Value, node),
		Value: node.Value,
	}
}

// exprOf converts an argument or default scalar: an integer becomes a
// literal, a string becomes a constant parameter reference.
func (c *converter) exprOf(node *yaml.Node) ast.Expression {
	if node.Kind == yaml.AliasNode {
		return c.exprOf(node.Alias)
	}
	if node.Kind != yaml.ScalarNode {
		c.addError(diagnostics.ErrP005, node, "expected an integer or a constant parameter name")
		return nil
	}
	switch node.Tag {
	case "!!int":
		raw := node.Value
		negative := strings.HasPrefix(raw, "-")
		magnitude, err := strconv.ParseUint(strings.TrimPrefix(raw, "-"), 0, 64)
		if err != nil {
			c.addError(diagnostics.ErrL001, node, "integer literal out of range", raw)
			return nil
		}
		return &ast.IntegerLiteral{
			Token:     tokenOf(token.INT, raw, node),
			Negative:  negative,
			Magnitude: magnitude,
		}
	case "!!str":
		if node.Value == "" {
			c.addError(diagnostics.ErrP005, node, "expected an integer or a constant parameter name")
			return nil
		}
		return &ast.Identifier{
			Token: tokenOf(identTokenType(node.Value), node.Value, node),
			Value: node.Value,
		}
	default:
		c.addError(diagnostics.ErrP005, node, "expected an integer or a constant parameter name", node.ShortTag())
		return nil
	}
}

func (c *converter) paramsOf(decls []paramDecl, allowDefaults bool) []*ast.ConstParam {
	if len(decls) == 0 {
		return nil
	}
	params := make([]*ast.ConstParam, 0, len(decls))
	for i := range decls {
		p := &decls[i]
		name := c.identOf(&p.Name, "parameter")
		if name == nil {
			continue
		}
		if p.Kind.Kind != yaml.ScalarNode || p.Kind.Tag != "!!str" || p.Kind.Value == "" {
			c.addError(diagnostics.ErrP005, &p.Kind, fmt.Sprintf("parameter %s is missing its kind", name.Value))
			continue
		}
		param := &ast.ConstParam{
			Token: name.Token,
			Name:  name,
			Kind:  &ast.KindRef{Token: tokenOf(token.IDENT_LOWER, p.Kind.Value, &p.Kind), Name: p.Kind.Value},
		}
		if p.Default.Kind != 0 {
			if !allowDefaults {
				c.addError(diagnostics.ErrP003, &p.Default, "defaults are not allowed in an impl or require binder")
			} else {
				param.Default = c.exprOf(&p.Default)
			}
		}
		params = append(params, param)
	}
	return params
}

func (c *converter) refOf(r *refDecl, what string) *ast.TypeRef {
	if r.Name.Kind == 0 {
		c.addError(diagnostics.ErrP005, nil, fmt.Sprintf("declaration is missing its %s", what))
		return nil
	}
	name := c.identOf(&r.Name, what)
	if name == nil {
		return nil
	}
	ref := &ast.TypeRef{Token: name.Token, Name: name}
	for i := range r.Args {
		if arg := c.exprOf(&r.Args[i]); arg != nil {
			ref.Args = append(ref.Args, arg)
		}
	}
	return ref
}

func (c *converter) interfaceOf(h *headerDecl) ast.Statement {
	name := c.identOf(&h.Name, "interface")
	if name == nil {
		return nil
	}
	return &ast.InterfaceDeclaration{
		Token:  tokenOf(token.INTERFACE, "interface", &h.Name),
		Name:   name,
		Params: c.paramsOf(h.Params, true),
	}
}

func (c *converter) typeOf(h *headerDecl) ast.Statement {
	name := c.identOf(&h.Name, "type")
	if name == nil {
		return nil
	}
	return &ast.TypeDeclaration{
		Token:  tokenOf(token.TYPE, "type", &h.Name),
		Name:   name,
		Params: c.paramsOf(h.Params, true),
	}
}

func (c *converter) implOf(d *implDecl) ast.Statement {
	iface := c.refOf(&d.Interface, "interface")
	target := c.refOf(&d.For, "target type")
	if iface == nil || target == nil {
		return nil
	}
	return &ast.ImplDeclaration{
		Token:     tokenOf(token.IMPL, "impl", &d.Interface.Name),
		Params:    c.paramsOf(d.Params, false),
		Interface: iface,
		Target:    target,
	}
}

func (c *converter) requireOf(d *requireDecl) ast.Statement {
	target := c.refOf(&d.Target, "target type")
	iface := c.refOf(&d.Interface, "interface")
	if target == nil || iface == nil {
		return nil
	}
	return &ast.RequireDeclaration{
		Token:     tokenOf(token.REQUIRE, "require", &d.Target.Name),
		Params:    c.paramsOf(d.Params, false),
		Target:    target,
		Interface: iface,
	}
}
