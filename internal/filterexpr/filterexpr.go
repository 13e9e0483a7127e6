// Package filterexpr builds vendor-agnostic predicate expressions consumed
// by VectorIndex and produced by MetadataCatalog.BuildFilter. It is
// adapted from the teacher's ai/vectorstore/filter package: an Expression
// interface rendering to a small SQL-like conjunction/disjunction grammar,
// plus a fluent ExprBuilder so callers never hand-assemble strings.
package filterexpr

import "github.com/spf13/cast"

// Expression is any node in a filter predicate tree. Expression() renders
// the node to its SQL-like textual form, which adapters (e.g. the Qdrant
// VectorIndex) translate into their own native filter representation.
type Expression interface {
	Expression() string
}

// Field references a named metadata column (e.g. "category", "is_deleted").
type Field struct{ name string }

func NewField(name string) *Field   { return &Field{name: name} }
func (f *Field) Expression() string { return f.name }

// Name returns the field's column name.
func (f *Field) Name() string { return f.name }

// Value is a scalar literal operand.
type Value struct{ raw any }

func NewValue(v any) *Value         { return &Value{raw: v} }
func (v *Value) Expression() string { return cast.ToString(v.raw) }

// Raw returns the untyped literal value.
func (v *Value) Raw() any { return v.raw }

// Operator is a comparison or logical connective.
type Operator string

const (
	AND  Operator = "AND"
	OR   Operator = "OR"
	NOT  Operator = "NOT"
	EQ   Operator = "="
	NEQ  Operator = "!="
	IN   Operator = "IN"
	NIN  Operator = "NOT IN"
)

func (o Operator) Expression() string { return string(o) }

// Condition is a binary `left operator right` node.
type Condition struct {
	Operator Operator
	Left     Expression
	Right    Expression
}

func (c *Condition) Expression() string {
	return c.Left.Expression() + " " + c.Operator.Expression() + " " + c.Right.Expression()
}

// Group parenthesizes an inner expression.
type Group struct{ Inner Expression }

func (g *Group) Expression() string { return "(" + g.Inner.Expression() + ")" }

// Eq builds a `field = value` condition.
func Eq(field string, value any) *Condition {
	return &Condition{Operator: EQ, Left: NewField(field), Right: NewValue(value)}
}

// And combines two expressions with AND, grouping the right side for clarity.
func And(left, right Expression) *Condition {
	return &Condition{Operator: AND, Left: left, Right: &Group{Inner: right}}
}

// Or combines two expressions with OR, grouping the right side.
func Or(left, right Expression) *Condition {
	return &Condition{Operator: OR, Left: left, Right: &Group{Inner: right}}
}

// ExprBuilder provides a fluent API for assembling a
// predicate conjunction, mirroring the teacher's filter.ExprBuilder.
type ExprBuilder struct {
	expr Expression
}

// NewExprBuilder returns an empty builder.
func NewExprBuilder() *ExprBuilder { return &ExprBuilder{} }

// Eq ANDs an equality condition into the expression under construction.
// A nil value skips the condition entirely, so optional filter params can
// be threaded straight through without per-call nil checks at the caller.
func (b *ExprBuilder) Eq(field string, value any) *ExprBuilder {
	if value == nil {
		return b
	}
	b.and(Eq(field, value))
	return b
}

func (b *ExprBuilder) and(expr Expression) {
	if expr == nil {
		return
	}
	if b.expr == nil {
		b.expr = expr
		return
	}
	b.expr = And(b.expr, expr)
}

// Build returns the assembled Expression, or nil if nothing was added.
func (b *ExprBuilder) Build() Expression {
	return b.expr
}
