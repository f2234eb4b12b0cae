package opam

import "strings"

// FormulaOp is a formula node kind.
type FormulaOp int

const (
	// OpAtom is a leaf constraint.
	OpAtom FormulaOp = iota
	// OpAnd is a conjunction of two sub-formulas.
	OpAnd
	// OpOr is a disjunction of two sub-formulas.
	OpOr
)

// ConstraintKind distinguishes the two leaf kinds of a constraint formula.
type ConstraintKind int

const (
	// ConstraintVersion is a version comparison, e.g. `>= "4.08"`.
	ConstraintVersion ConstraintKind = iota
	// ConstraintFilter is a filter expression, e.g. `with-test` or
	// `os = "linux"`.
	ConstraintFilter
)

// Constraint is a leaf of a constraint formula.
type Constraint struct {
	Kind    ConstraintKind
	Relop   string // version constraints only
	Version string // version constraints only
	Filter  string // filter expressions, kept verbatim
}

// Formula is a boolean combination of constraints attached to one
// dependency, as written between braces in a definition file.
type Formula struct {
	Op          FormulaOp
	Left, Right *Formula
	Atom        *Constraint
}

// VersionConstraint builds a version comparison leaf.
func VersionConstraint(relop string, version Version) *Formula {
	return &Formula{Op: OpAtom, Atom: &Constraint{
		Kind:    ConstraintVersion,
		Relop:   relop,
		Version: string(version),
	}}
}

// FilterConstraint builds a filter expression leaf.
func FilterConstraint(expr string) *Formula {
	return &Formula{Op: OpAtom, Atom: &Constraint{
		Kind:   ConstraintFilter,
		Filter: expr,
	}}
}

// And conjoins two formulas; nil operands collapse to the other side.
func And(l, r *Formula) *Formula {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	return &Formula{Op: OpAnd, Left: l, Right: r}
}

// Or disjoins two formulas; nil operands collapse to the other side.
func Or(l, r *Formula) *Formula {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	return &Formula{Op: OpOr, Left: l, Right: r}
}

// String pretty-prints the formula the way it appears in a definition file.
// Disjunctions nested under a conjunction are parenthesized.
func (f *Formula) String() string {
	if f == nil {
		return ""
	}
	switch f.Op {
	case OpAtom:
		return f.Atom.String()
	case OpAnd:
		return f.operand(f.Left) + " & " + f.operand(f.Right)
	case OpOr:
		return f.Left.String() + " | " + f.Right.String()
	}
	return ""
}

func (f *Formula) operand(sub *Formula) string {
	if sub != nil && sub.Op == OpOr {
		return "(" + sub.String() + ")"
	}
	return sub.String()
}

func (c *Constraint) String() string {
	if c.Kind == ConstraintFilter {
		return c.Filter
	}
	return c.Relop + ` "` + c.Version + `"`
}

// PackageFormula is a boolean combination of package atoms, the shape of the
// depends:, depopts: and conflicts: fields.
type PackageFormula struct {
	Op          FormulaOp
	Left, Right *PackageFormula
	Name        string   // leaf
	Constraint  *Formula // leaf, optional
}

// PackageAtom builds a leaf naming one package with an optional constraint.
func PackageAtom(name string, constraint *Formula) *PackageFormula {
	return &PackageFormula{Op: OpAtom, Name: name, Constraint: constraint}
}

// AndPkg conjoins two package formulas; nil operands collapse.
func AndPkg(l, r *PackageFormula) *PackageFormula {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	return &PackageFormula{Op: OpAnd, Left: l, Right: r}
}

// OrPkg disjoins two package formulas; nil operands collapse.
func OrPkg(l, r *PackageFormula) *PackageFormula {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	return &PackageFormula{Op: OpOr, Left: l, Right: r}
}

// Flatten converts the formula into an ordered list of dependency entries,
// one per package leaf, in source order. Conjunction is the implicit
// relation between entries; every leaf on the right side of a disjunction
// keeps the alternative visible through a "|" prefix on its constraint
// text.
func (f *PackageFormula) Flatten() []Dependency {
	var out []Dependency
	f.flattenInto(&out, false)
	return out
}

func (f *PackageFormula) flattenInto(out *[]Dependency, alt bool) {
	if f == nil {
		return
	}
	switch f.Op {
	case OpAtom:
		constraint := f.Constraint.String()
		if alt {
			if constraint == "" {
				constraint = "|"
			} else {
				constraint = "| " + constraint
			}
		}
		*out = append(*out, Dependency{Name: f.Name, Constraint: constraint})
	case OpAnd:
		f.Left.flattenInto(out, alt)
		f.Right.flattenInto(out, alt)
	case OpOr:
		f.Left.flattenInto(out, alt)
		f.Right.flattenInto(out, true)
	}
}

// FlattenAll flattens a conjunction list of package formulas, preserving
// source order.
func FlattenAll(formulas []*PackageFormula) []Dependency {
	var out []Dependency
	for _, f := range formulas {
		f.flattenInto(&out, false)
	}
	if out == nil {
		return nil
	}
	return out
}

// joinLicenses joins multiple license expressions the way the site displays
// them.
func joinLicenses(licenses []string) string {
	return strings.Join(licenses, "; ")
}
