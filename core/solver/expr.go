package solver

// Term is one coefficient-variable product of a linear expression.
type Term struct {
	Var  IntVar
	Coef int64
}

// LinearExpr is Σ Coef·Var + Offset.
type LinearExpr struct {
	Terms  []Term
	Offset int64
}

// Sum returns the unit-weighted sum of vars.
func Sum(vars ...IntVar) LinearExpr {
	e := LinearExpr{Terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		e.Terms = append(e.Terms, Term{Var: v, Coef: 1})
	}
	return e
}

// SumBools returns the unit-weighted sum of boolean variables.
func SumBools(vars ...BoolVar) LinearExpr {
	e := LinearExpr{Terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		e.Terms = append(e.Terms, Term{Var: v.Int(), Coef: 1})
	}
	return e
}

// Var returns the expression 1·v.
func Var(v IntVar) LinearExpr {
	return LinearExpr{Terms: []Term{{Var: v, Coef: 1}}}
}

// Plus returns e + coef·v.
func (e LinearExpr) Plus(v IntVar, coef int64) LinearExpr {
	terms := make([]Term, len(e.Terms), len(e.Terms)+1)
	copy(terms, e.Terms)
	return LinearExpr{Terms: append(terms, Term{Var: v, Coef: coef}), Offset: e.Offset}
}

// AddConst returns e + c.
func (e LinearExpr) AddConst(c int64) LinearExpr {
	e.Offset += c
	return e
}

// Eval computes the expression under value.
func (e LinearExpr) Eval(value func(IntVar) int64) int64 {
	s := e.Offset
	for _, t := range e.Terms {
		s += t.Coef * value(t.Var)
	}
	return s
}
