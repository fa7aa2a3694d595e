package watchman

// Expr is a Watchman query expression in its wire form: a JSON array whose
// first element is the expression term name. Constructors below cover the
// terms this module uses; anything else can be built literally.
type Expr []interface{}

// TypeFile matches regular files only.
func TypeFile() Expr {
	return Expr{"type", "f"}
}

// Suffix matches files whose name ends with one of the given extensions
// (without dots).
func Suffix(extensions []string) Expr {
	return Expr{"suffix", extensions}
}

// MatchAny matches relative paths against any of the given glob patterns.
func MatchAny(patterns []string) Expr {
	terms := make(Expr, 0, len(patterns)+1)
	terms = append(terms, "anyof")
	for _, p := range patterns {
		terms = append(terms, Expr{"match", p, "wholename"})
	}
	return terms
}

// Not negates an expression.
func Not(e Expr) Expr {
	return Expr{"not", e}
}

// Allof requires every given expression to match.
func Allof(exprs ...Expr) Expr {
	terms := make(Expr, 0, len(exprs)+1)
	terms = append(terms, "allof")
	for _, e := range exprs {
		terms = append(terms, e)
	}
	return terms
}
