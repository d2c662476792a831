package selector

// Query is the ambient query buffer for one document. The zero value is empty.
type Query struct {
	current Expr
}

// Change applies raw to the buffer and returns the new query. On error the
// buffer keeps its previous value.
func (q *Query) Change(raw string) (Expr, error) {
	next, err := Translate(raw, q.current)
	if err != nil {
		return Expr{}, err
	}
	q.current = next
	return next, nil
}

// Expr returns the current query.
func (q *Query) Expr() Expr {
	return q.current
}

// String renders the current query.
func (q *Query) String() string {
	return q.current.String()
}

// Reset empties the buffer.
func (q *Query) Reset() {
	q.current = Expr{}
}
