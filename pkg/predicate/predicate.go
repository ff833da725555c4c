// Package predicate holds the boolean filter tree pushed down from the
// query engine. The variant set is closed: translators dispatch over it
// with a type switch and treat any unknown node as an error, so adding
// a variant here is a compile-visible change for every consumer.
package predicate

// Predicate is one node of the pushed-down filter tree. Implementations
// are the only types allowed to satisfy the interface; the marker
// method keeps the set closed to this package.
type Predicate interface {
	isPredicate()
}

// Eq matches documents whose attribute equals the value.
type Eq struct {
	Attribute string
	Value     interface{}
}

// Gt matches documents whose attribute is strictly greater than the value.
type Gt struct {
	Attribute string
	Value     interface{}
}

// Gte matches documents whose attribute is greater than or equal to the value.
type Gte struct {
	Attribute string
	Value     interface{}
}

// Lt matches documents whose attribute is strictly less than the value.
type Lt struct {
	Attribute string
	Value     interface{}
}

// Lte matches documents whose attribute is less than or equal to the value.
type Lte struct {
	Attribute string
	Value     interface{}
}

// In matches documents whose attribute equals any of the values. Values
// are passed to the store verbatim: identifier-literal coercion is not
// applied inside sets.
type In struct {
	Attribute string
	Values    []interface{}
}

// IsNull matches documents whose attribute is null or absent.
type IsNull struct {
	Attribute string
}

// IsNotNull matches documents whose attribute is present and non-null.
type IsNotNull struct {
	Attribute string
}

// StartsWith matches string attributes with the given prefix. The
// prefix is not regex-escaped before being sent to the store.
type StartsWith struct {
	Attribute string
	Prefix    string
}

// EndsWith matches string attributes with the given suffix.
type EndsWith struct {
	Attribute string
	Suffix    string
}

// Contains matches string attributes containing the given substring.
type Contains struct {
	Attribute string
	Substring string
}

// And matches documents satisfying both children.
type And struct {
	Left  Predicate
	Right Predicate
}

// Or matches documents satisfying either child.
type Or struct {
	Left  Predicate
	Right Predicate
}

// Not negates its child. No store translation exists for it; a tree
// containing Not fails translation rather than being silently dropped.
type Not struct {
	Child Predicate
}

func (Eq) isPredicate()         {}
func (Gt) isPredicate()         {}
func (Gte) isPredicate()        {}
func (Lt) isPredicate()         {}
func (Lte) isPredicate()        {}
func (In) isPredicate()         {}
func (IsNull) isPredicate()     {}
func (IsNotNull) isPredicate()  {}
func (StartsWith) isPredicate() {}
func (EndsWith) isPredicate()   {}
func (Contains) isPredicate()   {}
func (And) isPredicate()        {}
func (Or) isPredicate()         {}
func (Not) isPredicate()        {}
