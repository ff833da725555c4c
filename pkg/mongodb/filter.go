package mongodb

import (
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/grafana/mongoscan/pkg/predicate"
)

// ErrUnsupportedPredicate is returned when the filter tree contains a
// node that has no MongoDB translation. The whole translation fails; no
// partial query is ever produced.
var ErrUnsupportedPredicate = errors.New("predicate cannot be translated to a mongodb query")

// Translate converts a pushed-down filter tree into the equivalent
// MongoDB query document. Multiple top-level predicates are implicitly
// ANDed by merging their constraints into one document.
func Translate(preds []predicate.Predicate) (bson.D, error) {
	query := bson.D{}
	for _, p := range preds {
		e, err := translate(p)
		if err != nil {
			return nil, err
		}
		query = append(query, e)
	}
	return query, nil
}

func translate(p predicate.Predicate) (bson.E, error) {
	switch p := p.(type) {
	case predicate.Eq:
		return bson.E{Key: p.Attribute, Value: coerceValue(p.Attribute, p.Value)}, nil
	case predicate.Gt:
		return rangeConstraint(p.Attribute, "$gt", p.Value), nil
	case predicate.Gte:
		return rangeConstraint(p.Attribute, "$gte", p.Value), nil
	case predicate.Lt:
		return rangeConstraint(p.Attribute, "$lt", p.Value), nil
	case predicate.Lte:
		return rangeConstraint(p.Attribute, "$lte", p.Value), nil
	case predicate.In:
		// Set members are passed through verbatim, without the
		// identifier-literal coercion applied to scalar equality.
		return bson.E{Key: p.Attribute, Value: bson.D{{Key: "$in", Value: p.Values}}}, nil
	case predicate.IsNull:
		return bson.E{Key: p.Attribute, Value: nil}, nil
	case predicate.IsNotNull:
		return bson.E{Key: p.Attribute, Value: bson.D{{Key: "$ne", Value: nil}}}, nil
	case predicate.StartsWith:
		return regexConstraint(p.Attribute, "^"+p.Prefix+".*$"), nil
	case predicate.EndsWith:
		return regexConstraint(p.Attribute, "^.*"+p.Suffix+"$"), nil
	case predicate.Contains:
		return regexConstraint(p.Attribute, ".*"+p.Substring+".*"), nil
	case predicate.And:
		return combine("$and", p.Left, p.Right)
	case predicate.Or:
		return combine("$or", p.Left, p.Right)
	case predicate.Not:
		return bson.E{}, errors.Wrap(ErrUnsupportedPredicate, "negation cannot be pushed down")
	default:
		return bson.E{}, errors.Wrapf(ErrUnsupportedPredicate, "unknown predicate %T", p)
	}
}

func rangeConstraint(attribute, op string, v interface{}) bson.E {
	return bson.E{Key: attribute, Value: bson.D{{Key: op, Value: coerceValue(attribute, v)}}}
}

// regexConstraint anchors exactly the pattern it is given. Metacharacters
// in the user-supplied fragment are not escaped.
func regexConstraint(attribute, pattern string) bson.E {
	return bson.E{Key: attribute, Value: primitive.Regex{Pattern: pattern}}
}

func combine(op string, left, right predicate.Predicate) (bson.E, error) {
	l, err := translate(left)
	if err != nil {
		return bson.E{}, err
	}
	r, err := translate(right)
	if err != nil {
		return bson.E{}, err
	}
	return bson.E{Key: op, Value: bson.A{bson.D{l}, bson.D{r}}}, nil
}
