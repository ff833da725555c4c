package mongodb

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/grafana/mongoscan/pkg/predicate"
)

func TestTranslate(t *testing.T) {
	oid, err := primitive.ObjectIDFromHex("507f191e810c19729de860ea")
	require.NoError(t, err)

	for _, tc := range []struct {
		name     string
		preds    []predicate.Predicate
		expected bson.D
	}{
		{
			name:     "empty",
			preds:    nil,
			expected: bson.D{},
		},
		{
			name:     "equals",
			preds:    []predicate.Predicate{predicate.Eq{Attribute: "name", Value: "n1"}},
			expected: bson.D{{Key: "name", Value: "n1"}},
		},
		{
			name:     "greater than",
			preds:    []predicate.Predicate{predicate.Gt{Attribute: "age", Value: 18}},
			expected: bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: 18}}}},
		},
		{
			name:     "greater or equal",
			preds:    []predicate.Predicate{predicate.Gte{Attribute: "age", Value: 18}},
			expected: bson.D{{Key: "age", Value: bson.D{{Key: "$gte", Value: 18}}}},
		},
		{
			name:     "less than",
			preds:    []predicate.Predicate{predicate.Lt{Attribute: "age", Value: 65}},
			expected: bson.D{{Key: "age", Value: bson.D{{Key: "$lt", Value: 65}}}},
		},
		{
			name:     "less or equal",
			preds:    []predicate.Predicate{predicate.Lte{Attribute: "age", Value: 65}},
			expected: bson.D{{Key: "age", Value: bson.D{{Key: "$lte", Value: 65}}}},
		},
		{
			name:     "in",
			preds:    []predicate.Predicate{predicate.In{Attribute: "tags", Values: []interface{}{"a", "b"}}},
			expected: bson.D{{Key: "tags", Value: bson.D{{Key: "$in", Value: []interface{}{"a", "b"}}}}},
		},
		{
			name:     "is null",
			preds:    []predicate.Predicate{predicate.IsNull{Attribute: "deleted_at"}},
			expected: bson.D{{Key: "deleted_at", Value: nil}},
		},
		{
			name:     "is not null",
			preds:    []predicate.Predicate{predicate.IsNotNull{Attribute: "deleted_at"}},
			expected: bson.D{{Key: "deleted_at", Value: bson.D{{Key: "$ne", Value: nil}}}},
		},
		{
			name:     "starts with",
			preds:    []predicate.Predicate{predicate.StartsWith{Attribute: "name", Prefix: "ab"}},
			expected: bson.D{{Key: "name", Value: primitive.Regex{Pattern: "^ab.*$"}}},
		},
		{
			name:     "ends with",
			preds:    []predicate.Predicate{predicate.EndsWith{Attribute: "name", Suffix: "ab"}},
			expected: bson.D{{Key: "name", Value: primitive.Regex{Pattern: "^.*ab$"}}},
		},
		{
			name:     "contains",
			preds:    []predicate.Predicate{predicate.Contains{Attribute: "name", Substring: "ab"}},
			expected: bson.D{{Key: "name", Value: primitive.Regex{Pattern: ".*ab.*"}}},
		},
		{
			name: "and",
			preds: []predicate.Predicate{predicate.And{
				Left:  predicate.Eq{Attribute: "a", Value: 1},
				Right: predicate.Eq{Attribute: "b", Value: 2},
			}},
			expected: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "a", Value: 1}},
				bson.D{{Key: "b", Value: 2}},
			}}},
		},
		{
			name: "or",
			preds: []predicate.Predicate{predicate.Or{
				Left:  predicate.Eq{Attribute: "a", Value: 1},
				Right: predicate.Gt{Attribute: "b", Value: 2},
			}},
			expected: bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "a", Value: 1}},
				bson.D{{Key: "b", Value: bson.D{{Key: "$gt", Value: 2}}}},
			}}},
		},
		{
			name: "nested combinators",
			preds: []predicate.Predicate{predicate.And{
				Left: predicate.Or{
					Left:  predicate.Eq{Attribute: "a", Value: 1},
					Right: predicate.Eq{Attribute: "b", Value: 2},
				},
				Right: predicate.IsNotNull{Attribute: "c"},
			}},
			expected: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "$or", Value: bson.A{
					bson.D{{Key: "a", Value: 1}},
					bson.D{{Key: "b", Value: 2}},
				}}},
				bson.D{{Key: "c", Value: bson.D{{Key: "$ne", Value: nil}}}},
			}}},
		},
		{
			name: "top level predicates are conjoined",
			preds: []predicate.Predicate{
				predicate.Eq{Attribute: "name", Value: "n1"},
				predicate.Gt{Attribute: "age", Value: 18},
			},
			expected: bson.D{
				{Key: "name", Value: "n1"},
				{Key: "age", Value: bson.D{{Key: "$gt", Value: 18}}},
			},
		},
		{
			name:     "identifier literal is coerced",
			preds:    []predicate.Predicate{predicate.Eq{Attribute: "_id", Value: `ObjectId("507f191e810c19729de860ea")`}},
			expected: bson.D{{Key: "_id", Value: oid}},
		},
		{
			name:     "identifier range literal is coerced",
			preds:    []predicate.Predicate{predicate.Gt{Attribute: "_id", Value: `ObjectId("507f191e810c19729de860ea")`}},
			expected: bson.D{{Key: "_id", Value: bson.D{{Key: "$gt", Value: oid}}}},
		},
		{
			name:     "non literal identifier value passes through",
			preds:    []predicate.Predicate{predicate.Eq{Attribute: "_id", Value: "not-an-oid-string"}},
			expected: bson.D{{Key: "_id", Value: "not-an-oid-string"}},
		},
		{
			name:     "literal on other attributes passes through",
			preds:    []predicate.Predicate{predicate.Eq{Attribute: "name", Value: `ObjectId("507f191e810c19729de860ea")`}},
			expected: bson.D{{Key: "name", Value: `ObjectId("507f191e810c19729de860ea")`}},
		},
		{
			// Set members are never coerced, matching the behavior of
			// scalar coercion being an equality-only concern.
			name:     "identifier literals in sets pass through",
			preds:    []predicate.Predicate{predicate.In{Attribute: "_id", Values: []interface{}{`ObjectId("507f191e810c19729de860ea")`}}},
			expected: bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: []interface{}{`ObjectId("507f191e810c19729de860ea")`}}}}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Translate(tc.preds)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestTranslateRejectsNegation(t *testing.T) {
	_, err := Translate([]predicate.Predicate{
		predicate.Not{Child: predicate.Eq{Attribute: "name", Value: "n1"}},
	})
	require.ErrorIs(t, err, ErrUnsupportedPredicate)

	// A negation anywhere in the tree fails the whole translation.
	_, err = Translate([]predicate.Predicate{predicate.And{
		Left:  predicate.Eq{Attribute: "name", Value: "n1"},
		Right: predicate.Not{Child: predicate.Eq{Attribute: "age", Value: 18}},
	}})
	require.ErrorIs(t, err, ErrUnsupportedPredicate)
}
