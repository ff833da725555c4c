package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// idField is the collection's primary key attribute.
const idField = "_id"

// objectIDLiteral is the constructor form the query planner uses to
// serialize identifier literals, e.g. ObjectId("507f191e810c19729de860ea").
// Both quote styles occur. The driver does not parse this form itself.
// The two quote styles are spelled out as alternatives because RE2 has
// no backreferences; the quotes must still match.
var objectIDLiteral = regexp.MustCompile(`^ObjectId\((?:'([0-9a-fA-F]{24})'|"([0-9a-fA-F]{24})")\)$`)

// coerceValue rewrites identifier constructor literals into native
// ObjectIDs. Only values compared against the identifier attribute are
// touched; any value that does not match the literal grammar passes
// through unchanged.
func coerceValue(attribute string, v interface{}) interface{} {
	if attribute != idField {
		return v
	}
	s, ok := v.(string)
	if !ok {
		return v
	}
	m := objectIDLiteral.FindStringSubmatch(s)
	if m == nil {
		return v
	}
	hex := m[1]
	if hex == "" {
		hex = m[2]
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return v
	}
	return oid
}
