package mongodb

import "go.mongodb.org/mongo-driver/bson"

// Projection builds the field selection document for a find. An empty
// field list yields an empty document, meaning whole documents are
// returned. Otherwise every requested field is included, and the
// identifier field is excluded explicitly unless requested, since the
// server returns it by default.
func Projection(fields []string) bson.D {
	proj := bson.D{}
	if len(fields) == 0 {
		return proj
	}
	includeID := false
	for _, f := range fields {
		if f == idField {
			includeID = true
			continue
		}
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	idFlag := 0
	if includeID {
		idFlag = 1
	}
	return append(proj, bson.E{Key: idField, Value: idFlag})
}
