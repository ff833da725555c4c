package mongodb

// Partition describes one shard of a collection scan: the hosts serving
// it and an optional identifier range bounding the scan. Produced by
// the external partitioner and consumed read-only here. A nil MinKey or
// MaxKey leaves that side of the range unbounded.
type Partition struct {
	Hosts  []string
	MinKey interface{}
	MaxKey interface{}
}
