package mongodb

import (
	"context"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana/dskit/instrument"
	"github.com/grafana/dskit/multierror"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/grafana/mongoscan/pkg/predicate"
)

// ErrNoCursor is returned by Next when the reader has no open cursor:
// Init has not succeeded yet, or Close has already run.
var ErrNoCursor = errors.New("mongodb: reader has no open cursor")

// InitError wraps any failure during partition reader initialization:
// filter translation, connection setup, or opening the cursor. The
// reader stays uninitialized and may be re-inited or closed.
type InitError struct {
	cause error
}

func (e *InitError) Error() string {
	return "mongodb: initializing partition reader: " + e.cause.Error()
}

func (e *InitError) Unwrap() error { return e.cause }

// Reader scans one partition of a collection, pulling documents that
// match the pushed-down filters, restricted to the requested columns.
// A Reader is driven by a single task and is not safe for concurrent
// use; run one Reader per partition instead. Close must be called
// exactly once per reader regardless of how iteration ends.
type Reader struct {
	cfg     Config
	columns []string
	filters []predicate.Predicate
	logger  log.Logger

	// Both are nil outside the initialized state; their presence is the
	// reader's state machine.
	client *mongo.Client
	cursor *mongo.Cursor

	buffered bson.D
	hasBuf   bool
	err      error
}

// NewReader returns an uninitialized Reader. Columns and filters are
// fixed for the reader's lifetime.
func NewReader(cfg Config, columns []string, filters []predicate.Predicate, logger log.Logger) *Reader {
	return &Reader{
		cfg:     cfg,
		columns: columns,
		filters: filters,
		logger:  logger,
	}
}

// Init translates the filters and projection, connects to the
// partition's hosts and opens the bounded cursor. On failure nothing
// stays acquired and the reader remains uninitialized.
func (r *Reader) Init(ctx context.Context, p Partition) error {
	// Translation is pure; doing it first means a bad filter tree never
	// acquires a connection.
	query, err := Translate(r.filters)
	if err != nil {
		return &InitError{cause: err}
	}
	projection := Projection(r.columns)

	client, err := r.connect(ctx, p.Hosts)
	if err != nil {
		return &InitError{cause: err}
	}

	coll := client.Database(r.cfg.Database).Collection(r.cfg.Collection)
	cursor, err := r.find(ctx, coll, query, findOptions(r.cfg, projection, p))
	if err != nil {
		if derr := client.Disconnect(ctx); derr != nil {
			level.Warn(r.logger).Log("msg", "failed to disconnect after init failure", "err", derr)
		}
		return &InitError{cause: err}
	}

	r.client = client
	r.cursor = cursor
	level.Debug(r.logger).Log("msg", "partition reader initialized",
		"database", r.cfg.Database, "collection", r.cfg.Collection, "hosts", strings.Join(p.Hosts, ","))
	return nil
}

func (r *Reader) connect(ctx context.Context, hosts []string) (*mongo.Client, error) {
	var client *mongo.Client
	err := instrument.CollectedRequest(ctx, "MongoDB.Connect", requestDuration, instrument.ErrorCode, func(ctx context.Context) error {
		var err error
		client, err = mongo.Connect(ctx, r.cfg.clientOptions(hosts))
		if err != nil {
			return errors.Wrap(err, "connecting to partition hosts")
		}
		// Connect does not dial. Force the handshake so an unreachable
		// host fails here rather than inside the first cursor batch.
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			if derr := client.Disconnect(ctx); derr != nil {
				level.Warn(r.logger).Log("msg", "failed to disconnect after ping failure", "err", derr)
			}
			return errors.Wrap(err, "pinging partition hosts")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *Reader) find(ctx context.Context, coll *mongo.Collection, query bson.D, opts *options.FindOptions) (*mongo.Cursor, error) {
	var cursor *mongo.Cursor
	err := instrument.CollectedRequest(ctx, "MongoDB.Find", requestDuration, instrument.ErrorCode, func(ctx context.Context) error {
		var err error
		cursor, err = coll.Find(ctx, query, opts)
		return errors.Wrap(err, "opening partition cursor")
	})
	if err != nil {
		return nil, err
	}
	return cursor, nil
}

// findOptions bounds the scan to the partition's identifier range so
// the server walks the id index for exactly this partition instead of
// scanning the whole collection. Recent servers require an explicit
// index hint alongside min/max.
func findOptions(cfg Config, projection bson.D, p Partition) *options.FindOptions {
	opts := options.Find()
	if cfg.BatchSize > 0 {
		opts = opts.SetBatchSize(int32(cfg.BatchSize))
	}
	if len(projection) > 0 {
		opts = opts.SetProjection(projection)
	}
	if p.MinKey != nil || p.MaxKey != nil {
		opts = opts.SetHint(bson.D{{Key: idField, Value: 1}})
		if p.MinKey != nil {
			opts = opts.SetMin(bson.D{{Key: idField, Value: p.MinKey}})
		}
		if p.MaxKey != nil {
			opts = opts.SetMax(bson.D{{Key: idField, Value: p.MaxKey}})
		}
	}
	return opts
}

// HasNext reports whether another document is available, fetching the
// next batch from the server when needed. It never fails: a reader
// without an open cursor has nothing more to return, and a driver error
// hit while buffering is held and surfaced by the following Next.
func (r *Reader) HasNext(ctx context.Context) bool {
	if r.cursor == nil || r.err != nil {
		return false
	}
	if r.hasBuf {
		return true
	}
	if !r.cursor.Next(ctx) {
		r.err = errors.Wrap(r.cursor.Err(), "advancing partition cursor")
		return false
	}
	var doc bson.D
	if err := r.cursor.Decode(&doc); err != nil {
		r.err = errors.Wrap(err, "decoding document")
		return false
	}
	r.buffered = doc
	r.hasBuf = true
	return true
}

// Next returns the next document and advances the cursor. It returns
// ErrNoCursor when the reader is uninitialized or closed, and io.EOF
// once the partition is exhausted.
func (r *Reader) Next(ctx context.Context) (bson.D, error) {
	if r.cursor == nil {
		return nil, ErrNoCursor
	}
	if !r.hasBuf && !r.HasNext(ctx) {
		if r.err != nil {
			return nil, r.err
		}
		return nil, io.EOF
	}
	doc := r.buffered
	r.buffered = nil
	r.hasBuf = false
	documentsRead.Inc()
	return doc, nil
}

// Close releases the cursor, then the connection, each unconditionally.
// Safe to call in any state and repeatedly.
func (r *Reader) Close(ctx context.Context) error {
	errs := multierror.New()
	if r.cursor != nil {
		errs.Add(errors.Wrap(r.cursor.Close(ctx), "closing partition cursor"))
		r.cursor = nil
	}
	if r.client != nil {
		errs.Add(errors.Wrap(r.client.Disconnect(ctx), "disconnecting from partition hosts"))
		r.client = nil
		level.Debug(r.logger).Log("msg", "partition reader closed",
			"database", r.cfg.Database, "collection", r.cfg.Collection)
	}
	r.buffered = nil
	r.hasBuf = false
	return errs.Err()
}
