package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v2"

	"github.com/grafana/mongoscan/pkg/mongodb"
)

func main() {
	var (
		cfg        mongodb.Config
		configFile string
		hosts      string
		fields     string
		minKey     string
		maxKey     string
	)
	cfg.RegisterFlags(flag.CommandLine)
	flag.StringVar(&configFile, "config.file", "", "YAML file with the connection config. Values from the file override flags.")
	flag.StringVar(&hosts, "partition.hosts", "", "Comma-separated hosts serving the partition.")
	flag.StringVar(&minKey, "partition.min-key", "", "Inclusive lower _id bound of the partition.")
	flag.StringVar(&maxKey, "partition.max-key", "", "Upper _id bound of the partition.")
	flag.StringVar(&fields, "fields", "", "Comma-separated fields to project. Empty returns whole documents.")
	flag.Parse()

	logger := level.NewFilter(log.NewLogfmtLogger(os.Stderr), level.AllowInfo())

	if err := run(cfg, configFile, hosts, fields, minKey, maxKey, logger); err != nil {
		level.Error(logger).Log("msg", "scan failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg mongodb.Config, configFile, hosts, fields, minKey, maxKey string, logger log.Logger) error {
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return errors.Wrap(err, "reading config file")
		}
		if err := yaml.UnmarshalStrict(buf, &cfg); err != nil {
			return errors.Wrap(err, "parsing config file")
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if hosts == "" {
		return errors.New("-partition.hosts is required")
	}

	partition := mongodb.Partition{Hosts: strings.Split(hosts, ",")}
	if minKey != "" {
		partition.MinKey = minKey
	}
	if maxKey != "" {
		partition.MaxKey = maxKey
	}

	var columns []string
	if fields != "" {
		columns = strings.Split(fields, ",")
	}

	// The predicate tree normally arrives from the query planner; this
	// tool scans the partition unfiltered.
	reader := mongodb.NewReader(cfg, columns, nil, logger)

	ctx := context.Background()
	if err := reader.Init(ctx, partition); err != nil {
		return err
	}
	defer func() {
		if err := reader.Close(ctx); err != nil {
			level.Warn(logger).Log("msg", "failed to close partition reader", "err", err)
		}
	}()

	n := 0
	for reader.HasNext(ctx) {
		doc, err := reader.Next(ctx)
		if err != nil {
			return err
		}
		buf, err := bson.MarshalExtJSON(doc, true, false)
		if err != nil {
			return errors.Wrap(err, "encoding document")
		}
		fmt.Println(string(buf))
		n++
	}
	// HasNext never fails; a draining error is only visible via Next.
	if _, err := reader.Next(ctx); err != nil && err != io.EOF {
		return err
	}

	level.Info(logger).Log("msg", "partition drained", "documents", n)
	return nil
}
