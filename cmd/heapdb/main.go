// Command heapdb bulk-loads a delimited table into a heap file and runs
// query descriptions against it. It is a thin CLI shell over the pager,
// catalog, ingest and query packages; all storage and execution semantics
// live there.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mpatterson/heapdb/catalog"
	"github.com/mpatterson/heapdb/config"
	"github.com/mpatterson/heapdb/ingest"
	"github.com/mpatterson/heapdb/query"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("loading config")
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	app := &cli.App{
		Name:  "heapdb",
		Usage: "slotted-page heap store and pull-based query executor",
		Commands: []*cli.Command{
			loadCommand(cfg),
			queryCommand(cfg),
		},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("heapdb")
	}
}

func loadCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "load",
		Usage:     "bulk-load a CSV table into a heap file",
		ArgsUsage: "<table> <csv-path>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: heapdb load <table> <csv-path>", 1)
			}
			table := c.Args().Get(0)
			csvPath := c.Args().Get(1)
			heapPath := filepath.Join(cfg.DataDir, table+".heap")
			if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
				return err
			}
			t, err := ingest.LoadCSV(csvPath, heapPath, table)
			if err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"table": table,
				"rows":  t.Heap.RowCount(),
				"pages": t.Heap.PageCount(),
			}).Info("load complete")
			return nil
		},
	}
}

func queryCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "run a query description against already-loaded tables",
		ArgsUsage: "<query-description.json> <table> [<table> ...]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return cli.Exit("usage: heapdb query <query-description.json> <table> [<table> ...]", 1)
			}
			descPath := c.Args().Get(0)
			tables := c.Args().Slice()[1:]

			data, err := os.ReadFile(descPath)
			if err != nil {
				return err
			}
			clauses, err := query.ParseDescription(data)
			if err != nil {
				return err
			}

			cat := catalog.New()
			for _, table := range tables {
				heapPath := filepath.Join(cfg.DataDir, table+".heap")
				t, err := openExistingTable(cfg, table, heapPath)
				if err != nil {
					return err
				}
				cat.Register(t)
			}

			src, err := query.Assemble(cat, clauses)
			if err != nil {
				return err
			}
			rows, err := query.Drain(src)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			return enc.Encode(rows)
		},
	}
}

func openExistingTable(cfg *config.Config, table, heapPath string) (*catalog.Table, error) {
	schemaPath := filepath.Join(cfg.DataDir, table+".schema.json")
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("reading schema for table %s (expected alongside heap file at %s): %w", table, schemaPath, err)
	}
	var fields []string
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return ingest.OpenHeapTable(heapPath, table, fields)
}
