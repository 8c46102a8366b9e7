package report

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/pvsim/core/factory"
	corereport "github.com/kilianp07/pvsim/core/report"
)

// init registers the file and database backed stores.
func init() {
	_ = corereport.RegisterStore("jsonl", func(conf map[string]any) (corereport.Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "reports.jsonl"
		}
		return NewJSONLStore(c.Path)
	})

	_ = corereport.RegisterStore("rotating", func(conf map[string]any) (corereport.Store, error) {
		c := struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
			Compress   bool   `json:"compress"`
		}{Path: "reports.jsonl", MaxSizeMB: 10}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays, c.Compress)
	})

	_ = corereport.RegisterStore("sqlite", func(conf map[string]any) (corereport.Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "reports.db"
		}
		return NewSQLiteStore(c.Path)
	})

	_ = corereport.RegisterStore("postgres", func(conf map[string]any) (corereport.Store, error) {
		var c struct {
			DSN            string `json:"dsn"`
			ConnectTimeout int    `json:"connect_timeout_seconds"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.DSN == "" {
			return nil, fmt.Errorf("postgres store requires dsn")
		}
		if c.ConnectTimeout <= 0 {
			c.ConnectTimeout = 10
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.ConnectTimeout)*time.Second)
		defer cancel()
		return NewPostgresStore(ctx, c.DSN)
	})
}
