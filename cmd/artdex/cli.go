package main

import (
	"context"
	"io"

	"github.com/fwojciec/artdex"
	"github.com/fwojciec/artdex/fs"
	"github.com/fwojciec/artdex/scrape"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Cache      artdex.CacheStore
	Discoverer *scrape.Discoverer
	Pipeline   *scrape.Pipeline
	Reports    artdex.ReportWriter
	Tokens     artdex.TokenCounter
	Images     *fs.Downloader
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Cache   string `help:"Cache path: a database file for sqlite, a directory for badger. Overrides ARTDEX_DB."`
	Backend string `help:"Cache backend" enum:"sqlite,badger" default:"sqlite"`
	Verbose bool   `short:"v" help:"Log fetches, discovery, and remote calls to stderr"`

	Scrape  ScrapeCmd  `cmd:"" help:"Scrape a portfolio site into the cache and write the catalog"`
	Preview PreviewCmd `cmd:"" help:"Show the URLs a scrape would process"`
	List    ListCmd    `cmd:"" help:"List cached works"`
	Report  ReportCmd  `cmd:"" help:"Write the catalog from cached works"`
	Images  ImagesCmd  `cmd:"" help:"Download the images of cached works"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL          string   `arg:"" help:"Portfolio site URL"`
	Concurrency  int      `short:"c" default:"2" help:"Concurrent URL limit"`
	Rate         float64  `short:"r" default:"10" help:"Remote extraction calls per minute"`
	Extractor    string   `help:"Extraction backend" enum:"firecrawl,gemini" default:"firecrawl"`
	Render       bool     `help:"Render pages in a headless browser before parsing"`
	ScrollPasses int      `name:"scroll-passes" default:"3" help:"Lazy-load scroll passes per rendered page"`
	Incremental  bool     `short:"i" help:"Process only new or changed URLs"`
	Limit        int      `short:"n" help:"Process at most this many URLs"`
	Filter       []string `short:"F" name:"filter" help:"Exclude URLs matching regex (repeatable)"`
	KnownTitles  string   `name:"known-titles" help:"YAML file mapping titles to their canonical work URLs"`
	ReportDir    string   `name:"report-dir" default:"report" help:"Catalog output directory"`
}

// PreviewCmd is the "preview" subcommand.
type PreviewCmd struct {
	URL    string   `arg:"" help:"Portfolio site URL"`
	Filter []string `short:"F" name:"filter" help:"Exclude URLs matching regex (repeatable)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Host     string `help:"Filter by site host"`
	Category string `help:"Filter by category"`
	Year     string `help:"Filter by year"`
	Full     bool   `help:"Show every extracted field"`
}

// ReportCmd is the "report" subcommand.
type ReportCmd struct {
	URL string `arg:"" help:"Portfolio site URL"`
	Dir string `short:"d" default:"report" help:"Catalog output directory"`
}

// ImagesCmd is the "images" subcommand.
type ImagesCmd struct {
	URL         string `arg:"" help:"Portfolio site URL"`
	Dir         string `short:"d" default:"images" help:"Download directory"`
	Concurrency int    `short:"c" default:"2" help:"Concurrent download limit"`
}
