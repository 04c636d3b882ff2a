// Feed diagnostics: fetches every feed from the configuration file and
// reports reachability, item counts and freshness. Run it when a feed goes
// quiet to tell a dead URL from a slow news day.
//
// Usage: go run scripts/diagnose_feeds.go [-config config.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"
)

// FeedDiagnostic is the result for a single feed.
type FeedDiagnostic struct {
	Name         string
	URL          string
	Status       string // "OK", "ERROR", "EMPTY", "TIMEOUT", "STALE"
	ItemCount    int
	LatestDate   string
	ErrorMessage string
	ResponseTime time.Duration
}

type feedEntry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type configFile struct {
	Feeds []feedEntry `yaml:"feeds"`
}

// staleAfter flags feeds whose newest item is older than this.
const staleAfter = 7 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file with the feed list")
	timeout := flag.Duration("timeout", 30*time.Second, "per-feed timeout")
	flag.Parse()

	feeds, err := loadFeeds(*configPath)
	if err != nil {
		log.Fatalf("load feeds: %v", err)
	}
	log.Printf("diagnosing %d feeds...", len(feeds))

	diagnostics := make([]FeedDiagnostic, 0, len(feeds))
	for i, feed := range feeds {
		log.Printf("[%d/%d] %s", i+1, len(feeds), feed.Name)
		diagnostics = append(diagnostics, diagnoseFeed(feed, *timeout))

		// Rate limiting to be nice to servers
		time.Sleep(500 * time.Millisecond)
	}

	printReport(diagnostics)

	for _, d := range diagnostics {
		if d.Status == "ERROR" || d.Status == "TIMEOUT" {
			os.Exit(1)
		}
	}
}

func loadFeeds(path string) ([]feedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("no feeds in %s", path)
	}
	return cfg.Feeds, nil
}

func diagnoseFeed(feed feedEntry, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{Name: feed.Name, URL: feed.URL}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.UserAgent = "NewswatchBot"
	parser.Client = &http.Client{Timeout: timeout}

	start := time.Now()
	parsed, err := parser.ParseURLWithContext(feed.URL, ctx)
	diag.ResponseTime = time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
		} else {
			diag.Status = "ERROR"
		}
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.ItemCount = len(parsed.Items)
	if diag.ItemCount == 0 {
		diag.Status = "EMPTY"
		return diag
	}

	var latest time.Time
	for _, item := range parsed.Items {
		if item.PublishedParsed != nil && item.PublishedParsed.After(latest) {
			latest = *item.PublishedParsed
		}
	}
	if !latest.IsZero() {
		diag.LatestDate = latest.Format(time.RFC3339)
		if time.Since(latest) > staleAfter {
			diag.Status = "STALE"
			return diag
		}
	}

	diag.Status = "OK"
	return diag
}

func printReport(diagnostics []FeedDiagnostic) {
	var ok int
	for _, d := range diagnostics {
		if d.Status == "OK" {
			ok++
		}
	}
	fmt.Printf("\n%d/%d feeds healthy\n\n", ok, len(diagnostics))

	for _, d := range diagnostics {
		fmt.Printf("%-8s %s\n", d.Status, d.Name)
		fmt.Printf("         %s\n", d.URL)
		if d.Status == "OK" || d.Status == "STALE" {
			fmt.Printf("         items=%d latest=%s response=%s\n",
				d.ItemCount, d.LatestDate, d.ResponseTime.Round(time.Millisecond))
		}
		if d.ErrorMessage != "" {
			fmt.Printf("         error: %s\n", d.ErrorMessage)
		}
	}
}
