// Command manifest scans a public directory for background videos and writes
// the JSON manifest the desktop app reads.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/borgmon/reminder-clock/pkg/backgrounds"
	"github.com/borgmon/reminder-clock/pkg/logging"
)

func main() {
	root := flag.String("root", "public", "directory containing videos/ and thumbs/")
	out := flag.String("out", "", "manifest path (default <root>/backgrounds.json)")
	logLevel := flag.String("log-level", "", "log level")
	flag.Parse()

	logging.Configure(logging.Config{Level: *logLevel, Service: "reminder-manifest"})
	logger := logging.WithComponent("manifest")

	if *out == "" {
		*out = filepath.Join(*root, "backgrounds.json")
	}

	items, err := backgrounds.Build(*root)
	if err != nil {
		logger.Error().Err(err).Str("root", *root).Msg("scan failed")
		os.Exit(1)
	}
	if err := backgrounds.Write(*out, items); err != nil {
		logger.Error().Err(err).Str("out", *out).Msg("write failed")
		os.Exit(1)
	}

	fmt.Printf("Wrote %d backgrounds -> %s\n", len(items), *out)
}
