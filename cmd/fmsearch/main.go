/*
Command fmsearch indexes a text file and answers exact pattern queries.

One-shot queries print one line per pattern with its number of
occurrences, and with -print-positions their sorted positions:

	fmsearch -file moby.txt -q "whale,Ahab" -print-positions

With -serve the index is kept in memory and queried through the msgpack
IPC protocol on stdin/stdout (see internal/server).

Index and search options come from a TOML file (-config), created with
defaults when missing. -algo and -step override the file.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/viniciusth/fmindex"
	"github.com/viniciusth/fmindex/internal/config"
	"github.com/viniciusth/fmindex/internal/logger"
	"github.com/viniciusth/fmindex/internal/server"
	"github.com/viniciusth/fmindex/internal/textio"
)

const (
	Version = "0.1.0"
	AppName = "fmsearch"
)

func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func printVersion() {
	l := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ fmsearch ] exact pattern search over FM-indexes")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h to see available options")
}

func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "fmindex.toml", "Path to the TOML config, created with defaults if missing")
	file := flag.String("file", "", "Text file to index")
	algo := flag.String("algo", "", "Suffix array algorithm: induced (sais) or doubling (mm); overrides the config")
	step := flag.Int("step", 0, "Occurrence checkpoint interval; overrides the config")
	queries := flag.String("q", "", "Comma separated patterns to search")
	printPositions := flag.Bool("print-positions", false, "Print the positions of every match")
	serve := flag.Bool("serve", false, "Serve queries over msgpack IPC on stdin/stdout")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	lg := logger.New(AppName)

	cfg, err := config.InitConfig(*configPath)
	if err != nil {
		lg.Fatalf("Failed to load config: %v", err)
	}
	if *algo != "" {
		cfg.Index.Algorithm = *algo
	}
	if *step > 0 {
		cfg.Index.Step = *step
	}
	if err := cfg.Validate(); err != nil {
		lg.Fatalf("Invalid config: %v", err)
	}

	if *file == "" {
		lg.Error("No input file, use -file")
		flag.Usage()
		os.Exit(1)
	}

	text, err := textio.Load(*file, cfg.Bench.MaxChars)
	if err != nil {
		lg.Fatalf("Failed to load text: %v", err)
	}

	start := time.Now()
	index, err := cfg.Index.Configure(fmindex.NewBuilder(text)).Build()
	if err != nil {
		lg.Fatalf("Failed to build index: %v", err)
	}
	stats := index.Stats()
	lg.Debug("Index built",
		"file", *file,
		"symbols", stats.Symbols,
		"alphabet", stats.AlphabetSize,
		"algo", stats.Algorithm,
		"step", stats.Step,
		"elapsed", time.Since(start))

	if *serve {
		srv := server.NewServer(index, cfg.Search, os.Stdin, os.Stdout, logger.New("server"))
		if err := srv.Start(); err != nil {
			lg.Fatalf("Server error: %v", err)
		}
		return
	}

	if *queries == "" {
		lg.Warn("No queries given, use -q")
		return
	}
	for _, p := range strings.Split(*queries, ",") {
		if p == "" {
			continue
		}
		if !*printPositions {
			fmt.Printf("%s\t%d\n", p, index.Count(p))
			continue
		}
		positions := index.Positions(p)
		fmt.Printf("%s\t%d\t%s\n", p, len(positions), joinInts(positions, cfg.Search.MaxResults))
	}
}

// joinInts formats up to limit values (all with limit < 1) separated by spaces.
func joinInts(values []int, limit int) string {
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d", v)
	}
	return sb.String()
}
