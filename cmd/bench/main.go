package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/viniciusth/fmindex"
	"github.com/viniciusth/fmindex/internal/config"
	"github.com/viniciusth/fmindex/internal/logger"
	"github.com/viniciusth/fmindex/internal/textio"
)

type book struct {
	name string
	text string
}

type memMonitor struct {
	maxAlloc uint64
	stop     chan struct{}
	done     chan struct{}
}

func newMemMonitor() *memMonitor {
	mm := &memMonitor{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(mm.done)
		for {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			if m.Alloc > mm.maxAlloc {
				mm.maxAlloc = m.Alloc
			}
			select {
			case <-mm.stop:
				return
			default:
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()
	return mm
}

func (mm *memMonitor) Stop() uint64 {
	close(mm.stop)
	<-mm.done
	return mm.maxAlloc
}

func getCurrentAlloc() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

type measurement struct {
	dur   time.Duration
	peak  uint64
	alloc uint64
}

// measure runs f with a memory monitor. Peak and retained allocations are
// reported relative to the heap before the run.
func measure(f func()) measurement {
	runtime.GC()
	base := getCurrentAlloc()
	mm := newMemMonitor()
	start := time.Now()
	f()
	dur := time.Since(start)
	peak := mm.Stop()
	runtime.GC()
	alloc := getCurrentAlloc()
	return measurement{dur: dur, peak: sub(peak, base), alloc: sub(alloc, base)}
}

func sub(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}

func printRow(b book, algo string, run, n int, m measurement, queryDur time.Duration, matches int) {
	fmt.Printf("%s,%s,%d,%d,%.0f,%d,%d,%.0f,%d\n",
		b.name, algo, n, run,
		float64(m.dur.Nanoseconds()), m.peak, m.alloc,
		float64(queryDur.Nanoseconds()), matches)
}

func benchSuffixArrays(b book, runs int, skipDoubling, skipInduced bool, lg *log.Logger) {
	text, err := fmindex.Normalize(fmindex.PrepareText(b.text, true, true), fmindex.DefaultSentinel)
	if err != nil {
		lg.Errorf("Skipping %s: %v", b.name, err)
		return
	}
	for run := 0; run < runs; run++ {
		var doubling, induced []int
		if !skipDoubling {
			m := measure(func() {
				doubling, err = fmindex.BuildDoubling(text.Codes)
			})
			if err != nil {
				lg.Errorf("Doubling on %s: %v", b.name, err)
				return
			}
			printRow(b, "doubling", run, text.Len(), m, 0, 0)
		}
		if !skipInduced {
			m := measure(func() {
				induced, err = fmindex.BuildInduced(text.Codes, text.Alphabet.Size())
			})
			if err != nil {
				lg.Errorf("Induced on %s: %v", b.name, err)
				return
			}
			printRow(b, "induced", run, text.Len(), m, 0, 0)
		}
		if doubling != nil && induced != nil {
			if err := fmindex.CompareSuffixArrays(doubling, induced); err != nil {
				lg.Errorf("%s: %v", b.name, err)
			}
		}
	}
}

func benchFM(b book, runs int, cfg config.IndexConfig, queries []string, lg *log.Logger) {
	for run := 0; run < runs; run++ {
		var index *fmindex.Index
		var err error
		m := measure(func() {
			index, err = cfg.Configure(fmindex.NewBuilder(b.text)).Build()
		})
		if err != nil {
			lg.Errorf("FM-index on %s: %v", b.name, err)
			return
		}

		matches := 0
		start := time.Now()
		for _, q := range queries {
			matches += index.Count(q)
		}
		queryDur := time.Since(start)

		algo := fmt.Sprintf("fm_%s_%s", cfg.Algorithm, cfg.Occurrences)
		printRow(b, algo, run, index.Stats().Symbols, m, queryDur, matches)
	}
}

func benchBatch(books []book, parallel int, cfg config.IndexConfig, lg *log.Logger) {
	texts := make([]string, len(books))
	total := 0
	for i, b := range books {
		texts[i] = b.text
		total += len(b.text)
	}
	var err error
	m := measure(func() {
		_, err = fmindex.BuildBatch(context.Background(), texts, parallel, cfg.Configure)
	})
	if err != nil {
		lg.Errorf("Batch build: %v", err)
		return
	}
	printRow(book{name: "batch"}, fmt.Sprintf("fm_batch_%d", parallel), 0, total, m, 0, 0)
}

func randomBook(r *rand.Rand, n, sigma int) book {
	words := make([]string, 0, n/6+1)
	size := 0
	for size < n {
		w := make([]byte, 1+r.Intn(8))
		for j := range w {
			w[j] = byte(r.Intn(sigma) + 'a')
		}
		words = append(words, string(w))
		size += len(w) + 1
	}
	text := strings.Join(words, " ")
	return book{name: fmt.Sprintf("random_%d_%d", n, sigma), text: text[:min(n, len(text))]}
}

func main() {
	configPath := flag.String("config", "", "Path to a TOML config (defaults when empty)")
	books := flag.String("books", "", "Comma separated text files; a random text is used when empty")
	queries := flag.String("queries", "", "Comma separated patterns; the config's bench.queries when empty")
	skipDoubling := flag.Bool("skip-doubling", false, "Skip the doubling suffix array builder")
	skipInduced := flag.Bool("skip-induced", false, "Skip the induced sorting suffix array builder")
	skipFM := flag.Bool("skip-fm", false, "Skip FM-index construction and queries")
	maxChars := flag.Int("max-chars", -1, "Truncate every text to this many characters, sentinel included (config value when negative)")
	runs := flag.Int("runs", 0, "Number of runs for averaging (config value when 0)")
	parallel := flag.Int("parallel", 0, "Also build every book at once with this many workers")
	n := flag.Int("n", 1_000_000, "Length of the random text")
	sigma := flag.Int("sigma", 26, "Alphabet size of the random text")
	cpuprofile := flag.String("cpuprofile", "", "Write CPU profile to file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	lg := logger.New("bench")
	if *debugMode {
		log.SetLevel(log.DebugLevel)
		lg = logger.NewDebug(os.Stderr, "bench")
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			lg.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *maxChars >= 0 {
		cfg.Bench.MaxChars = *maxChars
	}
	if *runs > 0 {
		cfg.Bench.Runs = *runs
	}
	if *parallel > 0 {
		cfg.Bench.Parallel = *parallel
	}
	if *queries != "" {
		cfg.Bench.Queries = strings.Split(*queries, ",")
	}
	if err := cfg.Validate(); err != nil {
		lg.Fatalf("Invalid config: %v", err)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			lg.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			lg.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	var corpus []book
	if *books == "" {
		if *n <= 0 || *sigma <= 0 || *sigma > 26 {
			fmt.Println("Usage: bench [-books=<a.txt,b.txt>] [-n=<N> -sigma=<1..26>] [-runs=<runs>] [-skip-doubling] [-skip-induced] [-skip-fm]")
			os.Exit(1)
		}
		b := randomBook(rand.New(rand.NewSource(1)), *n, *sigma)
		b.text = textio.Truncate(b.text, cfg.Bench.MaxChars)
		corpus = append(corpus, b)
	}
	for _, path := range strings.Split(*books, ",") {
		if path == "" {
			continue
		}
		text, err := textio.Load(path, cfg.Bench.MaxChars)
		if err != nil {
			lg.Errorf("Skipping %s: %v", path, err)
			continue
		}
		corpus = append(corpus, book{name: filepath.Base(path), text: text})
	}

	lg.Debug("Benchmark", "books", len(corpus), "runs", cfg.Bench.Runs, "queries", len(cfg.Bench.Queries))
	fmt.Println("book,algorithm,n,run,build_ns,peak_bytes,retained_bytes,query_ns,matches")
	for _, b := range corpus {
		benchSuffixArrays(b, cfg.Bench.Runs, *skipDoubling, *skipInduced, lg)
		if !*skipFM {
			benchFM(b, cfg.Bench.Runs, cfg.Index, cfg.Bench.Queries, lg)
		}
	}
	if !*skipFM && cfg.Bench.Parallel > 1 && len(corpus) > 1 {
		benchBatch(corpus, cfg.Bench.Parallel, cfg.Index, lg)
	}
}
