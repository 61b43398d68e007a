// Command heaptrace replays line-oriented allocation traces against
// independent allocator.Allocator instances and reports their utilization.
// It is ambient tooling, not part of the allocator's own contract: the
// trace format and this harness exist only to exercise and evaluate the
// library in internal/allocator.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unsafe"

	"github.com/Masterminds/semver/v3"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/orizon-lang/firstfit/internal/allocator"
	"github.com/orizon-lang/firstfit/internal/cli"
	"github.com/orizon-lang/firstfit/internal/region"
)

// supportedFormat is the range of trace file format versions this build
// knows how to replay.
var supportedFormat = mustConstraint("^1.0.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Runner drives one or more trace files and reports the result of each.
type Runner struct {
	Check  bool
	Logger *cli.Logger
}

// Result summarizes one trace file's replay.
type Result struct {
	Path       string
	Operations int
	Stats      allocator.Stats
	Err        error
}

func main() {
	checkFlag := flag.Bool("check", false, "run the consistency checker after every trace line")
	watchFlag := flag.String("watch", "", "watch this directory for new *.trace files and replay each as it appears")
	concurrency := flag.Int("concurrency", 1, "number of trace files to replay concurrently, each against its own allocator")
	verbose := flag.Bool("verbose", false, "log progress as each trace file is replayed")
	version := flag.Bool("version", false, "print version information and exit")
	jsonVersion := flag.Bool("json", false, "with --version, print it as JSON")
	flag.Parse()

	if *version {
		cli.PrintVersion("heaptrace", *jsonVersion)
		return
	}

	logger := cli.NewLogger(*verbose, false)
	runner := &Runner{Check: *checkFlag, Logger: logger}

	if *watchFlag != "" {
		if err := runner.Watch(*watchFlag); err != nil {
			cli.ExitWithError("watch %s: %v", *watchFlag, err)
		}
		return
	}

	paths := flag.Args()
	if len(paths) == 0 {
		cli.ExitWithError("usage: heaptrace [--check] [--concurrency N] trace-file...")
	}

	results, err := runner.RunAll(paths, *concurrency)
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	failed := false
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: FAILED: %v\n", r.Path, r.Err)
			failed = true
			continue
		}
		fmt.Printf("%s: %d operations, %d bytes in use, %d free blocks, %d extensions\n",
			r.Path, r.Operations, r.Stats.BytesInUse, r.Stats.FreeBlocks, r.Stats.ExtendCount)
	}
	// Each r.Err above is either a consistency-check failure or a malformed
	// trace line surfaced by RunFile; route the resulting exit through
	// HandleError rather than calling os.Exit directly.
	if failed {
		cli.HandleError(fmt.Errorf("one or more trace files failed to replay"), logger)
	}
}

// RunAll replays each path, running up to concurrency of them at once.
// Each worker gets its own *allocator.Allocator and region.Provider, so
// there is no shared allocator state to serialize across workers.
func (r *Runner) RunAll(paths []string, concurrency int) ([]Result, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	var sf singleflight.Group
	results := make([]Result, len(paths))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			v, err, _ := sf.Do(path, func() (interface{}, error) {
				return r.RunFile(path)
			})
			if err != nil {
				results[i] = Result{Path: path, Err: err}
				return nil
			}
			res := v.(Result)
			res.Path = path
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Watch replays every *.trace file that already exists in dir, then keeps
// watching for new ones until interrupted.
func (r *Runner) Watch(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".trace") {
			r.logAndRun(filepath.Join(dir, e.Name()))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && strings.HasSuffix(event.Name, ".trace") {
				r.logAndRun(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.Logger.Error("watch error: %v", err)
		}
	}
}

func (r *Runner) logAndRun(path string) {
	res, err := r.RunFile(path)
	if err != nil {
		r.Logger.Error("%s: %v", path, err)
		return
	}
	r.Logger.Info("%s: %d operations, %d bytes in use", path, res.Operations, res.Stats.BytesInUse)
}

// RunFile replays a single trace file against a freshly-constructed
// allocator and returns the resulting statistics.
func (r *Runner) RunFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	a, err := allocator.New(region.NewBufferProvider(0))
	if err != nil {
		return Result{}, fmt.Errorf("initialize allocator: %w", err)
	}

	live := make(map[string]unsafe.Pointer)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	ops := 0
	sawFormat := false

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "format:") {
			v := strings.TrimSpace(strings.TrimPrefix(line, "format:"))
			ver, err := semver.NewVersion(v)
			if err != nil {
				return Result{}, fmt.Errorf("line %d: invalid format version %q: %w", lineNo, v, err)
			}
			if !supportedFormat.Check(ver) {
				return Result{}, fmt.Errorf("line %d: trace format %s is not supported (want %s)", lineNo, v, supportedFormat)
			}
			sawFormat = true
			continue
		}
		if !sawFormat {
			return Result{}, fmt.Errorf("line %d: trace file is missing a leading \"format:\" line", lineNo)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "a":
			if len(fields) != 3 {
				return Result{}, fmt.Errorf("line %d: want \"a <id> <size>\"", lineNo)
			}
			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return Result{}, fmt.Errorf("line %d: bad size: %w", lineNo, err)
			}
			live[fields[1]] = a.Alloc(uintptr(size))

		case "f":
			if len(fields) != 2 {
				return Result{}, fmt.Errorf("line %d: want \"f <id>\"", lineNo)
			}
			a.Free(live[fields[1]])
			delete(live, fields[1])

		case "r":
			if len(fields) != 3 {
				return Result{}, fmt.Errorf("line %d: want \"r <id> <size>\"", lineNo)
			}
			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return Result{}, fmt.Errorf("line %d: bad size: %w", lineNo, err)
			}
			live[fields[1]] = a.Realloc(live[fields[1]], uintptr(size))

		default:
			return Result{}, fmt.Errorf("line %d: unknown operation %q", lineNo, fields[0])
		}
		ops++

		if r.Check {
			if err := a.Check(nil); err != nil {
				return Result{}, fmt.Errorf("line %d: consistency check failed: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, err
	}

	return Result{Operations: ops, Stats: a.Stats()}, nil
}
