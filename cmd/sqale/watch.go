package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/sqale-lang/sqale/vm"
)

// watchCommand re-runs a source file every time it changes on disk,
// debounced so editors that write in bursts trigger one run, not five.
var watchCommand = &cli.Command{
	Name:      "watch",
	Usage:     "re-run a SQALE source file on every change",
	ArgsUsage: "<file.sq>",
	Action: func(ctx *cli.Context) error {
		path := ctx.Args().First()
		if path == "" {
			return cli.Exit("watch requires a source file argument", 2)
		}

		sw, err := newSourceWatcher(path)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer sw.Close()

		fmt.Fprintf(ctx.App.Writer, "sqale watch: watching %s\n", path)
		sw.rerun()
		sw.run()

		return nil
	},
}

type sourceWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func newSourceWatcher(path string) (*sourceWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &sourceWatcher{watcher: w, path: path, debounce: 200 * time.Millisecond}, nil
}

func (sw *sourceWatcher) Close() { sw.watcher.Close() }

func (sw *sourceWatcher) run() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != filepath.Clean(sw.path) {
				continue
			}

			if event.Op&fsnotify.Chmod == fsnotify.Chmod {
				continue
			}

			sw.schedule()
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}

			fmt.Fprintf(os.Stderr, "sqale watch: %v\n", err)
		}
	}
}

func (sw *sourceWatcher) schedule() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.timer != nil {
		sw.timer.Stop()
	}

	sw.timer = time.AfterFunc(sw.debounce, sw.rerun)
}

func (sw *sourceWatcher) rerun() {
	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("sqale watch: re-running %s (%s)\n", sw.path, time.Now().Format("15:04:05"))

	v := vm.New(os.Stdout)
	if err := v.RunFile(sw.path); err != nil {
		fmt.Fprintf(os.Stderr, "sqale watch: %v\n", err)
		return
	}

	v.CallMain()
}
