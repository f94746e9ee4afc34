package pydock

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"pydock/internal/output"
	"pydock/internal/scan"
)

// watchDebounce coalesces bursts of filesystem events (editors tend to write
// several times in quick succession) into one redeployment.
const watchDebounce = 500 * time.Millisecond

// Watch re-runs Deploy whenever the source tree changes. Newly created
// directories are picked up as long as they are not pruned. Deployment errors
// are reported and watching continues; only watcher failures end the loop.
func (d *deployer) Watch(stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return newCommandError("watcher setup failed", err)
	}
	defer watcher.Close()

	addAll := func() {
		dirs, dirErr := scan.Dirs(d.sourceRoot, d.rules)
		if dirErr != nil {
			d.printer.Out(output.Warning, "Watch registration incomplete: %s\n", dirErr)
		}
		for _, dir := range dirs {
			if addErr := watcher.Add(dir); addErr != nil {
				d.printer.Out(output.Warning, "Cannot watch %s: %s\n", dir, addErr)
			}
		}
	}
	addAll()
	d.printer.Out(output.Normal, "Watching %s for changes...\n", d.sourceRoot)

	var debounce *time.Timer
	fire := make(chan struct{}, 1)
	scheduleRun := func() {
		if debounce == nil {
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
			return
		}
		debounce.Reset(watchDebounce)
	}

	for {
		select {
		case event, open := <-watcher.Events:
			if !open {
				return nil
			}
			if d.rules.SkipFile(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				d.printer.Out(output.Verbose, "Change detected: %s\n", event.Name)
				scheduleRun()
			}
		case watchErr, open := <-watcher.Errors:
			if !open {
				return nil
			}
			d.printer.Out(output.Warning, "Watcher error: %s\n", watchErr)
		case <-fire:
			if _, deployErr := d.Deploy(); deployErr != nil {
				d.printer.Out(output.Error, "Redeployment failed: %s\n", deployErr)
			}
			addAll() //cover directories created since the last registration
		case <-stop:
			return nil
		}
	}
}
