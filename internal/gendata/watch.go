package gendata

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"freeark_web/pkg/log"
	"freeark_web/pkg/storage"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 合并编辑器保存时的连续写事件。
const DefaultDebounce = 500 * time.Millisecond

// Watch 先生成一次，然后在源文件变化后重新生成，直到 ctx 结束。
// 监听的是源文件所在目录，编辑器用“写临时文件再 rename”方式保存时也能收到事件。
// 单次生成失败只记录日志，之后的修改会再次触发。
// onRun 可以为 nil，每次生成结束后调用，供测试同步使用。
func Watch(ctx context.Context, opts Options, sink storage.Sink, debounce time.Duration, onRun func(error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return fmt.Errorf("resolve source: %w", err)
	}
	if err := watcher.Add(filepath.Dir(source)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(source), err)
	}

	run := func() {
		_, err := Run(ctx, opts, sink)
		if err != nil {
			log.Error("Generation failed, waiting for next change", err)
		}
		if onRun != nil {
			onRun(err)
		}
	}
	run()
	log.Infof("Watching %s for changes", source)

	// 每次事件都把计时器往后推，静默 debounce 之后才生成
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != source {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			log.Debugf("Source changed: %s", ev)
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Watcher error: %v", err)
		case <-timer.C:
			run()
		}
	}
}
