package config

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval 同一文件最后一次事件之后静默这么久才发送，
// 编辑器分多次写入时只报告写完的结果
const debounceInterval = 100 * time.Millisecond

// Watcher 监听目录中 YAML 文件的变化，用于热重载
//
// Events 发送发生变化的文件路径；Close 之后两个通道都会被关闭。
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher 创建监听器并开始监听 dirs
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close 停止监听
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()

	pending := newDebouncer(debounceInterval)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	// schedule 把定时器对准最早到期的文件
	schedule := func(now time.Time) {
		timer.Stop()
		if at, ok := pending.next(); ok {
			timer.Reset(max(at.Sub(now), 0))
		}
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !IsConfigFile(event.Name) {
				continue
			}
			now := time.Now()
			pending.add(event.Name, now)
			schedule(now)
		case now := <-timer.C:
			for _, name := range pending.due(now) {
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
			schedule(time.Now())
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				// 上一个错误尚未被读取，丢弃
			}
		case <-w.closeCh:
			return
		}
	}
}

// debouncer 按文件记录最后一次事件的到期时间（后沿去抖）
type debouncer struct {
	interval  time.Duration
	deadlines map[string]time.Time
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{interval: interval, deadlines: make(map[string]time.Time)}
}

// add 记录 name 的一次事件，到期时间顺延到 now+interval
func (d *debouncer) add(name string, now time.Time) {
	d.deadlines[name] = now.Add(d.interval)
}

// due 取出在 now 之前到期的文件，按路径排序
func (d *debouncer) due(now time.Time) []string {
	var names []string
	for name, at := range d.deadlines {
		if !at.After(now) {
			names = append(names, name)
			delete(d.deadlines, name)
		}
	}
	sort.Strings(names)
	return names
}

// next 返回最早的到期时间
func (d *debouncer) next() (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, at := range d.deadlines {
		if !found || at.Before(earliest) {
			earliest, found = at, true
		}
	}
	return earliest, found
}

// IsConfigFile 是否为 YAML 配置文件
func IsConfigFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
