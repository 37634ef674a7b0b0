package app

import (
	"fmt"
	"log"
	"path"
	"path/filepath"
	"strings"
)

// pollReload 非阻塞地处理热重载事件
func (a *App) pollReload() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case p, ok := <-a.watcher.Events:
			if !ok {
				a.watcher = nil
				return
			}
			a.reloadFile(p)
		case err, ok := <-a.watcher.Errors:
			if ok {
				log.Printf("[App] Watcher error: %v", err)
			}
		default:
			return
		}
	}
}

// reloadFile 重新加载 osPath 对应的配置文件，必要时重建当前骨架
func (a *App) reloadFile(osPath string) {
	rel, err := configRelPath(a.watchDir, a.configManager.Dir(), osPath)
	if err != nil {
		log.Printf("[App] Ignoring change outside the data dir: %v", err)
		return
	}

	id, err := a.configManager.ReloadFile(rel)
	if err != nil {
		// 保留旧配置，等待下一次修改
		a.viewer.status = fmt.Sprintf("reload failed: %v", err)
		log.Printf("[App] Reload %s failed: %v", rel, err)
		return
	}

	// id 为空表示全局配置变化，影响当前骨架的播放参数
	if id != "" && id != a.viewer.unitID {
		a.viewer.status = fmt.Sprintf("reloaded %s", id)
		return
	}
	a.resources.InvalidateImages()
	if err := a.viewer.reloadUnit(); err != nil {
		a.viewer.status = fmt.Sprintf("reload failed: %v", err)
		return
	}
	a.viewer.status = fmt.Sprintf("reloaded %s", a.viewer.unitID)
}

// reloadAll 重新加载整个配置目录并重建当前骨架
func (a *App) reloadAll() {
	if err := a.configManager.Reload(); err != nil {
		a.viewer.status = fmt.Sprintf("reload failed: %v", err)
		log.Printf("[App] Reload failed: %v", err)
		return
	}
	a.resources.InvalidateImages()
	if err := a.viewer.reloadUnit(); err != nil {
		a.viewer.status = fmt.Sprintf("reload failed: %v", err)
		return
	}
	a.viewer.status = "reloaded all units"
}

// configRelPath 把 watchDir 下的磁盘路径转换为配置文件系统中 configDir 下的路径
func configRelPath(watchDir, configDir, osPath string) (string, error) {
	rel, err := filepath.Rel(watchDir, osPath)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is not under %s", osPath, watchDir)
	}
	return path.Join(configDir, rel), nil
}
