package permission

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

var _ wifiinfo.PermissionChecker = Static(true)

// Static always answers with the same value.
type Static bool

func (s Static) HasLocationPermission() bool {
	return bool(s)
}

var _ wifiinfo.PermissionChecker = &GrantFile{}
var _ wifiinfo.Service = &GrantFile{}

/* GrantFile
 *
 * Location permission is granted for as long as the grant file exists.
 * Whatever grants access (a setup UI, an admin) just touches or removes
 * the file. The parent directory is watched so the answer follows the
 * file without a stat on every poll.
 */
type GrantFile struct {
	path    string
	granted atomic.Bool
	watcher *fsnotify.Watcher
	log     logrus.FieldLogger
}

func NewGrantFile(path string, log logrus.FieldLogger) (*GrantFile, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	path = filepath.Clean(path)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	g := &GrantFile{
		path:    path,
		watcher: fsw,
		log:     log.WithFields(logrus.Fields{"component": "permission", "grant_file": path}),
	}
	g.refresh()
	go g.watch()
	return g, nil
}

func (t *GrantFile) HasLocationPermission() bool {
	return t.granted.Load()
}

func (t *GrantFile) refresh() {
	_, err := os.Stat(t.path)
	granted := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.log.WithError(err).Warn("cannot stat grant file, treating as denied")
	}
	if t.granted.Swap(granted) != granted {
		t.log.WithField("granted", granted).Info("location permission changed")
	}
}

func (t *GrantFile) watch() {
	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) == t.path {
				t.refresh()
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.log.WithError(err).Warn("watcher error")
		}
	}
}

func (t *GrantFile) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		<-stop
		t.Close()
		stopped <- true
	}()
	return nil
}

// Close stops watching; the last known answer is kept.
func (t *GrantFile) Close() error {
	return t.watcher.Close()
}
