package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// rollingFile is an hourly-rotating log file: prefix = widget name,
// suffix = "log", rotation period = one hour. Each
// rotated file is named "<widget>.<unix-hour-bucket>.log" so a crash
// never clobbers a previous hour's file on restart.
type rollingFile struct {
	mu     sync.Mutex
	dir    string
	widget string
	f      *os.File
	bucket int64
	now    func() time.Time
}

// newRollingFile opens nothing up front; the first Write creates the
// current hour's file.
func newRollingFile(dir, widget string) (*rollingFile, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}
	return &rollingFile{dir: dir, widget: widget, now: time.Now}, nil
}

func (rf *rollingFile) hourBucket() int64 {
	return rf.now().Unix() / 3600
}

func (rf *rollingFile) rotateLocked() error {
	if rf.f != nil {
		rf.f.Close()
	}
	bucket := rf.hourBucket()
	name := fmt.Sprintf("%s.%d.log", rf.widget, bucket)
	f, err := os.OpenFile(filepath.Join(rf.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	rf.f = f
	rf.bucket = bucket
	return nil
}

// Write implements io.Writer, rotating to a new hourly file first if the
// current hour bucket has advanced.
func (rf *rollingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.f == nil || rf.hourBucket() != rf.bucket {
		if err := rf.rotateLocked(); err != nil {
			return 0, err
		}
	}
	return rf.f.Write(p)
}

func (rf *rollingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.f == nil {
		return nil
	}
	return rf.f.Close()
}
