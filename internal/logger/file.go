package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var lock sync.Mutex

// FileWriter appends log output to <dir>/YYYY-MM-DD.log, one file per day.
type FileWriter struct {
	dir string
	now func() time.Time
}

func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir, now: time.Now}
}

// Path is the file the next write goes to.
func (w *FileWriter) Path() string {
	return filepath.Join(w.dir, fmt.Sprintf("%s.log", w.now().Format("2006-01-02")))
}

func (w *FileWriter) Write(p []byte) (int, error) {
	lock.Lock()
	defer lock.Unlock()
	if _, err := os.Stat(w.dir); os.IsNotExist(err) {
		if err := os.MkdirAll(w.dir, 0776); err != nil {
			return 0, err
		}
	}
	f, err := os.OpenFile(w.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()
	return f.Write(p)
}
