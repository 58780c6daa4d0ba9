package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the shared logrus instance for the process.
var Logger = logrus.New()

var once sync.Once

// EventFormatter renders one log record per line with a unique event id,
// so individual delivery attempts can be traced through rotated files.
type EventFormatter struct {
	SystemName string
}

func (f *EventFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(fmt.Sprintf("time=%s ", entry.Time.Format("2006-01-02T15:04:05Z07:00")))
	b.WriteString(fmt.Sprintf("system=%s ", f.SystemName))
	b.WriteString(fmt.Sprintf("level=%s ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("event_id=%s ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("msg=%q", entry.Message))

	for k, v := range entry.Data {
		b.WriteString(fmt.Sprintf(" %s=%v", k, v))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Init configures the shared logger to write rotated files at path.
// Safe to call more than once; only the first call takes effect.
func Init(systemName, path string) {
	once.Do(func() {
		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				logrus.Fatalf("Failed to create log directory %s: %v", dir, err)
			}
		}

		Logger.SetOutput(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
		Logger.SetFormatter(&EventFormatter{SystemName: systemName})
		Logger.SetLevel(logrus.InfoLevel)
	})
}
