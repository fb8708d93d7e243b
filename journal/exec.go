package journal

import (
	"os"
	"strings"
	"time"
)

const timeFormat = "2006-01-02 15:04:05.000000000"

// ExecRecorder records when and how the program was run.
type ExecRecorder struct {
	recorder *Recorder
	entries  []ExecInfo
}

// NewExecRecorder creates an ExecRecorder that writes into r.
func NewExecRecorder(r *Recorder) *ExecRecorder {
	return &ExecRecorder{recorder: r}
}

// Start notes the start time, the command line and the working directory.
func (e *ExecRecorder) Start() {
	e.entries = append(e.entries,
		ExecInfo{"Start Time", time.Now().Format(timeFormat)},
		ExecInfo{"Command", strings.Join(os.Args, " ")},
	)

	if cwd, err := os.Getwd(); err == nil {
		e.entries = append(e.entries, ExecInfo{"Working Directory", cwd})
	}
}

// Note adds a property of the run.
func (e *ExecRecorder) Note(property, value string) {
	e.entries = append(e.entries, ExecInfo{property, value})
}

// End writes the properties along with the end time and flushes the journal.
func (e *ExecRecorder) End() error {
	e.entries = append(e.entries,
		ExecInfo{"End Time", time.Now().Format(timeFormat)})

	for _, entry := range e.entries {
		if err := e.recorder.InsertData(TableExecInfo, entry); err != nil {
			return err
		}
	}

	e.entries = nil

	return e.recorder.Flush()
}
