package events

// Event type constants for kelindar/event.
const (
	TypeWorkerStateChanged uint32 = iota + 1
	TypeFileDownloaded
	TypeFileUploaded
	TypeUploadFailed
	TypePartRecovered
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// WorkerStateChangedEvent is published by the supervisor when a managed
// worker transitions between states.
type WorkerStateChangedEvent struct {
	Worker    string `json:"worker" example:"uploader" doc:"Worker name"`
	OldState  string `json:"old_state" example:"running" doc:"Previous state"`
	NewState  string `json:"new_state" example:"error" doc:"New state"`
	Error     string `json:"error,omitempty" doc:"Error message when the transition was caused by a failure"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for WorkerStateChangedEvent.
func (e WorkerStateChangedEvent) Type() uint32 { return TypeWorkerStateChanged }

// FileDownloadedEvent is published by the collector when a room download
// produces a finished file.
type FileDownloadedEvent struct {
	Path      string `json:"path" doc:"Absolute path of the downloaded file"`
	Room      string `json:"room" doc:"Room username the file was recorded from"`
	Bytes     int64  `json:"bytes" doc:"File size in bytes"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for FileDownloadedEvent.
func (e FileDownloadedEvent) Type() uint32 { return TypeFileDownloaded }

// FileUploadedEvent is published by the uploader after a successful send.
type FileUploadedEvent struct {
	Path      string `json:"path" doc:"Absolute path of the uploaded file"`
	Bytes     int64  `json:"bytes" doc:"File size in bytes"`
	Engine    string `json:"engine" example:"botapi" doc:"Transport used: botapi or mtproto"`
	Deleted   bool   `json:"deleted" doc:"Whether the file was removed after sending"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for FileUploadedEvent.
func (e FileUploadedEvent) Type() uint32 { return TypeFileUploaded }

// UploadFailedEvent is published by the uploader when a send attempt fails.
type UploadFailedEvent struct {
	Path      string `json:"path" doc:"Absolute path of the file"`
	Engine    string `json:"engine" example:"mtproto" doc:"Transport used: botapi or mtproto"`
	Error     string `json:"error" doc:"Failure description"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for UploadFailedEvent.
func (e UploadFailedEvent) Type() uint32 { return TypeUploadFailed }

// PartRecoveredEvent is published when a stable .part file is finalized
// into a playable video.
type PartRecoveredEvent struct {
	Source    string `json:"source" doc:"Path of the partial file"`
	Result    string `json:"result" doc:"Path of the finalized video"`
	Timestamp string `json:"timestamp" doc:"Event timestamp"`
}

// Type returns the event type identifier for PartRecoveredEvent.
func (e PartRecoveredEvent) Type() uint32 { return TypePartRecovered }
