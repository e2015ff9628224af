package broadcast

import "time"

// Ingest is the provisioning result handed to the orchestrator: the ingest
// endpoint of the freshly bound broadcast plus the platform's own
// scheduled-start lead time. Immutable once returned.
type Ingest struct {
	StreamKey  string
	RTMPURL    string
	StartDelay time.Duration
}

type liveStream struct {
	ID             string                `json:"id,omitempty"`
	Snippet        streamSnippet         `json:"snippet"`
	CDN            cdnSettings           `json:"cdn"`
	ContentDetails *streamContentDetails `json:"contentDetails,omitempty"`
}

type streamSnippet struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type cdnSettings struct {
	Format        string         `json:"format,omitempty"`
	IngestionType string         `json:"ingestionType,omitempty"`
	Resolution    string         `json:"resolution,omitempty"`
	FrameRate     string         `json:"frameRate,omitempty"`
	IngestionInfo *ingestionInfo `json:"ingestionInfo,omitempty"`
}

type ingestionInfo struct {
	StreamName       string `json:"streamName"`
	IngestionAddress string `json:"ingestionAddress"`
}

type streamContentDetails struct {
	IsReusable bool `json:"isReusable"`
}

type liveBroadcast struct {
	ID             string                   `json:"id,omitempty"`
	Snippet        broadcastSnippet         `json:"snippet"`
	Status         *broadcastStatus         `json:"status,omitempty"`
	ContentDetails *broadcastContentDetails `json:"contentDetails,omitempty"`
}

type broadcastSnippet struct {
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	ScheduledStartTime string `json:"scheduledStartTime,omitempty"`
}

type broadcastStatus struct {
	PrivacyStatus           string `json:"privacyStatus"`
	SelfDeclaredMadeForKids bool   `json:"selfDeclaredMadeForKids"`
}

type broadcastContentDetails struct {
	MonitorStream   monitorStream `json:"monitorStream"`
	EnableAutoStart bool          `json:"enableAutoStart"`
	EnableAutoStop  bool          `json:"enableAutoStop"`
}

type monitorStream struct {
	EnableMonitorStream bool `json:"enableMonitorStream"`
}
