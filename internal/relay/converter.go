package relay

// Wire types for the RTC provider's media-push converter API. Field names
// and values follow the provider's schema; the layout template composites
// up to two participant streams into one output frame.

type converterRequest struct {
	Converter converter `json:"converter"`
}

type converter struct {
	Name             string           `json:"name"`
	TranscodeOptions transcodeOptions `json:"transcodeOptions"`
	RTMPURL          string           `json:"rtmpUrl"`
	IdleTimeout      int              `json:"idleTimeout"`
}

type transcodeOptions struct {
	RTCChannel   string       `json:"rtcChannel"`
	AudioOptions audioOptions `json:"audioOptions"`
	VideoOptions videoOptions `json:"videoOptions"`
}

type audioOptions struct {
	CodecProfile  string `json:"codecProfile"`
	SampleRate    int    `json:"sampleRate"`
	Bitrate       int    `json:"bitrate"`
	AudioChannels int    `json:"audioChannels"`
	RTCStreamUIDs []int  `json:"rtcStreamUids"`
}

type videoOptions struct {
	Canvas                     canvas         `json:"canvas"`
	Layout                     []layoutRegion `json:"layout"`
	Codec                      string         `json:"codec"`
	CodecProfile               string         `json:"codecProfile"`
	FrameRate                  int            `json:"frameRate"`
	GOP                        int            `json:"gop"`
	Bitrate                    int            `json:"bitrate"`
	LayoutType                 int            `json:"layoutType"`
	Vertical                   verticalLayout `json:"vertical"`
	DefaultPlaceholderImageURL string         `json:"defaultPlaceholderImageUrl,omitempty"`
	SEIOptions                 *seiOptions    `json:"seiOptions,omitempty"`
}

type canvas struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	Color  int `json:"color"`
}

type layoutRegion struct {
	RTCStreamUID        int    `json:"rtcStreamUid"`
	Region              region `json:"region"`
	FillMode            string `json:"fillMode,omitempty"`
	PlaceholderImageURL string `json:"placeholderImageUrl,omitempty"`
}

type region struct {
	XPos   int `json:"xPos"`
	YPos   int `json:"yPos"`
	ZIndex int `json:"zIndex"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type verticalLayout struct {
	MaxResolutionUID   int    `json:"maxResolutionUid"`
	FillMode           string `json:"fillMode"`
	RefreshIntervalSec int    `json:"refreshIntervalSec"`
}

type seiOptions struct {
	Source seiSource `json:"source"`
	Sink   seiSink   `json:"sink"`
}

type seiSource struct {
	Metadata   bool          `json:"metadata"`
	Datastream bool          `json:"datastream"`
	Customized seiCustomized `json:"customized"`
}

type seiCustomized struct {
	Payload string `json:"payload"`
}

type seiSink struct {
	Type int `json:"type"`
}

type converterResponse struct {
	Converter struct {
		ID string `json:"id"`
	} `json:"converter"`
}
