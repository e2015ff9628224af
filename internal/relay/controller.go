package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"livecast-orchestrator/internal/upstream"
)

const defaultAPIBase = "https://api.agora.io"

// Canvas and transcode constants for the composited output: one full-frame
// host region and a smaller co-host band, H.264 at 6000 kbps / 30 fps with
// a 60-frame GOP, mono HE-AAC at 48 kHz / 128 kbps.
const (
	canvasWidth  = 360
	canvasHeight = 640

	audioSampleRate = 48000
	audioBitrate    = 128
	videoBitrate    = 6000
	videoFrameRate  = 30
	videoGOP        = 60

	defaultIdleTimeout = 300
)

// Config carries the RTC provider cloud credentials and channel layout.
// Built once at startup and injected.
type Config struct {
	Region         string
	AppID          string
	CustomerKey    string
	CustomerSecret string

	Channel   string
	HostUID   int
	CoHostUID int

	// BaseURL defaults to the provider API; tests point it at a local server.
	BaseURL string

	// IdleTimeout is how long (seconds) the provider keeps an idle converter
	// alive before reclaiming it.
	IdleTimeout int

	PlaceholderImageURL string

	HTTPClient *http.Client
}

// Controller starts and stops media-push converters on the RTC provider's
// cloud API. The returned converter id is the caller's sole handle for a
// later Stop; no local registry of running converters is kept.
type Controller struct {
	cfg  Config
	base string
	log  *slog.Logger
	now  func() time.Time
}

// NewController returns a Controller for the given config.
func NewController(cfg Config, log *slog.Logger) *Controller {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIBase
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	base := fmt.Sprintf("%s/%s/v1/projects/%s",
		strings.TrimRight(cfg.BaseURL, "/"), cfg.Region, cfg.AppID)
	return &Controller{cfg: cfg, base: base, log: log, now: time.Now}
}

// WithNow overrides the clock used for converter names. Tests only.
func (c *Controller) WithNow(now func() time.Time) *Controller {
	c.now = now
	return c
}

// Start creates a converter pushing the channel's composited output to
// rtmpURL/streamKey and returns its id.
func (c *Controller) Start(ctx context.Context, rtmpURL, streamKey string) (string, error) {
	destination := rtmpURL + "/" + streamKey
	c.log.Info("starting rtmp push",
		slog.String("rtmp_url", rtmpURL),
		slog.String("channel", c.cfg.Channel))

	payload := converterRequest{Converter: converter{
		Name:             fmt.Sprintf("youtube_push_%d", c.now().UnixMilli()),
		TranscodeOptions: c.transcodeOptions(),
		RTMPURL:          destination,
		IdleTimeout:      c.cfg.IdleTimeout,
	}}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal converter request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/rtmp-converters", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.CustomerKey, c.cfg.CustomerSecret)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", &upstream.Error{Kind: upstream.KindConverter, Op: "start converter", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return "", &upstream.Error{Kind: upstream.KindConverter, Op: "start converter", Status: resp.StatusCode, Payload: data}
	}

	var created converterResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", &upstream.Error{Kind: upstream.KindConverter, Op: "start converter", Err: fmt.Errorf("decode response: %w", err)}
	}
	c.log.Info("converter started", slog.String("converter_id", created.Converter.ID))
	return created.Converter.ID, nil
}

// Stop deletes the converter by id. Stopping an unknown or already-stopped
// id surfaces the provider's error; callers decide whether to care.
func (c *Controller) Stop(ctx context.Context, converterID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/rtmp-converters/"+converterID, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.CustomerKey, c.cfg.CustomerSecret)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &upstream.Error{Kind: upstream.KindConverter, Op: "stop converter", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return &upstream.Error{Kind: upstream.KindConverter, Op: "stop converter", Status: resp.StatusCode, Payload: data}
	}
	io.Copy(io.Discard, resp.Body)
	c.log.Info("converter stopped", slog.String("converter_id", converterID))
	return nil
}

func (c *Controller) httpClient() *http.Client {
	if c.cfg.HTTPClient != nil {
		return c.cfg.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Controller) transcodeOptions() transcodeOptions {
	return transcodeOptions{
		RTCChannel: c.cfg.Channel,
		AudioOptions: audioOptions{
			CodecProfile:  "HE-AAC",
			SampleRate:    audioSampleRate,
			Bitrate:       audioBitrate,
			AudioChannels: 1,
			RTCStreamUIDs: []int{c.cfg.HostUID, c.cfg.CoHostUID},
		},
		VideoOptions: videoOptions{
			Canvas: canvas{Width: canvasWidth, Height: canvasHeight, Color: 0},
			Layout: []layoutRegion{
				{
					RTCStreamUID:        c.cfg.HostUID,
					Region:              region{XPos: 0, YPos: 0, ZIndex: 1, Width: canvasWidth, Height: canvasHeight},
					FillMode:            "fill",
					PlaceholderImageURL: c.cfg.PlaceholderImageURL,
				},
				{
					RTCStreamUID: c.cfg.CoHostUID,
					Region:       region{XPos: 0, YPos: canvasHeight / 2, ZIndex: 1, Width: canvasWidth, Height: canvasHeight / 2},
				},
			},
			Codec:        "H.264",
			CodecProfile: "high",
			FrameRate:    videoFrameRate,
			GOP:          videoGOP,
			Bitrate:      videoBitrate,
			LayoutType:   1,
			Vertical: verticalLayout{
				MaxResolutionUID:   c.cfg.HostUID,
				FillMode:           "fill",
				RefreshIntervalSec: 4,
			},
			DefaultPlaceholderImageURL: c.cfg.PlaceholderImageURL,
			SEIOptions: &seiOptions{
				Source: seiSource{
					Metadata:   true,
					Datastream: true,
					Customized: seiCustomized{Payload: "livecast"},
				},
				Sink: seiSink{Type: 100},
			},
		},
	}
}
