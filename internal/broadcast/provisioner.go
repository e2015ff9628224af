package broadcast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"livecast-orchestrator/internal/upstream"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/youtube/v3"
	defaultTokenURL = "https://oauth2.googleapis.com/token"

	// DefaultLeadTime is how far in the future the broadcast is scheduled.
	// The platform will not accept ingest meaningfully before it elapses,
	// so the same value is reported back as Ingest.StartDelay.
	DefaultLeadTime = time.Minute
)

// Config carries the video platform credentials and broadcast parameters.
// It is built once at startup and injected; the provisioner never reads
// ambient state.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string

	// TokenURL and BaseURL default to the platform endpoints; tests point
	// them at a local server.
	TokenURL string
	BaseURL  string

	Title       string
	Description string
	Privacy     string
	LeadTime    time.Duration

	HTTPClient *http.Client
}

// Provisioner creates a stream resource and a scheduled broadcast on the
// video platform, binds them, and extracts the ingest endpoint. All three
// mutations are remote; a failure at any step aborts the whole call with
// the upstream error, no retries.
type Provisioner struct {
	cfg Config
	log *slog.Logger
	now func() time.Time
}

// NewProvisioner returns a Provisioner for the given config.
// Zero-value config fields fall back to platform defaults.
func NewProvisioner(cfg Config, log *slog.Logger) *Provisioner {
	if cfg.TokenURL == "" {
		cfg.TokenURL = defaultTokenURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Title == "" {
		cfg.Title = "Live Stream via API"
	}
	if cfg.Privacy == "" {
		cfg.Privacy = "public"
	}
	if cfg.LeadTime <= 0 {
		cfg.LeadTime = DefaultLeadTime
	}
	return &Provisioner{cfg: cfg, log: log, now: time.Now}
}

// WithNow overrides the clock used for scheduled start times. Tests only.
func (p *Provisioner) WithNow(now func() time.Time) *Provisioner {
	p.now = now
	return p
}

// Provision obtains an authenticated session, creates the stream and the
// scheduled broadcast, binds them, and returns the ingest endpoint plus the
// scheduled-start lead time.
func (p *Provisioner) Provision(ctx context.Context) (Ingest, error) {
	client, err := p.authClient(ctx)
	if err != nil {
		return Ingest{}, err
	}
	p.log.Info("authenticated with video platform")

	stream, err := p.createLiveStream(ctx, client)
	if err != nil {
		return Ingest{}, err
	}
	p.log.Info("created live stream", slog.String("stream_id", stream.ID))

	bcast, err := p.createBroadcast(ctx, client)
	if err != nil {
		return Ingest{}, err
	}
	p.log.Info("created broadcast",
		slog.String("broadcast_id", bcast.ID),
		slog.String("scheduled_start", bcast.Snippet.ScheduledStartTime))

	if err := p.bind(ctx, client, bcast.ID, stream.ID); err != nil {
		return Ingest{}, err
	}
	p.log.Info("bound broadcast to stream",
		slog.String("broadcast_id", bcast.ID),
		slog.String("stream_id", stream.ID))

	info := stream.CDN.IngestionInfo
	if info == nil || info.IngestionAddress == "" || info.StreamName == "" {
		return Ingest{}, &upstream.Error{
			Kind: upstream.KindIngestMissing,
			Op:   "extract ingestion info",
			Err:  errors.New("stream resource has no ingestion info"),
		}
	}

	return Ingest{
		StreamKey:  info.StreamName,
		RTMPURL:    info.IngestionAddress,
		StartDelay: p.cfg.LeadTime,
	}, nil
}

// authClient exchanges the long-lived refresh credential for an access
// token and returns an HTTP client that carries it.
func (p *Provisioner) authClient(ctx context.Context) (*http.Client, error) {
	if p.cfg.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.cfg.HTTPClient)
	}
	conf := &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: p.cfg.TokenURL},
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: p.cfg.RefreshToken})
	if _, err := source.Token(); err != nil {
		var retrieve *oauth2.RetrieveError
		if errors.As(err, &retrieve) {
			status := 0
			if retrieve.Response != nil {
				status = retrieve.Response.StatusCode
			}
			return nil, &upstream.Error{
				Kind:    upstream.KindAuth,
				Op:      "refresh platform token",
				Status:  status,
				Payload: retrieve.Body,
				Err:     err,
			}
		}
		return nil, &upstream.Error{Kind: upstream.KindAuth, Op: "refresh platform token", Err: err}
	}
	return oauth2.NewClient(ctx, source), nil
}

func (p *Provisioner) createLiveStream(ctx context.Context, client *http.Client) (liveStream, error) {
	payload := liveStream{
		Snippet: streamSnippet{
			Title:       p.cfg.Title,
			Description: p.cfg.Description,
		},
		CDN: cdnSettings{
			Format:        "1080p",
			IngestionType: "rtmp",
			Resolution:    "1080p",
			FrameRate:     "60fps",
		},
		ContentDetails: &streamContentDetails{IsReusable: true},
	}
	var created liveStream
	endpoint := fmt.Sprintf("%s/liveStreams?part=%s",
		strings.TrimRight(p.cfg.BaseURL, "/"), url.QueryEscape("snippet,cdn,contentDetails"))
	if err := p.post(ctx, client, "create live stream", endpoint, payload, &created); err != nil {
		return liveStream{}, err
	}
	return created, nil
}

func (p *Provisioner) createBroadcast(ctx context.Context, client *http.Client) (liveBroadcast, error) {
	scheduledStart := p.now().Add(p.cfg.LeadTime).UTC().Format(time.RFC3339)
	payload := liveBroadcast{
		Snippet: broadcastSnippet{
			Title:              p.cfg.Title,
			Description:        p.cfg.Description,
			ScheduledStartTime: scheduledStart,
		},
		Status: &broadcastStatus{
			PrivacyStatus:           p.cfg.Privacy,
			SelfDeclaredMadeForKids: false,
		},
		ContentDetails: &broadcastContentDetails{
			MonitorStream:   monitorStream{EnableMonitorStream: true},
			EnableAutoStart: true,
			EnableAutoStop:  true,
		},
	}
	var created liveBroadcast
	endpoint := fmt.Sprintf("%s/liveBroadcasts?part=%s",
		strings.TrimRight(p.cfg.BaseURL, "/"), url.QueryEscape("snippet,status,contentDetails"))
	if err := p.post(ctx, client, "create broadcast", endpoint, payload, &created); err != nil {
		return liveBroadcast{}, err
	}
	if created.Snippet.ScheduledStartTime == "" {
		created.Snippet.ScheduledStartTime = scheduledStart
	}
	return created, nil
}

func (p *Provisioner) bind(ctx context.Context, client *http.Client, broadcastID, streamID string) error {
	endpoint := fmt.Sprintf("%s/liveBroadcasts/bind?id=%s&streamId=%s&part=%s",
		strings.TrimRight(p.cfg.BaseURL, "/"),
		url.QueryEscape(broadcastID), url.QueryEscape(streamID), url.QueryEscape("id,snippet"))
	return p.post(ctx, client, "bind broadcast", endpoint, nil, nil)
}

func (p *Provisioner) post(ctx context.Context, client *http.Client, op, endpoint string, payload, dest any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return &upstream.Error{Kind: upstream.KindResource, Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		kind := upstream.KindResource
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = upstream.KindAuth
		}
		return &upstream.Error{Kind: kind, Op: op, Status: resp.StatusCode, Payload: data}
	}
	if dest == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &upstream.Error{Kind: upstream.KindResource, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
