package orchestrate

import (
	"context"
	"log/slog"

	"livecast-orchestrator/internal/broadcast"
)

// Provisioner creates a bound broadcast on the video platform and returns
// its ingest endpoint plus the scheduled-start lead time.
type Provisioner interface {
	Provision(ctx context.Context) (broadcast.Ingest, error)
}

// Relay starts the cloud-side media push into an RTMP destination.
type Relay interface {
	Start(ctx context.Context, rtmpURL, streamKey string) (string, error)
}

// Result correlates one full orchestration run: the relay converter id and
// the ingest endpoint it pushes into.
type Result struct {
	ConverterID string `json:"converterId"`
	StreamKey   string `json:"streamKey"`
	RTMPURL     string `json:"rtmpUrl"`
}

// Orchestrator sequences provision → scheduled-start wait → relay start.
// The broadcast must be fully bound before the relay pushes into its
// ingest endpoint; the ordering here is what guarantees that.
type Orchestrator struct {
	provisioner Provisioner
	relay       Relay
	clock       Clock
	log         *slog.Logger
}

// New returns an Orchestrator. A nil clock falls back to the wall clock.
func New(provisioner Provisioner, relay Relay, clock Clock, log *slog.Logger) *Orchestrator {
	if clock == nil {
		clock = NewRealClock()
	}
	return &Orchestrator{provisioner: provisioner, relay: relay, clock: clock, log: log}
}

// Run performs one orchestration. The wait between the two remote calls is
// the platform's own scheduled-start lead time: pushing earlier would relay
// into a destination that is not yet live. The wait is unconditional; once
// Run starts it reaches the relay step unless a remote call fails. A
// failure at either step aborts the run with the originating error and no
// partial result.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	ingest, err := o.provisioner.Provision(ctx)
	if err != nil {
		return Result{}, err
	}
	o.log.Info("broadcast provisioned, waiting for scheduled start",
		slog.String("rtmp_url", ingest.RTMPURL),
		slog.Duration("start_delay", ingest.StartDelay))

	<-o.clock.After(ingest.StartDelay)

	converterID, err := o.relay.Start(ctx, ingest.RTMPURL, ingest.StreamKey)
	if err != nil {
		return Result{}, err
	}
	o.log.Info("orchestration complete",
		slog.String("converter_id", converterID),
		slog.String("rtmp_url", ingest.RTMPURL))

	return Result{
		ConverterID: converterID,
		StreamKey:   ingest.StreamKey,
		RTMPURL:     ingest.RTMPURL,
	}, nil
}
