package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

// State is the manager's position in the join/leave lifecycle.
type State int

const (
	StateIdle State = iota
	StateJoining
	StateJoined
	StateLeaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateJoining:
		return "joining"
	case StateJoined:
		return "joined"
	case StateLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}

// Manager owns the local participant's room lifecycle: join under a role,
// track publication for hosts, remote-participant views, and teardown.
// One Manager drives one session at a time; it is not safe for concurrent
// use from multiple goroutines.
type Manager struct {
	client  RoomClient
	devices MediaDevices
	views   ViewRegistry
	log     *slog.Logger
	newUID  func() int

	uid   int
	state State
	role  Role

	localAudio LocalTrack
	localVideo LocalTrack

	// remoteViews are the display ids created for remote video tracks,
	// cleared on Leave.
	remoteViews []string
}

// New returns a Manager for the given room client, capture devices, and
// view registry. The session uid is generated up front and reused for
// every host join on this manager.
func New(client RoomClient, devices MediaDevices, views ViewRegistry, log *slog.Logger) *Manager {
	m := &Manager{
		client:  client,
		devices: devices,
		views:   views,
		log:     log,
		newUID:  RandomUID,
	}
	m.uid = m.newUID()
	return m
}

// WithUIDGenerator swaps the uid generator. The session uid is regenerated
// with it.
func (m *Manager) WithUIDGenerator(gen func() int) *Manager {
	m.newUID = gen
	m.uid = gen()
	return m
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// UID is the local participant's session uid.
func (m *Manager) UID() int {
	return m.uid
}

// Join enters the room under the given role. Hosts additionally acquire
// microphone and camera capture, publish both, and render a local preview
// keyed by the session uid. Audience joins never touch local media. A nil
// room client makes Join a logged no-op. Errors leave the manager idle
// with any acquired devices released.
func (m *Manager) Join(ctx context.Context, role Role) error {
	if m.client == nil {
		m.log.Warn("join skipped, no room client")
		return nil
	}
	if m.state != StateIdle {
		m.log.Warn("join skipped", slog.String("state", m.state.String()))
		return nil
	}
	m.state = StateJoining

	uid := m.uid
	if role == RoleAudience {
		uid = m.newUID()
	}

	if err := m.client.Join(ctx, uid); err != nil {
		m.state = StateIdle
		m.log.Error("failed to join room", slog.String("role", string(role)), slog.String("error", err.Error()))
		return err
	}
	if err := m.client.SetRole(role); err != nil {
		return m.abortJoin(ctx, role, err)
	}

	if role == RoleHost {
		audio, err := m.devices.CreateMicrophoneTrack(ctx)
		if err != nil {
			return m.abortJoin(ctx, role, err)
		}
		m.localAudio = audio

		video, err := m.devices.CreateCameraTrack(ctx)
		if err != nil {
			return m.abortJoin(ctx, role, err)
		}
		m.localVideo = video

		if err := m.client.Publish(ctx, audio, video); err != nil {
			return m.abortJoin(ctx, role, err)
		}

		viewID := strconv.Itoa(m.uid)
		m.views.Create(viewID, fmt.Sprintf("You (Host) UID: %d", m.uid))
		video.Play(viewID)
	}

	m.state = StateJoined
	m.role = role
	m.log.Info("joined room", slog.String("role", string(role)), slog.Int("uid", uid))
	return nil
}

// abortJoin releases whatever the partial join acquired and leaves the
// manager idle, so a failed join never strands device handles.
func (m *Manager) abortJoin(ctx context.Context, role Role, err error) error {
	m.releaseLocalTracks()
	_ = m.client.Leave(ctx)
	m.state = StateIdle
	m.log.Error("failed to join room", slog.String("role", string(role)), slog.String("error", err.Error()))
	return err
}

// HandleParticipantPublished reacts to a provider "participant published"
// notification: subscribe, then render video into a freshly created view
// or play audio with no visual element.
func (m *Manager) HandleParticipantPublished(ctx context.Context, p RemoteParticipant, kind MediaKind) error {
	if m.client == nil {
		return nil
	}
	if err := m.client.Subscribe(ctx, p, kind); err != nil {
		m.log.Error("subscribe failed",
			slog.Int("uid", p.UID()),
			slog.String("media", string(kind)),
			slog.String("error", err.Error()))
		return err
	}

	switch kind {
	case MediaVideo:
		viewID := strconv.Itoa(m.newUID())
		m.views.Create(viewID, "Audience UID: "+viewID)
		m.remoteViews = append(m.remoteViews, viewID)
		p.PlayVideo(viewID)
	case MediaAudio:
		p.PlayAudio()
	}

	m.log.Debug("subscribed to participant",
		slog.Int("uid", p.UID()),
		slog.String("media", string(kind)))
	return nil
}

// HandleParticipantUnpublished removes the view keyed by the publisher's
// uid. The view was created under a freshly generated display id, so this
// lookup never matches it and the view survives until Leave sweeps the
// tracked list; the removal key is kept as-is to match the deployed
// client behavior.
func (m *Manager) HandleParticipantUnpublished(p RemoteParticipant) {
	m.views.Remove(strconv.Itoa(p.UID()))
}

// Leave tears the session down best-effort: release capture devices,
// remove the local preview and all tracked remote views, then leave the
// room. The manager always ends idle; calling Leave with no active
// session is a no-op that releases nothing twice.
func (m *Manager) Leave(ctx context.Context) error {
	if m.client == nil {
		m.log.Warn("leave skipped, no room client")
		return nil
	}
	m.state = StateLeaving

	m.releaseLocalTracks()
	m.views.Remove(strconv.Itoa(m.uid))

	for _, viewID := range m.remoteViews {
		m.views.Remove(viewID)
	}
	m.remoteViews = nil

	for _, p := range m.client.RemoteParticipants() {
		m.views.Remove(strconv.Itoa(p.UID()))
	}

	err := m.client.Leave(ctx)
	m.state = StateIdle
	if err != nil {
		m.log.Error("leave failed", slog.String("error", err.Error()))
		return err
	}
	m.log.Info("left room")
	return nil
}

func (m *Manager) releaseLocalTracks() {
	if m.localAudio != nil {
		m.localAudio.Close()
		m.localAudio = nil
	}
	if m.localVideo != nil {
		m.localVideo.Close()
		m.localVideo = nil
	}
}
