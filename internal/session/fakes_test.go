package session

import (
	"context"
	"log/slog"
	"os"
)

type fakeTrack struct {
	plays  []string
	closes int
}

func (t *fakeTrack) Play(viewID string) { t.plays = append(t.plays, viewID) }
func (t *fakeTrack) Close()             { t.closes++ }

type fakeDevices struct {
	mic, cam           *fakeTrack
	micErr, camErr     error
	micCalls, camCalls int
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{mic: &fakeTrack{}, cam: &fakeTrack{}}
}

func (d *fakeDevices) CreateMicrophoneTrack(ctx context.Context) (LocalTrack, error) {
	d.micCalls++
	if d.micErr != nil {
		return nil, d.micErr
	}
	return d.mic, nil
}

func (d *fakeDevices) CreateCameraTrack(ctx context.Context) (LocalTrack, error) {
	d.camCalls++
	if d.camErr != nil {
		return nil, d.camErr
	}
	return d.cam, nil
}

type subscription struct {
	uid  int
	kind MediaKind
}

type fakeClient struct {
	joinedUIDs []int
	role       Role
	published  [][]LocalTrack
	subs       []subscription
	leaves     int
	remotes    []RemoteParticipant

	joinErr      error
	setRoleErr   error
	publishErr   error
	subscribeErr error
	leaveErr     error
}

func (c *fakeClient) Join(ctx context.Context, uid int) error {
	if c.joinErr != nil {
		return c.joinErr
	}
	c.joinedUIDs = append(c.joinedUIDs, uid)
	return nil
}

func (c *fakeClient) SetRole(role Role) error {
	if c.setRoleErr != nil {
		return c.setRoleErr
	}
	c.role = role
	return nil
}

func (c *fakeClient) Publish(ctx context.Context, tracks ...LocalTrack) error {
	if c.publishErr != nil {
		return c.publishErr
	}
	c.published = append(c.published, tracks)
	return nil
}

func (c *fakeClient) Subscribe(ctx context.Context, p RemoteParticipant, kind MediaKind) error {
	if c.subscribeErr != nil {
		return c.subscribeErr
	}
	c.subs = append(c.subs, subscription{uid: p.UID(), kind: kind})
	return nil
}

func (c *fakeClient) RemoteParticipants() []RemoteParticipant {
	return c.remotes
}

func (c *fakeClient) Leave(ctx context.Context) error {
	c.leaves++
	return c.leaveErr
}

type fakeRemote struct {
	uid        int
	audioPlays int
	videoPlays []string
}

func (r *fakeRemote) UID() int                { return r.uid }
func (r *fakeRemote) PlayAudio()              { r.audioPlays++ }
func (r *fakeRemote) PlayVideo(viewID string) { r.videoPlays = append(r.videoPlays, viewID) }

// fakeViews tracks view presence; Remove of an absent id is a counted no-op.
type fakeViews struct {
	present        map[string]string
	createdOrder   []string
	removed        []string
	removedMissing int
}

func newFakeViews() *fakeViews {
	return &fakeViews{present: make(map[string]string)}
}

func (v *fakeViews) Create(viewID, label string) {
	v.present[viewID] = label
	v.createdOrder = append(v.createdOrder, viewID)
}

func (v *fakeViews) Remove(viewID string) {
	if _, ok := v.present[viewID]; !ok {
		v.removedMissing++
		return
	}
	delete(v.present, viewID)
	v.removed = append(v.removed, viewID)
}

func (v *fakeViews) has(viewID string) bool {
	_, ok := v.present[viewID]
	return ok
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// seqUID returns a deterministic generator: first, first+1, ...
func seqUID(first int) func() int {
	next := first
	return func() int {
		n := next
		next++
		return n
	}
}
