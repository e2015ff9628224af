package session

import "context"

// Role is a participant's capability within a room.
type Role string

const (
	// RoleHost publishes local audio/video into the room.
	RoleHost Role = "host"
	// RoleAudience receives only; it never acquires local capture.
	RoleAudience Role = "audience"
)

// MediaKind identifies a published track's media type.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// LocalTrack is a capture device track (microphone or camera) owned by the
// local participant. Close releases the underlying device and must be
// called before the next acquisition on the same session.
type LocalTrack interface {
	Play(viewID string)
	Close()
}

// RemoteParticipant is another room member as seen through the provider.
type RemoteParticipant interface {
	UID() int
	PlayAudio()
	PlayVideo(viewID string)
}

// RoomClient is the capability surface of the RTC provider SDK. An adapter
// around the vendor library implements it; fakes implement it in tests.
type RoomClient interface {
	Join(ctx context.Context, uid int) error
	SetRole(role Role) error
	Publish(ctx context.Context, tracks ...LocalTrack) error
	Subscribe(ctx context.Context, p RemoteParticipant, kind MediaKind) error
	RemoteParticipants() []RemoteParticipant
	Leave(ctx context.Context) error
}

// MediaDevices acquires local capture tracks.
type MediaDevices interface {
	CreateMicrophoneTrack(ctx context.Context) (LocalTrack, error)
	CreateCameraTrack(ctx context.Context) (LocalTrack, error)
}

// ViewRegistry is the rendering surface for participant video views.
// Remove must tolerate ids that were never created or are already gone.
type ViewRegistry interface {
	Create(viewID, label string)
	Remove(viewID string)
}
