// Package events defines the typed events the orchestrator delivers to its
// subscribers.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - connection.*
//   - capture.*
//   - turn.*
//   - log.*
//
// Semantics used across the package:
//
//   - Changed: a new value of a single-valued state (status, availability,
//     controls). Receivers should replace, never accumulate.
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Started/Stopped/Ended: lifecycle boundaries.
//
// connection events
//
//   - StatusChanged (connection.status_changed): connecting, ready or degraded.
//   - SessionEstablished (connection.session_established): the avatar session
//     id is known; speak is callable from now on.
//   - StreamReady (connection.stream_ready): carries the live media handle. This
//     is the only event that carries media.
//   - AvatarStartTalking (connection.avatar_start_talking)
//   - AvatarStopTalking (connection.avatar_stop_talking)
//
// capture events
//
//   - CaptureStarted (capture.started): recording began, buffer was cleared.
//   - CaptureTranscriptUpdated (capture.transcript_updated): full replacement of
//     the transcript so far.
//   - CaptureStopped (capture.stopped): recording ended, carries the final
//     transcript (may be empty) and the stop reason.
//   - CaptureError (capture.error): non-fatal recognition engine error.
//   - CaptureAvailabilityChanged (capture.availability_changed): whether the
//     capture toggle may be used.
//
// turn events
//
//   - TurnStarted (turn.started)
//   - TurnReplied (turn.replied): completion produced a reply.
//   - TurnFailed (turn.failed): completion or speak failed; the turn is over.
//   - TurnEnded (turn.ended): emitted on every exit path after controls are
//     re-enabled.
//   - ControlsChanged (turn.controls_changed)
//
// log events
//
//   - LogAppended (log.appended): a new entry of the user-visible log.
package events
