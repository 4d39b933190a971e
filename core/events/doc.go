// Package events defines the typed engine event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - user_input.*
//   - assistant_response.*
//   - assistant_playback.*
//   - turn_state.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Final: terminal immutable text/state for the current stream/turn phase.
//   - Ended: lifecycle boundary indicating capture or playback completion.
//
// user_input events
//
//   - UserCaptureStarted (user_input.capture_started): speech capture began
//     listening for an utterance.
//   - UserCaptureEnded (user_input.capture_ended): speech capture ended
//     without producing a transcript.
//   - UserTranscriptFinal (user_input.transcript_final): terminal transcript
//     for the captured utterance.
//
// assistant_response events
//
//   - AssistantResponseSegment (assistant_response.segment): streamed
//     response text segment, applied in arrival order.
//   - AssistantResponseFinal (assistant_response.final): response text stream
//     is complete.
//
// assistant_playback events
//
//   - AssistantPlaybackStarted (assistant_playback.started): spoken delivery
//     of the accumulated response started; includes the full text being
//     spoken.
//   - AssistantPlaybackEnded (assistant_playback.ended): spoken delivery
//     ended, whether normally or through a playback failure.
//
// turn_state events
//
//   - ConversationStateChanged (turn_state.state_changed): the engine moved
//     between conversation states.
//   - TurnStarted (turn_state.started): a new turn token became current.
//   - TurnCancelled (turn_state.cancelled): the current turn was invalidated
//     before completing.
package events
