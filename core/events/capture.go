package events

const (
	KindCaptureStarted             Kind = "capture.started"
	KindCaptureTranscriptUpdated   Kind = "capture.transcript_updated"
	KindCaptureStopped             Kind = "capture.stopped"
	KindCaptureError               Kind = "capture.error"
	KindCaptureAvailabilityChanged Kind = "capture.availability_changed"
)

type CaptureStopReason string

const (
	CaptureStopReasonManual  CaptureStopReason = "manual"
	CaptureStopReasonCeiling CaptureStopReason = "ceiling"
	// CaptureStopReasonFailed is used when the recogniser could not be
	// started.
	CaptureStopReasonFailed CaptureStopReason = "failed"
)

type CaptureStarted struct{ Base }

func NewCaptureStarted() CaptureStarted {
	return CaptureStarted{Base: NewBase(KindCaptureStarted)}
}

type CaptureTranscriptUpdated struct {
	Base
	Transcript string
}

func NewCaptureTranscriptUpdated(transcript string) CaptureTranscriptUpdated {
	return CaptureTranscriptUpdated{Base: NewBase(KindCaptureTranscriptUpdated), Transcript: transcript}
}

type CaptureStopped struct {
	Base
	Reason     CaptureStopReason
	Transcript string
}

func NewCaptureStopped(reason CaptureStopReason, transcript string) CaptureStopped {
	return CaptureStopped{Base: NewBase(KindCaptureStopped), Reason: reason, Transcript: transcript}
}

type CaptureError struct {
	Base
	Err error
}

func NewCaptureError(err error) CaptureError {
	return CaptureError{Base: NewBase(KindCaptureError), Err: err}
}

type CaptureAvailabilityChanged struct {
	Base
	Available bool
}

func NewCaptureAvailabilityChanged(available bool) CaptureAvailabilityChanged {
	return CaptureAvailabilityChanged{Base: NewBase(KindCaptureAvailabilityChanged), Available: available}
}
