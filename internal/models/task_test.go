package models

import "testing"

func TestParseStatus(t *testing.T) {
	tc := []struct {
		name string
		wire string
		want Status
	}{
		{name: "queued", wire: "queued", want: StatusQueued},
		{name: "downloading", wire: "downloading", want: StatusDownloading},
		{name: "transcribing", wire: "transcribing", want: StatusTranscribing},
		{name: "done", wire: "done", want: StatusDone},
		{name: "failed", wire: "failed", want: StatusFailed},
		{name: "unrecognized downgrades", wire: "exploding", want: StatusUnknown},
		{name: "empty downgrades", wire: "", want: StatusUnknown},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseStatus(tt.wire); got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.wire, got, tt.want)
			}
		})
	}
}

func TestParseFormatting(t *testing.T) {
	tc := []struct {
		name string
		wire string
		want FormattingStatus
	}{
		{name: "absent", wire: "", want: FormattingNone},
		{name: "pending", wire: "pending", want: FormattingPending},
		{name: "in progress", wire: "in_progress", want: FormattingInProgress},
		{name: "done", wire: "done", want: FormattingDone},
		{name: "failed", wire: "failed", want: FormattingFailed},
		{name: "unrecognized downgrades", wire: "meditating", want: FormattingUnknown},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFormatting(tt.wire); got != tt.want {
				t.Errorf("ParseFormatting(%q) = %v, want %v", tt.wire, got, tt.want)
			}
		})
	}
}

func TestSnapshotTerminal(t *testing.T) {
	tc := []struct {
		name string
		snap JobSnapshot
		want bool
	}{
		{name: "queued is active", snap: JobSnapshot{Status: StatusQueued}, want: false},
		{name: "transcribing is active", snap: JobSnapshot{Status: StatusTranscribing}, want: false},
		{name: "failed is terminal", snap: JobSnapshot{Status: StatusFailed}, want: true},
		{name: "failed ignores formatting", snap: JobSnapshot{Status: StatusFailed, Formatting: FormattingInProgress}, want: true},
		{name: "done without formatting", snap: JobSnapshot{Status: StatusDone}, want: true},
		{name: "done with settled formatting", snap: JobSnapshot{Status: StatusDone, Formatting: FormattingDone}, want: true},
		{name: "done with failed formatting", snap: JobSnapshot{Status: StatusDone, Formatting: FormattingFailed}, want: true},
		{name: "done with pending formatting stays active", snap: JobSnapshot{Status: StatusDone, Formatting: FormattingPending}, want: false},
		{name: "done with running formatting stays active", snap: JobSnapshot{Status: StatusDone, Formatting: FormattingInProgress}, want: false},
		{name: "done with unknown formatting stays active", snap: JobSnapshot{Status: StatusDone, Formatting: FormattingUnknown}, want: false},
		{name: "unknown status stays active", snap: JobSnapshot{Status: StatusUnknown}, want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Terminal(); got != tt.want {
				t.Errorf("Terminal() = %v, want %v", got, tt.want)
			}
		})
	}
}
