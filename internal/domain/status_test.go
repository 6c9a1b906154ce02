package domain

import (
	"errors"
	"testing"
)

func legalEdge(from, to Status) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

func TestAttemptTransitionForwardFlow(t *testing.T) {
	flow := []Status{
		StatusDraft, StatusSubmitted, StatusScoping, StatusQuoteSent,
		StatusInProgress, StatusReview, StatusCompleted, StatusArchived,
	}
	for i := 0; i < len(flow)-1; i++ {
		got, err := AttemptTransition(flow[i], flow[i+1])
		if err != nil {
			t.Fatalf("%s -> %s: unexpected error %v", flow[i], flow[i+1], err)
		}
		if got != flow[i+1] {
			t.Fatalf("%s -> %s: got %s", flow[i], flow[i+1], got)
		}
	}
}

func TestAttemptTransitionRejectsAllIllegalPairs(t *testing.T) {
	for _, from := range AllStatuses {
		for _, to := range AllStatuses {
			if legalEdge(from, to) && from != to {
				continue
			}
			_, err := AttemptTransition(from, to)
			if err == nil {
				t.Fatalf("%s -> %s: expected rejection", from, to)
			}
			var transitionErr *TransitionError
			if !errors.As(err, &transitionErr) {
				t.Fatalf("%s -> %s: expected TransitionError, got %v", from, to, err)
			}
		}
	}
}

func TestAttemptTransitionSelfTransition(t *testing.T) {
	_, err := AttemptTransition(StatusScoping, StatusScoping)
	var transitionErr *TransitionError
	if !errors.As(err, &transitionErr) {
		t.Fatalf("expected TransitionError for self-transition, got %v", err)
	}
}

func TestAttemptTransitionUnknownStatus(t *testing.T) {
	_, err := AttemptTransition(StatusDraft, Status("shipped"))
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	for _, terminal := range []Status{StatusArchived, StatusRejected, StatusCancelled} {
		for _, to := range AllStatuses {
			if _, err := AttemptTransition(terminal, to); err == nil {
				t.Fatalf("%s -> %s: terminal state must have no exit", terminal, to)
			}
		}
	}
	// completed has exactly one exit
	if _, err := AttemptTransition(StatusCompleted, StatusArchived); err != nil {
		t.Fatalf("completed -> archived should be legal: %v", err)
	}
	for _, to := range AllStatuses {
		if to == StatusArchived {
			continue
		}
		if _, err := AttemptTransition(StatusCompleted, to); err == nil {
			t.Fatalf("completed -> %s should be illegal", to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw     string
		want    Status
		wantErr bool
	}{
		{raw: "draft", want: StatusDraft},
		{raw: "quote_sent", want: StatusQuoteSent},
		{raw: "cancelled", want: StatusCancelled},
		{raw: "QUOTE_SENT", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "shipped", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.raw)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownStatus) {
				t.Fatalf("ParseStatus(%q): expected ErrUnknownStatus, got %v", tc.raw, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("ParseStatus(%q) = %v, %v; want %v", tc.raw, got, err, tc.want)
		}
	}
}

func TestStatusLabels(t *testing.T) {
	for _, status := range AllStatuses {
		if _, ok := statusLabels[status]; !ok {
			t.Fatalf("status %s missing label", status)
		}
		if status.Label() == "" {
			t.Fatalf("status %s has empty label", status)
		}
	}
	if got := StatusQuoteSent.Label(); got != "Quote Sent" {
		t.Fatalf("quote_sent label = %q", got)
	}
}
