package model

import "testing"

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusQueued, false},
		{StatusRunning, false},
		{StatusDone, true},
		{StatusError, true},
		{StatusCanceled, true},
	}

	for _, test := range tests {
		result := test.status.IsTerminal()
		if result != test.expected {
			t.Errorf("Status(%s).IsTerminal() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     Status
		to       Status
		expected bool
	}{
		{StatusQueued, StatusRunning, true},
		{StatusQueued, StatusError, true},
		{StatusQueued, StatusCanceled, true},
		{StatusRunning, StatusRunning, true},
		{StatusRunning, StatusDone, true},
		{StatusRunning, StatusError, true},
		{StatusRunning, StatusCanceled, true},
		{StatusRunning, StatusQueued, false},
		{StatusDone, StatusRunning, false},
		{StatusDone, StatusError, false},
		{StatusError, StatusRunning, false},
		{StatusError, StatusDone, false},
		{StatusCanceled, StatusRunning, false},
		{StatusCanceled, StatusDone, false},
	}

	for _, test := range tests {
		result := test.from.CanTransitionTo(test.to)
		if result != test.expected {
			t.Errorf("Status(%s).CanTransitionTo(%s) = %v, expected %v", test.from, test.to, result, test.expected)
		}
	}
}

func TestMediaType_Valid(t *testing.T) {
	tests := []struct {
		mediaType MediaType
		expected  bool
	}{
		{MediaVideo, true},
		{MediaAudio, true},
		{MediaType(""), false},
		{MediaType("image"), false},
	}

	for _, test := range tests {
		result := test.mediaType.Valid()
		if result != test.expected {
			t.Errorf("MediaType(%s).Valid() = %v, expected %v", test.mediaType, result, test.expected)
		}
	}
}
