package core

import "testing"

func TestFrameStatsMovingAverage(t *testing.T) {
	s := NewFrameStats()
	if s.AvgFrameMS() != 0 {
		t.Errorf("fresh stats avg = %f, want 0", s.AvgFrameMS())
	}

	// 16ms frames for a full window.
	for i := 0; i < frameAvgCount; i++ {
		s.Update(0.016)
	}
	if got := s.AvgFrameMS(); got < 15.9 || got > 16.1 {
		t.Errorf("avg frame ms = %f, want ~16", got)
	}
}

func TestFrameStatsFPSOncePerSecond(t *testing.T) {
	s := NewFrameStats()

	// 60 frames of ~16.7ms: just over one second.
	for i := 0; i < 60; i++ {
		s.Update(1.0 / 60.0)
	}
	if s.FPS() == 0 {
		t.Fatal("fps not published after one second of frames")
	}
	if got := s.FPS(); got < 55 || got > 65 {
		t.Errorf("fps = %f, want ~60", got)
	}
}
