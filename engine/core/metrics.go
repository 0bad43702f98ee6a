package core

const frameAvgCount = 30

// FrameStats tracks a moving average of frame times and a once-per-second
// FPS figure. The main loop owns one and feeds it every frame.
type FrameStats struct {
	msTimes       [frameAvgCount]float64
	msCounter     int
	msAvg         float64
	frames        int
	accumulatedMS float64
	fps           float64
}

func NewFrameStats() *FrameStats {
	return &FrameStats{}
}

// Update folds one frame's elapsed time (seconds) into the running figures.
func (s *FrameStats) Update(frameElapsed float64) {
	frameMS := frameElapsed * 1000.0
	s.msTimes[s.msCounter] = frameMS
	if s.msCounter == frameAvgCount-1 {
		sum := 0.0
		for i := 0; i < frameAvgCount; i++ {
			sum += s.msTimes[i]
		}
		s.msAvg = sum / float64(frameAvgCount)
	}
	s.msCounter = (s.msCounter + 1) % frameAvgCount

	s.accumulatedMS += frameMS
	if s.accumulatedMS > 1000 {
		s.fps = float64(s.frames)
		s.accumulatedMS -= 1000
		s.frames = 0
	}
	s.frames++
}

// FPS returns the frame count of the last completed second.
func (s *FrameStats) FPS() float64 {
	return s.fps
}

// AvgFrameMS returns the moving average frame time in milliseconds.
func (s *FrameStats) AvgFrameMS() float64 {
	return s.msAvg
}
