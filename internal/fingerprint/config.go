package fingerprint

// Config fixes the analysis parameters shared by the calculator and the
// matcher. Two fingerprints are only comparable when produced under the
// same configuration.
type Config struct {
	// SampleRate is the mono decode rate in Hz.
	SampleRate int
	// WindowSize is the STFT analysis window in samples.
	WindowSize int
	// HopSize is the STFT hop in samples; one fingerprint word is emitted
	// per hop.
	HopSize int
}

// DefaultConfig is the preset used across the tool. Offsets reported by the
// matcher convert to seconds through this fixed frame rate.
func DefaultConfig() Config {
	return Config{
		SampleRate: 11025,
		WindowSize: 4096,
		HopSize:    1365,
	}
}

// FrameRate returns the number of fingerprint frames per second.
func (c Config) FrameRate() float64 {
	return float64(c.SampleRate) / float64(c.HopSize)
}

// FrameDuration returns the duration of one fingerprint frame in seconds.
func (c Config) FrameDuration() float64 {
	return float64(c.HopSize) / float64(c.SampleRate)
}
