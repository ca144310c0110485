package ffmpeg

// Mode selects which encoder family a run uses.
type Mode string

const (
	ModeSoftware Mode = "software" // libx264, works everywhere
	ModeHardware Mode = "hardware" // h264_nvenc, needs an NVIDIA GPU
)

// Shared output parameters. Every profile forces the same frame rate,
// container timescale and audio format so the normalized clips are
// bit-compatible for the stream-copy concat at the end of the run.
// The timescale in particular keeps duration/progress metadata sane
// when clips with differing source timescales are copied together.
const (
	outputFrameRate = "30"
	trackTimescale  = "15360"
	audioCodec      = "aac"
	audioSampleRate = "44100"
	audioChannels   = "2"
	audioBitrate    = "192k"
)

// Profile is the complete encoder parameter set for one mode.
// Profiles are immutable; exactly one is active per run.
type Profile struct {
	Mode        Mode
	Name        string
	VideoCodec  string
	Preset      string
	QualityFlag string // -crf for x264, -cq for nvenc
	Quality     string
	RateControl string // nvenc only; empty means no -rc flag
}

// IsHardware reports whether this profile uses a GPU encoder.
func (p *Profile) IsHardware() bool {
	return p.Mode == ModeHardware
}

// VideoArgs returns the encoder-selection arguments for this profile.
func (p *Profile) VideoArgs() []string {
	args := []string{
		"-c:v", p.VideoCodec,
		"-preset", p.Preset,
		p.QualityFlag, p.Quality,
	}
	if p.RateControl != "" {
		args = append(args, "-rc", p.RateControl)
	}
	return args
}

// CommonArgs returns the shared frame-rate/timescale/audio arguments
// appended after the video args for every profile.
func (p *Profile) CommonArgs() []string {
	return []string{
		"-r", outputFrameRate,
		"-video_track_timescale", trackTimescale,
		"-c:a", audioCodec,
		"-ar", audioSampleRate,
		"-ac", audioChannels,
		"-b:a", audioBitrate,
	}
}

// Args returns the full encoding argument list (video + common).
func (p *Profile) Args() []string {
	return append(p.VideoArgs(), p.CommonArgs()...)
}

var profiles = map[Mode]*Profile{
	ModeSoftware: {
		Mode:        ModeSoftware,
		Name:        "CPU (libx264)",
		VideoCodec:  "libx264",
		Preset:      "fast",
		QualityFlag: "-crf",
		Quality:     "23",
	},
	ModeHardware: {
		// NVENC has no crf; -cq 26 lands at roughly the same visual
		// quality as x264 crf 23. p4 is the middle of the p1-p7 range.
		Mode:        ModeHardware,
		Name:        "GPU (h264_nvenc)",
		VideoCodec:  "h264_nvenc",
		Preset:      "p4",
		QualityFlag: "-cq",
		Quality:     "26",
		RateControl: "vbr",
	},
}

// ParseMode maps user input to a Mode. "2" and "hardware" select the
// GPU profile; everything else — including empty input and garbage —
// falls back to software, the slower but always-available path.
func ParseMode(s string) Mode {
	switch s {
	case "2", string(ModeHardware):
		return ModeHardware
	default:
		return ModeSoftware
	}
}

// SelectProfile returns the profile for the given mode string.
// Unrecognized input selects the software profile.
func SelectProfile(mode string) *Profile {
	return profiles[ParseMode(mode)]
}
