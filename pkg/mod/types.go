package mod

// Song is the immutable parsed representation of a MOD file. It is
// built once by LoadSong and only ever read afterwards; Player and the
// UI share the same instance.
type Song struct {
	Title       string
	NumChannels int
	Samples     []*Sample
	Orders      []uint8
	RestartPos  int
	Patterns    []Pattern
	Format      FormatDescription
}

// Sample stores raw signed 8-bit PCM data plus loop and volume
// metadata. LoopLen <= 2 means the sample does not loop; a 2-byte loop
// is the MOD convention for "no loop".
type Sample struct {
	Name      string
	Data      []int8
	Length    int
	FineTune  int // 0..15, 8 = no finetune offset
	Volume    int // 0..64
	LoopStart int
	LoopLen   int
}

// Note is one pattern cell: which sample to trigger, at which period,
// with which effect. EffectCode/EffectParam keep the raw nibbles for
// display; Effect is the decoded command the engine runs.
type Note struct {
	SampleNumber int // 1-based, 0 = keep current sample
	Period       int
	Effect       Effect
	EffectCode   uint8
	EffectParam  uint8
	Name         string // display name such as "A-2", "---" if no period
}

// Row holds one Note per channel.
type Row []Note

// Pattern is a fixed grid of 64 rows.
type Pattern struct {
	Rows []Row
}

// FormatDescription is the decoded format tag of a MOD file.
type FormatDescription struct {
	Tag        string
	NumSamples int
}

// MixingMode selects how the four Amiga channels map onto the stereo
// output. The mode only ever changes at a tick boundary, never inside
// a rendered block.
type MixingMode int

const (
	// AmigaMixing hard pans channels 1+4 left and 2+3 right.
	AmigaMixing MixingMode = iota
	// StereoMixing keeps the Amiga assignment but bleeds a third of
	// each channel into the far side.
	StereoMixing
	// MonoMixing sums every channel into both sides.
	MonoMixing
)

func (mode MixingMode) String() string {
	return [...]string{"Amiga", "Stereo", "Mono"}[mode]
}

// LoopMode selects what happens when the order list runs out.
type LoopMode int

const (
	// LoopSong restarts from the song's restart position.
	LoopSong LoopMode = iota
	// PlayOnce reports completion instead of restarting.
	PlayOnce
)

func (mode LoopMode) String() string {
	return [...]string{"Loop", "Once"}[mode]
}
