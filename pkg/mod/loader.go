package mod

import "strings"

const (
	rowsPerPattern  = 64
	bytesPerCell    = 4
	sampleHeaderLen = 30
	maxOrders       = 128
)

// fourChannelTags are the format tags the engine accepts. Tags that
// declare more than four channels (6CHN, 8CHN, ...) are rejected:
// this core only mixes the classic four Amiga voices.
var fourChannelTags = map[string]bool{
	"M.K.": true,
	"M!K!": true,
	"FLT4": true,
	"4CHN": true,
}

var multiChannelTags = map[string]bool{
	"6CHN": true,
	"8CHN": true,
	"CD81": true,
	"CD61": true,
	"12CH": true,
}

// LoadSong parses raw MOD file bytes into an immutable Song. It
// returns a *FormatError when the file is malformed, truncated or in
// an unsupported variant. Both the tagged 31-sample format and the
// legacy untagged 15-sample format are accepted.
func LoadSong(data []byte) (*Song, error) {
	format, err := detectFormat(data)
	if err != nil {
		return nil, err
	}

	offset := 20
	samples := make([]*Sample, format.NumSamples)
	totalSampleBytes := 0
	for i := range samples {
		s := parseSampleHeader(data[offset : offset+sampleHeaderLen])
		samples[i] = s
		totalSampleBytes += s.Length
		offset += sampleHeaderLen
	}

	songLength := int(data[offset])
	restart := int(data[offset+1])
	offset += 2
	if songLength < 1 || songLength > maxOrders {
		return nil, formatErrorf(offset-2, "song length %d out of range", songLength)
	}

	orderOffset := offset
	orderData := data[offset : offset+maxOrders]
	offset += maxOrders
	if format.Tag != "" {
		offset += 4
	}

	// Every pattern referenced anywhere in the 128-entry order table
	// has pattern data on disk, even past the song length marker.
	numPatterns := 0
	for i, o := range orderData {
		if int(o) >= maxOrders {
			return nil, formatErrorf(orderOffset+i, "pattern index %d out of range", o)
		}
		if int(o)+1 > numPatterns {
			numPatterns = int(o) + 1
		}
	}

	patternBytes := numPatterns * rowsPerPattern * 4 * bytesPerCell
	if offset+patternBytes+totalSampleBytes > len(data) {
		return nil, formatErrorf(offset, "%d patterns and %d sample bytes do not fit in %d file bytes",
			numPatterns, totalSampleBytes, len(data))
	}

	patterns := make([]Pattern, numPatterns)
	for i := range patterns {
		patterns[i] = parsePattern(data[offset : offset+rowsPerPattern*4*bytesPerCell])
		offset += rowsPerPattern * 4 * bytesPerCell
	}

	for _, s := range samples {
		s.Data = make([]int8, s.Length)
		for i := range s.Data {
			s.Data[i] = int8(data[offset])
			offset++
		}
	}

	orders := make([]uint8, songLength)
	copy(orders, orderData[:songLength])
	if restart >= songLength {
		restart = 0
	}

	return &Song{
		Title:       strings.TrimRight(string(data[0:20]), "\x00 "),
		NumChannels: 4,
		Samples:     samples,
		Orders:      orders,
		RestartPos:  restart,
		Patterns:    patterns,
		Format:      format,
	}, nil
}

func detectFormat(data []byte) (FormatDescription, error) {
	// 15-sample header: title + 15*30 + length/restart + 128 orders.
	if len(data) < 600 {
		return FormatDescription{}, formatErrorf(len(data), "file too short for a MOD header")
	}
	if len(data) >= 1084 {
		tag := string(data[1080:1084])
		if fourChannelTags[tag] {
			return FormatDescription{Tag: tag, NumSamples: 31}, nil
		}
		if multiChannelTags[tag] {
			return FormatDescription{}, formatErrorf(1080, "format %q has more than 4 channels", tag)
		}
	}
	// No recognized tag: legacy Soundtracker 15-sample module.
	return FormatDescription{NumSamples: 15}, nil
}

func parseSampleHeader(data []byte) *Sample {
	length := (int(data[22])<<8 | int(data[23])) << 1
	loopStart := (int(data[26])<<8 | int(data[27])) << 1
	loopLen := (int(data[28])<<8 | int(data[29])) << 1

	// Clamp loops that run past the sample end rather than rejecting
	// the whole file; trackers wrote plenty of these.
	if loopStart >= length {
		loopStart = 0
		loopLen = 0
	} else if loopStart+loopLen > length {
		loopLen = length - loopStart
	}

	volume := int(data[25])
	if volume > 64 {
		volume = 64
	}

	// The finetune nibble is a signed value (-8..+7); fold it into an
	// index of the .12 fixed-point scaling table, 8 = no adjustment.
	ft := data[24] & 0x0F
	fineTune := int(ft&7) - int(ft&8) + 8

	return &Sample{
		Name:      strings.TrimRight(string(data[0:22]), "\x00 "),
		Length:    length,
		FineTune:  fineTune,
		Volume:    volume,
		LoopStart: loopStart,
		LoopLen:   loopLen,
	}
}

func parseNote(data []byte) Note {
	sampleNumber := int(data[0]&0xF0) | int(data[2]>>4)
	period := int(data[0]&0x0F)<<8 | int(data[1])
	return Note{
		SampleNumber: sampleNumber,
		Period:       period,
		Effect:       decodeEffect(data[2]&0x0F, data[3]),
		EffectCode:   data[2] & 0x0F,
		EffectParam:  data[3],
		Name:         noteName(period),
	}
}

func parsePattern(data []byte) Pattern {
	rows := make([]Row, rowsPerPattern)
	offset := 0
	for r := range rows {
		row := make(Row, 4)
		for c := range row {
			row[c] = parseNote(data[offset : offset+bytesPerCell])
			offset += bytesPerCell
		}
		rows[r] = row
	}
	return Pattern{Rows: rows}
}
