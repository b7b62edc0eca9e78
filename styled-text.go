/**
 * styled text container: a stream header, the UTF-8 text and an optional style section
 * holding the flattened run array. Every field is stored big endian.
 */

package stxtconverter

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	streamMagic uint32 = 0x53545854 // 'STXT'
	textMagic   uint32 = 0x54455854 // 'TEXT'
	styleMagic  uint32 = 0x5354594C // 'STYL'
	runsMagic   uint32 = 0x416C6921 // 'Ali!'

	streamVersion = 100
	runsVersion   = 0

	// the only charset written and read: UTF-8
	textCharsetUtf8 = 0

	// the slant of an upright font, in degrees
	defaultShear float32 = 90

	fontNameLength = 64
)

// the three headers start with the same magic, header size and data size fields

type streamHeader struct {
	Magic      uint32
	HeaderSize int32
	DataSize   int32
	Version    int32
}

type textHeader struct {
	Magic      uint32
	HeaderSize int32
	DataSize   int32
	Charset    int32
}

type styleHeader struct {
	Magic       uint32
	HeaderSize  int32
	DataSize    int32
	ApplyOffset uint32
	ApplyLength uint32
}

type runsHeader struct {
	Magic   uint32
	Version uint32
	Count   int32
}

type runRecord struct {
	Offset   int32
	Family   [fontNameLength]byte
	Style    [fontNameLength]byte
	Size     float32
	Shear    float32
	Face     uint16
	Red      uint8
	Green    uint8
	Blue     uint8
	Alpha    uint8
	Reserved uint16
}

var (
	streamHeaderSize = int32(binary.Size(streamHeader{}))
	textHeaderSize   = int32(binary.Size(textHeader{}))
	styleHeaderSize  = int32(binary.Size(styleHeader{}))
	runsHeaderSize   = binary.Size(runsHeader{})
	runRecordSize    = binary.Size(runRecord{})
)

/**
 * EncodeStyledText returns the container of text and runs.
 * With runs == nil no style section is written.
 */
func EncodeStyledText(text []byte, runs []StyleRun) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := WriteStyledText(buf, text, runs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteStyledText(w io.Writer, text []byte, runs []StyleRun) error {
	if err := writeTextHeaders(w, len(text)); err != nil {
		return err
	}
	if err := writeFull(w, text); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}
	if runs == nil {
		return nil
	}
	return writeStyleSection(w, runs, len(text))
}

// writeTextHeaders writes the stream header and the header of a text of textLength bytes.
func writeTextHeaders(w io.Writer, textLength int) error {
	if textLength > math.MaxInt32 {
		return fmt.Errorf("text of %d bytes does not fit a container", textLength)
	}

	stream := streamHeader{
		Magic:      streamMagic,
		HeaderSize: streamHeaderSize,
		Version:    streamVersion,
	}
	text := textHeader{
		Magic:      textMagic,
		HeaderSize: textHeaderSize,
		DataSize:   int32(textLength),
		Charset:    textCharsetUtf8,
	}

	if err := writeBigEndian(w, &stream); err != nil {
		return fmt.Errorf("writing stream header: %w", err)
	}
	if err := writeBigEndian(w, &text); err != nil {
		return fmt.Errorf("writing text header: %w", err)
	}
	return nil
}

func writeStyleSection(w io.Writer, runs []StyleRun, textLength int) error {
	flat, err := FlattenRunArray(runs)
	if err != nil {
		return err
	}

	header := styleHeader{
		Magic:       styleMagic,
		HeaderSize:  styleHeaderSize,
		DataSize:    int32(len(flat)),
		ApplyOffset: 0,
		ApplyLength: uint32(textLength),
	}
	if err := writeBigEndian(w, &header); err != nil {
		return fmt.Errorf("writing style header: %w", err)
	}
	if err := writeFull(w, flat); err != nil {
		return fmt.Errorf("writing style runs: %w", err)
	}
	return nil
}

func writeBigEndian(w io.Writer, data any) error {
	b, err := binary.Append(nil, binary.BigEndian, data)
	if err != nil {
		return err
	}
	return writeFull(w, b)
}

/**
 * FlattenRunArray serializes runs: a small header followed by one fixed size record per run
 */
func FlattenRunArray(runs []StyleRun) ([]byte, error) {
	if len(runs) > (math.MaxInt32-runsHeaderSize)/runRecordSize {
		return nil, fmt.Errorf("%w: too many runs (%d)", ErrInvalidRun, len(runs))
	}

	buf := make([]byte, 0, runsHeaderSize+len(runs)*runRecordSize)
	buf, err := binary.Append(buf, binary.BigEndian, &runsHeader{
		Magic:   runsMagic,
		Version: runsVersion,
		Count:   int32(len(runs)),
	})
	if err != nil {
		return nil, err
	}

	for i, run := range runs {
		record, err := newRunRecord(run)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		if buf, err = binary.Append(buf, binary.BigEndian, &record); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func newRunRecord(run StyleRun) (runRecord, error) {
	record := runRecord{
		Size:  run.Font.Size,
		Shear: defaultShear,
		Face:  uint16(run.Font.Face),
		Red:   run.Color.R,
		Green: run.Color.G,
		Blue:  run.Color.B,
		Alpha: run.Color.A,
	}

	if run.Offset > math.MaxInt32 {
		return record, fmt.Errorf("%w: offset %d out of range", ErrInvalidRun, run.Offset)
	}
	record.Offset = int32(run.Offset)

	// names are NUL terminated inside their field
	if len(run.Font.Family) >= fontNameLength {
		return record, fmt.Errorf("%w: family name %q too long", ErrInvalidRun, run.Font.Family)
	}
	if len(run.Font.Style) >= fontNameLength {
		return record, fmt.Errorf("%w: style name %q too long", ErrInvalidRun, run.Font.Style)
	}
	copy(record.Family[:], run.Font.Family)
	copy(record.Style[:], run.Font.Style)

	return record, nil
}

func (r *runRecord) styleRun() StyleRun {
	return StyleRun{
		Offset: uint32(r.Offset),
		Color:  RGBA8{R: r.Red, G: r.Green, B: r.Blue, A: r.Alpha},
		Font: Font{
			Family: cString(r.Family[:]),
			Style:  cString(r.Style[:]),
			Size:   r.Size,
			Face:   FaceFlags(r.Face),
		},
	}
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// UnflattenRunArray is the reverse of FlattenRunArray.
func UnflattenRunArray(flat []byte) ([]StyleRun, error) {
	reader := bytes.NewReader(flat)

	var header runsHeader
	if err := binary.Read(reader, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: truncated run array", ErrMalformedContainer)
	}
	if header.Magic != runsMagic {
		return nil, fmt.Errorf("%w: bad run array magic %#08x", ErrMalformedContainer, header.Magic)
	}
	if header.Count < 0 || int64(header.Count)*int64(runRecordSize) > int64(reader.Len()) {
		return nil, fmt.Errorf("%w: run array declares %d runs in %d bytes", ErrMalformedContainer, header.Count, len(flat))
	}

	runs := make([]StyleRun, 0, header.Count)
	for i := int32(0); i < header.Count; i++ {
		var record runRecord
		if err := binary.Read(reader, binary.BigEndian, &record); err != nil {
			return nil, fmt.Errorf("%w: truncated run %d", ErrMalformedContainer, i)
		}
		if record.Offset < 0 {
			return nil, fmt.Errorf("%w: run %d has negative offset", ErrMalformedContainer, i)
		}
		runs = append(runs, record.styleRun())
	}
	return runs, nil
}

/**
 * DecodeStyledText returns the text and the runs of a container.
 * runs is nil when the container has no style section.
 */
func DecodeStyledText(data []byte) ([]byte, []StyleRun, error) {
	return ReadStyledText(bytes.NewReader(data))
}

func ReadStyledText(r io.Reader) ([]byte, []StyleRun, error) {
	var stream streamHeader
	if err := readHeader(r, &stream, "stream"); err != nil {
		return nil, nil, err
	}
	if stream.Magic != streamMagic || stream.HeaderSize != streamHeaderSize {
		return nil, nil, fmt.Errorf("%w: not a styled text stream", ErrMalformedContainer)
	}

	var header textHeader
	if err := readHeader(r, &header, "text"); err != nil {
		return nil, nil, err
	}
	if header.Magic != textMagic || header.HeaderSize != textHeaderSize || header.DataSize < 0 {
		return nil, nil, fmt.Errorf("%w: bad text header", ErrMalformedContainer)
	}

	text, err := readSection(r, header.DataSize, "text")
	if err != nil {
		return nil, nil, err
	}

	runs, err := readStyleSection(r, len(text))
	if err != nil {
		return nil, nil, err
	}
	return text, runs, nil
}

/**
 * the style section is optional: nothing, or something that is not a style header, means
 * plain text; a header cut short is an error
 */
func readStyleSection(r io.Reader, textLength int) ([]StyleRun, error) {
	raw := make([]byte, styleHeaderSize)
	n, err := io.ReadFull(r, raw)
	if err == io.EOF {
		return nil, nil
	}
	if err == io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("%w: truncated style header (%d bytes)", ErrMalformedContainer, n)
	}
	if err != nil {
		return nil, fmt.Errorf("reading style header: %w", err)
	}

	var header styleHeader
	if _, err := binary.Decode(raw, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedContainer, err)
	}
	if header.Magic != styleMagic || header.HeaderSize != styleHeaderSize {
		Logger().Warn("ignoring unknown section after text", "magic", fmt.Sprintf("%#08x", header.Magic), "header_size", header.HeaderSize)
		return nil, nil
	}
	if header.DataSize < 0 {
		return nil, fmt.Errorf("%w: negative style data size", ErrMalformedContainer)
	}
	if header.DataSize == 0 {
		return []StyleRun{}, nil
	}

	flat, err := readSection(r, header.DataSize, "style")
	if err != nil {
		return nil, err
	}
	runs, err := UnflattenRunArray(flat)
	if err != nil {
		return nil, err
	}

	Logger().Debug("style section read", "runs", len(runs), "text_length", textLength, "apply_length", header.ApplyLength)
	return runs, nil
}

func readHeader(r io.Reader, header any, name string) error {
	err := binary.Read(r, binary.BigEndian, header)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: truncated %s header", ErrMalformedContainer, name)
	}
	if err != nil {
		return fmt.Errorf("reading %s header: %w", name, err)
	}
	return nil
}

/**
 * read size bytes; the buffer grows with the data actually read, so a lying header
 * can't make us allocate its declared size up front
 */
func readSection(r io.Reader, size int32, name string) ([]byte, error) {
	buf := &bytes.Buffer{}
	_, err := io.CopyN(buf, r, int64(size))
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s section declares %d bytes, %d available", ErrMalformedContainer, name, size, buf.Len())
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s section: %w", name, err)
	}
	return buf.Bytes(), nil
}
