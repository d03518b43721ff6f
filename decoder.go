package metasprite

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"errors"
	"io"
	"strings"
)

// decoder is a forward-only little-endian cursor over an in-memory buffer.
// base is the absolute offset of buf[0] and only feeds error messages.
type decoder struct {
	r    *bytes.Reader
	base int64
}

func newDecoder(buf []byte, base int64) *decoder {
	return &decoder{r: bytes.NewReader(buf), base: base}
}

// offset returns the absolute offset of the next unread byte.
func (d *decoder) offset() int64 {
	return d.base + d.r.Size() - int64(d.r.Len())
}

func (d *decoder) remaining() int {
	return d.r.Len()
}

// truncated reports a failed read of what, which started at off.
func (d *decoder) truncated(what string, off int64, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return formatErrorf(off, "truncated %s", what)
	}
	return formatErrorf(off, "reading %s: %v", what, err)
}

// read decodes a fixed-size value.
func (d *decoder) read(v any, what string) error {
	off := d.offset()
	if err := binary.Read(d.r, binary.LittleEndian, v); err != nil {
		return d.truncated(what, off, err)
	}
	return nil
}

func (d *decoder) byte(what string) (BYTE, error) {
	var v BYTE
	err := d.read(&v, what)
	return v, err
}

func (d *decoder) word(what string) (WORD, error) {
	var v WORD
	err := d.read(&v, what)
	return v, err
}

func (d *decoder) short(what string) (SHORT, error) {
	var v SHORT
	err := d.read(&v, what)
	return v, err
}

func (d *decoder) dword(what string) (DWORD, error) {
	var v DWORD
	err := d.read(&v, what)
	return v, err
}

func (d *decoder) bytes(n int, what string) ([]byte, error) {
	if n < 0 || n > d.r.Len() {
		return nil, formatErrorf(d.offset(), "truncated %s: need %d bytes, have %d", what, n, d.r.Len())
	}
	off := d.offset()
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, d.truncated(what, off, err)
	}
	return buf, nil
}

func (d *decoder) skip(n int, what string) error {
	if n < 0 || n > d.r.Len() {
		return formatErrorf(d.offset(), "truncated %s: need %d bytes, have %d", what, n, d.r.Len())
	}
	_, err := d.r.Seek(int64(n), io.SeekCurrent)
	return err
}

// str reads a STRING: a WORD byte length followed by UTF-8 bytes. Invalid
// sequences are replaced with U+FFFD.
func (d *decoder) str(what string) (string, error) {
	n, err := d.word(what + " length")
	if err != nil {
		return "", err
	}
	chars, err := d.bytes(int(n), what)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(chars), "�"), nil
}

// compressed reads n bytes of a zlib stream, drops the 2-byte header and the
// 4-byte Adler-32 trailer, and inflates the DEFLATE body. Output longer than
// limit bytes is a FormatError.
func (d *decoder) compressed(n, limit int, what string) ([]byte, error) {
	start := d.offset()
	if n < 6 {
		return nil, formatErrorf(start, "truncated %s: %d bytes is too short for a zlib stream", what, n)
	}
	if err := d.skip(2, what+" header"); err != nil {
		return nil, err
	}
	body, err := d.bytes(n-6, what)
	if err != nil {
		return nil, err
	}
	if err := d.skip(4, what+" checksum"); err != nil {
		return nil, err
	}

	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()

	var out bytes.Buffer
	if _, err := io.Copy(&out, io.LimitReader(r, int64(limit)+1)); err != nil {
		return nil, formatErrorf(start, "failed to inflate %s: %v", what, err)
	}
	if out.Len() > limit {
		return nil, formatErrorf(start, "%s inflate to more than %d bytes", what, limit)
	}
	return out.Bytes(), nil
}

func expectMagic(got, want uint32, what string, off int64) error {
	if got != want {
		return formatErrorf(off, "bad %s magic number: got 0x%X, want 0x%X", what, got, want)
	}
	return nil
}
