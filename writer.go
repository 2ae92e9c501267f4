package ooze

import (
	"bufio"
	"io"

	"github.com/Tnze/go-mc/nbt"
	pk "github.com/Tnze/go-mc/net/packet"
)

// Writer emits the ooze binary layout: variable-length integers, raw bytes
// and NBT property compounds. I/O errors are returned unchanged.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) WriteVarInt(v int) error {
	_, err := pk.VarInt(v).WriteTo(w.w)
	return err
}

func (w *Writer) WriteByte(b byte) error {
	_, err := w.w.Write([]byte{b})
	return err
}

func (w *Writer) WriteBytes(b []byte) error {
	_, err := w.w.Write(b)
	return err
}

// WriteNBT writes v as an unnamed compound.
func (w *Writer) WriteNBT(v interface{}) error {
	return nbt.NewEncoder(w.w).Encode(v, "")
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

// Reader is the inverse of Writer.
type Reader struct {
	r byteReader
}

// NewReader wraps r. Non-byte-oriented readers are buffered so the NBT
// decoder never reads past the value it is asked for.
func NewReader(r io.Reader) *Reader {
	if br, ok := r.(byteReader); ok {
		return &Reader{r: br}
	}
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) ReadVarInt() (int, error) {
	var v pk.VarInt
	_, err := v.ReadFrom(r.r)
	return int(v), err
}

func (r *Reader) ReadByte() (byte, error) {
	return r.r.ReadByte()
}

func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(r.r, buf)
	return buf, err
}

// ReadNBT decodes one unnamed compound into v.
func (r *Reader) ReadNBT(v interface{}) error {
	_, err := nbt.NewDecoder(r.r).Decode(v)
	return err
}
