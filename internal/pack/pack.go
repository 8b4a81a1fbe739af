// Package pack implements the .pck sidecar format: one entry per line,
// "name:base64", with the fingerprint packed as big-endian 32-bit words.
package pack

import (
	"bufio"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Entry pairs an asset name with its fingerprint.
type Entry struct {
	Name        string
	Fingerprint []uint32
}

// File is an ordered collection of entries, kept sorted by name so the
// cache updater can binary-search it.
type File struct {
	Entries []Entry
}

// Decode reads a complete pack from r. A final line without a trailing
// newline is accepted.
func Decode(r io.Reader) (*File, error) {
	d := NewDecoder(r)
	f := &File{}
	for {
		entry, err := d.Next()
		if err == io.EOF {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		f.Entries = append(f.Entries, entry)
	}
}

// Encode writes the complete pack to w in entry order, one entry per line.
// There is no append mode: callers always rewrite the whole file.
func (f *File) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 4)
	for _, e := range f.Entries {
		raw := make([]byte, 0, len(e.Fingerprint)*4)
		for _, word := range e.Fingerprint {
			binary.BigEndian.PutUint32(buf, word)
			raw = append(raw, buf...)
		}
		if _, err := fmt.Fprintf(bw, "%s:%s\n", e.Name, base64.StdEncoding.EncodeToString(raw)); err != nil {
			return fmt.Errorf("encode pack: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("encode pack: %w", err)
	}
	return nil
}

// Decoder is the streaming variant of Decode: it yields one entry per call
// with the same line semantics.
type Decoder struct {
	r     *bufio.Reader
	index int
}

// NewDecoder returns a Decoder reading entries from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next entry, or io.EOF once the stream is exhausted.
func (d *Decoder) Next() (Entry, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return Entry{}, fmt.Errorf("read pack line %d: %w", d.index, err)
	}
	if line == "" {
		return Entry{}, io.EOF
	}

	entry, perr := parseLine(strings.TrimSpace(line), d.index)
	if perr != nil {
		return Entry{}, perr
	}
	d.index++
	return entry, nil
}

func parseLine(line string, index int) (Entry, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 2 {
		return Entry{}, &InvalidLineError{Index: index}
	}

	raw, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return Entry{}, fmt.Errorf("line %d: %w: %w", index, ErrInvalidFingerprint, err)
	}
	if len(raw)%4 != 0 {
		return Entry{}, fmt.Errorf("line %d: trailing %d byte(s): %w", index, len(raw)%4, ErrInvalidWord)
	}

	fp := make([]uint32, 0, len(raw)/4)
	for i := 0; i < len(raw); i += 4 {
		fp = append(fp, binary.BigEndian.Uint32(raw[i:i+4]))
	}
	return Entry{Name: parts[0], Fingerprint: fp}, nil
}

// Load reads a pack file from disk.
func Load(path string) (*File, error) {
	f, err := os.Open(path) // #nosec G304 -- pack paths come from user-supplied reference dirs
	if err != nil {
		return nil, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// WriteFile rewrites the pack file in full. Concurrent writers to the same
// path must be serialized by the caller.
func (f *File) WriteFile(path string) error {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644) // #nosec G302 G304 -- sidecar next to user media
	if err != nil {
		return fmt.Errorf("create pack: %w", err)
	}
	if err := f.Encode(out); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close pack: %w", err)
	}
	return nil
}

// Search locates name among the name-sorted entries. It returns the entry
// index and true when present, or the insertion index and false.
func (f *File) Search(name string) (int, bool) {
	i := sort.Search(len(f.Entries), func(i int) bool { return f.Entries[i].Name >= name })
	if i < len(f.Entries) && f.Entries[i].Name == name {
		return i, true
	}
	return i, false
}

// Insert places entry at index i, shifting later entries up.
func (f *File) Insert(i int, entry Entry) {
	f.Entries = append(f.Entries, Entry{})
	copy(f.Entries[i+1:], f.Entries[i:])
	f.Entries[i] = entry
}
