package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

// countingWriter records each Write call separately.
type countingWriter struct {
	writes []string
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes = append(w.writes, string(p))
	return len(p), nil
}

func TestHandshakeLinesDefaults(t *testing.T) {
	got := HandshakeLines(DefaultSettings(12345, "python"))
	want := []string{
		"moss 12345\n",
		"directory 0\n",
		"X 0\n",
		"maxmatches 10\n",
		"show 250\n",
		"language python\n",
	}
	if len(got) != len(want) {
		t.Fatalf("line count got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d got=%q want=%q", i, got[i], want[i])
		}
	}
}

func TestWriteHandshakeOneWritePerLine(t *testing.T) {
	s := Settings{
		UserID:        7,
		Language:      "c",
		DirectoryMode: true,
		Experimental:  true,
		IgnoreLimit:   3,
		ShowMatches:   40,
	}
	var w countingWriter
	if err := WriteHandshake(&w, s); err != nil {
		t.Fatalf("write handshake: %v", err)
	}
	want := "moss 7\ndirectory 1\nX 1\nmaxmatches 3\nshow 40\nlanguage c\n"
	if len(w.writes) != 6 {
		t.Fatalf("unexpected write count=%d", len(w.writes))
	}
	if got := strings.Join(w.writes, ""); got != want {
		t.Fatalf("handshake got=%q want=%q", got, want)
	}
}

func TestWriteFileFramesBodyBySize(t *testing.T) {
	var buf bytes.Buffer
	body := []byte("print('hi')\n")
	h := FileHeader{ID: 2, Language: "python", Size: int64(len(body)), DisplayName: "b.py"}
	if err := WriteFile(&buf, h, body); err != nil {
		t.Fatalf("write file: %v", err)
	}
	want := "file 2 python 12 b.py\nprint('hi')\n"
	if buf.String() != want {
		t.Fatalf("got=%q want=%q", buf.String(), want)
	}
}

func TestWriteFileRejectsInvalidHeader(t *testing.T) {
	cases := []struct {
		name string
		h    FileHeader
		want error
	}{
		{"negative id", FileHeader{ID: -1, Language: "c", Size: 1, DisplayName: "a.c"}, ErrInvalidFileID},
		{"zero size", FileHeader{ID: 1, Language: "c", Size: 0, DisplayName: "a.c"}, ErrInvalidSize},
		{"empty name", FileHeader{ID: 1, Language: "c", Size: 1}, ErrInvalidDisplayName},
		{"space in name", FileHeader{ID: 1, Language: "c", Size: 1, DisplayName: "a b.c"}, ErrInvalidDisplayName},
		{"newline in name", FileHeader{ID: 1, Language: "c", Size: 1, DisplayName: "a\n.c"}, ErrInvalidDisplayName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := WriteFile(&buf, tc.h, []byte("x"))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if buf.Len() != 0 {
				t.Fatalf("nothing should be written, got %q", buf.String())
			}
		})
	}
}

func TestWriteQuery(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteQuery(&buf, ""); err != nil {
		t.Fatalf("write query: %v", err)
	}
	if buf.String() != "query 0 \n" {
		t.Fatalf("unexpected empty query: %q", buf.String())
	}
	buf.Reset()
	if err := WriteQuery(&buf, "lab 3 run"); err != nil {
		t.Fatalf("write query: %v", err)
	}
	if buf.String() != "query 0 lab 3 run\n" {
		t.Fatalf("unexpected query: %q", buf.String())
	}
	if err := WriteQuery(&buf, "two\nlines"); !errors.Is(err, ErrInvalidComment) {
		t.Fatalf("expected ErrInvalidComment, got %v", err)
	}
}

func TestCheckDisplayNameAndComment(t *testing.T) {
	for _, name := range []string{"", "a b.c", "a\n.c", "a\r.c"} {
		if err := CheckDisplayName(name); !errors.Is(err, ErrInvalidDisplayName) {
			t.Fatalf("CheckDisplayName(%q) got=%v", name, err)
		}
	}
	if err := CheckDisplayName("lab_1/a.c"); err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
	for _, comment := range []string{"a\nb", "a\r", "\n"} {
		if err := CheckComment(comment); !errors.Is(err, ErrInvalidComment) {
			t.Fatalf("CheckComment(%q) got=%v", comment, err)
		}
	}
	if err := CheckComment("lab 3 run"); err != nil {
		t.Fatalf("valid comment rejected: %v", err)
	}
}

func TestSanitizeDisplayName(t *testing.T) {
	cases := map[string]string{
		"a.py":             "a.py",
		"my file.py":       "my_file.py",
		"  two  spaces .c": "__two__spaces_.c",
		"":                 "",
	}
	for in, want := range cases {
		if got := SanitizeDisplayName(in); got != want {
			t.Fatalf("sanitize(%q) got=%q want=%q", in, got, want)
		}
	}
}

func TestDefaultProfileLanguages(t *testing.T) {
	p := Default()
	want := []string{
		"c", "cc", "java", "ml", "pascal", "ada", "lisp", "scheme", "haskell",
		"fortran", "ascii", "vhdl", "verilog", "perl", "matlab", "python", "mips",
		"prolog", "spice", "vb", "csharp", "modula2", "a8086", "javascript", "plsql",
	}
	got := p.Languages()
	if len(got) != len(want) {
		t.Fatalf("language count got=%d want=%d", len(got), len(want))
	}
	for i, lang := range want {
		if got[i] != lang {
			t.Fatalf("language %d got=%q want=%q", i, got[i], lang)
		}
		if err := p.CheckLanguage(lang); err != nil {
			t.Fatalf("expected %q supported: %v", lang, err)
		}
	}
	for _, lang := range []string{"", "Python", "go", "rust", "c++", " c"} {
		if err := p.CheckLanguage(lang); !errors.Is(err, ErrUnsupportedLanguage) {
			t.Fatalf("expected ErrUnsupportedLanguage for %q, got %v", lang, err)
		}
	}
	if addr := p.Endpoint().Address(); addr != "moss.stanford.edu:7690" {
		t.Fatalf("unexpected address: %q", addr)
	}
}

func TestProfileLanguagesIsACopy(t *testing.T) {
	p := NewProfile(Endpoint{Host: "localhost", Port: 1}, []string{"c", "c", "", "java"})
	langs := p.Languages()
	if len(langs) != 2 {
		t.Fatalf("expected duplicates and blanks dropped, got %v", langs)
	}
	langs[0] = "go"
	if p.Supports("go") || !p.Supports("c") {
		t.Fatalf("profile mutated through Languages()")
	}
}

func TestIsLanguageRejected(t *testing.T) {
	cases := map[string]bool{
		"yes\n":         false,
		"no\n":          true,
		"NO":            true,
		"language: No":  true,
		"unknown\n":     true,
		"":              false,
		"accepted\n":    false,
		"\x00\x00yes\n": false,
	}
	for in, want := range cases {
		if got := IsLanguageRejected([]byte(in)); got != want {
			t.Fatalf("IsLanguageRejected(%q) got=%v want=%v", in, got, want)
		}
	}
}

func TestReadChunkSingleRead(t *testing.T) {
	r := iotest.OneByteReader(strings.NewReader("yes\n"))
	got, err := ReadChunk(r, ChunkSize)
	if err != nil {
		t.Fatalf("read chunk: %v", err)
	}
	if string(got) != "y" {
		t.Fatalf("expected one bounded read, got %q", got)
	}

	got, err = ReadChunk(strings.NewReader(strings.Repeat("a", 2000)), ChunkSize)
	if err != nil {
		t.Fatalf("read chunk: %v", err)
	}
	if len(got) != ChunkSize {
		t.Fatalf("expected chunk capped at %d, got %d", ChunkSize, len(got))
	}
}

func TestReadChunkEOF(t *testing.T) {
	_, err := ReadChunk(strings.NewReader(""), ChunkSize)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	got, err := ReadChunk(iotest.DataErrReader(strings.NewReader("done")), ChunkSize)
	if err != nil || string(got) != "done" {
		t.Fatalf("expected data without error, got %q err=%v", got, err)
	}
	if _, err := ReadChunk(strings.NewReader("x"), 0); !errors.Is(err, ErrInvalidBufferSize) {
		t.Fatalf("expected ErrInvalidBufferSize, got %v", err)
	}
}

func TestReadUntilClose(t *testing.T) {
	r := iotest.HalfReader(strings.NewReader("http://moss.stanford.edu/results/1/2\n"))
	got, err := ReadUntilClose(r, DefaultMaxResponseBytes)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "http://moss.stanford.edu/results/1/2\n" {
		t.Fatalf("unexpected response: %q", got)
	}

	_, err = ReadUntilClose(strings.NewReader("0123456789"), 4)
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
}

func TestDecodeResponse(t *testing.T) {
	if got := DecodeResponse(nil); got != "Connection closed by Moss before sending response." {
		t.Fatalf("unexpected sentinel: %q", got)
	}
	if got := DecodeResponse([]byte("http://x/1\n")); got != "http://x/1\n" {
		t.Fatalf("response should be verbatim, got %q", got)
	}
	if got := DecodeResponse([]byte{'o', 'k', 0xff}); got != "ok�" {
		t.Fatalf("invalid utf-8 should be replaced, got %q", got)
	}
}
