package protocol

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReferenceFileID marks base material the server excludes from pair reports.
const ReferenceFileID = 0

// HandshakeLines returns the six configuration lines in wire order, each
// with its trailing newline.
func HandshakeLines(s Settings) []string {
	return []string{
		"moss " + strconv.FormatInt(s.UserID, 10) + "\n",
		"directory " + flag(s.DirectoryMode) + "\n",
		"X " + flag(s.Experimental) + "\n",
		"maxmatches " + strconv.Itoa(s.IgnoreLimit) + "\n",
		"show " + strconv.Itoa(s.ShowMatches) + "\n",
		"language " + s.Language + "\n",
	}
}

// WriteHandshake writes the handshake lines one write per line.
func WriteHandshake(w io.Writer, s Settings) error {
	for _, line := range HandshakeLines(s) {
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// FileHeader is the metadata line announcing one uploaded file.
type FileHeader struct {
	ID          int
	Language    string
	Size        int64
	DisplayName string
}

func (h FileHeader) Validate() error {
	if h.ID < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidFileID, h.ID)
	}
	if h.Size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, h.Size)
	}
	return CheckDisplayName(h.DisplayName)
}

// CheckDisplayName rejects names that would split the file header line.
func CheckDisplayName(name string) error {
	if name == "" || strings.ContainsAny(name, " \r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidDisplayName, name)
	}
	return nil
}

// CheckComment rejects comments that would end the query line early.
func CheckComment(comment string) error {
	if strings.ContainsAny(comment, "\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidComment, comment)
	}
	return nil
}

func (h FileHeader) Line() string {
	return fmt.Sprintf("file %d %s %d %s\n", h.ID, h.Language, h.Size, h.DisplayName)
}

// WriteFile writes the header line followed by body. The server frames body
// by h.Size alone, so nothing is written after it.
func WriteFile(w io.Writer, h FileHeader, body []byte) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, h.Line()); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return nil
}

func QueryLine(comment string) string {
	return "query 0 " + comment + "\n"
}

func WriteQuery(w io.Writer, comment string) error {
	if err := CheckComment(comment); err != nil {
		return err
	}
	_, err := io.WriteString(w, QueryLine(comment))
	return err
}

// SanitizeDisplayName replaces every space with an underscore; the wire
// format is space delimited.
func SanitizeDisplayName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
