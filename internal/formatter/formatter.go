// package formatter renders playlist listings to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/shared"
)

// Format is an output format for playlist listings.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name. An empty name is [FormatText].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case FormatText, FormatCSV, FormatMarkdown, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: format must be one of text, csv, markdown, json (got %q)", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// Listing is an account's playlists as rendered by every format.
type Listing struct {
	Account   models.Identity   `json:"account"`
	Playlists []models.Playlist `json:"playlists"`
}

// Render renders l in format f.
func Render(f Format, l Listing) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(l.Playlists)
	case FormatMarkdown:
		return ExportToMarkdown(l)
	case FormatJSON:
		return ExportToJSON(l, true)
	case FormatText, "":
		return ExportToText(l)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToCSV converts playlists to CSV with columns: ID, Title, Channel, Items, Thumbnail
func ExportToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Channel", "Items", "Thumbnail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range playlists {
		record := []string{
			p.ID,
			p.Title,
			p.ChannelTitle,
			strconv.FormatInt(p.ItemCount, 10),
			p.ThumbnailURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a listing to a Markdown document with one section per playlist
func ExportToMarkdown(l Listing) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# YouTube Playlists\n\n")
	if l.Account.Valid() {
		buf.WriteString(fmt.Sprintf("**Account**: %s\n\n", l.Account.Name))
	}
	buf.WriteString(fmt.Sprintf("**Playlists**: %d\n\n", len(l.Playlists)))

	for _, p := range l.Playlists {
		buf.WriteString(fmt.Sprintf("## %s\n\n", markdownEscape(p.Title)))
		if p.ThumbnailURL != "" {
			buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", markdownEscape(p.Title), p.ThumbnailURL))
		}
		if p.ChannelTitle != "" {
			buf.WriteString(fmt.Sprintf("- **Channel**: %s\n", markdownEscape(p.ChannelTitle)))
		}
		buf.WriteString(fmt.Sprintf("- **Videos**: %d\n", p.ItemCount))
		buf.WriteString(fmt.Sprintf("- **Link**: https://www.youtube.com/playlist?list=%s\n\n", p.ID))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a listing to plain text format
func ExportToText(l Listing) ([]byte, error) {
	var buf bytes.Buffer

	if l.Account.Valid() {
		buf.WriteString(fmt.Sprintf("Account: %s\n", l.Account.Name))
	}
	buf.WriteString(fmt.Sprintf("Playlists: %d\n\n", len(l.Playlists)))

	for i, p := range l.Playlists {
		buf.WriteString(fmt.Sprintf("%d. %s (%d videos)\n", i+1, p.Title, p.ItemCount))
		buf.WriteString(fmt.Sprintf("   ID: %s\n", p.ID))
		if p.ThumbnailURL != "" {
			buf.WriteString(fmt.Sprintf("   Thumbnail: %s\n", p.ThumbnailURL))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a listing to JSON
func ExportToJSON(l Listing, pretty bool) ([]byte, error) {
	if l.Playlists == nil {
		l.Playlists = []models.Playlist{}
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(l, "", "  ")
	} else {
		data, err = json.Marshal(l)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders l and writes it to path.
//
// Defaults to playlists{ext} when path is empty. Returns the path written.
func WriteExport(f Format, l Listing, path string) (string, error) {
	if path == "" {
		path = "playlists" + f.Extension()
	}

	data, err := Render(f, l)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}

var markdownReplacer = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "#", `\#`, "`", "\\`",
)

func markdownEscape(s string) string {
	return markdownReplacer.Replace(s)
}
