package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports the transcript as indented JSON.
type JSONExporter struct{}

func (e *JSONExporter) Export(transcript *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(transcript)
}

func (e *JSONExporter) Extension() string {
	return "json"
}
