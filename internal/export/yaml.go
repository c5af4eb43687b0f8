package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter exports the transcript as YAML.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(transcript *Transcript, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(transcript)
}

func (e *YAMLExporter) Extension() string {
	return "yaml"
}
