package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
)

func sampleTranscript() *Transcript {
	return NewTranscript([]chat.Message{
		{ID: "a", Sender: chat.SenderUser, Body: "Do you want to plan your day?", Timestamp: "2025-03-01 09:00:00"},
		{ID: "b", Sender: chat.SenderBot, Body: "Sure, **first** things first.\n```\n**keep**\n```", Timestamp: "2025-03-01 09:00:03"},
	})
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		ext     string
		wantErr bool
	}{
		{format: "json", ext: "json"},
		{format: "yaml", ext: "yaml"},
		{format: "yml", ext: "yaml"},
		{format: "md", ext: "md"},
		{format: "markdown", ext: "md"},
		{format: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExporter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if !tt.wantErr && exporter.Extension() != tt.ext {
				t.Fatalf("unexpected extension %q", exporter.Extension())
			}
		})
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export err: %v", err)
	}

	var decoded Transcript
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.MessageCount != 2 || decoded.Messages[1].Sender != chat.SenderBot {
		t.Fatalf("unexpected transcript: %+v", decoded)
	}
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export err: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if decoded["message_count"] != 2 {
		t.Fatalf("unexpected message_count: %v", decoded["message_count"])
	}
	messages, ok := decoded["messages"].([]any)
	if !ok || len(messages) != 2 {
		t.Fatalf("unexpected messages: %v", decoded["messages"])
	}
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatalf("Export err: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Pocket Coach",
		"**Messages:** 2",
		"**You** (2025-03-01 09:00:00)",
		"**Coach** (2025-03-01 09:00:03)",
		"Sure, \\*\\*first\\*\\* things first.",
		"\n**keep**\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestEmptyTranscript(t *testing.T) {
	transcript := NewTranscript(nil)
	if transcript.Messages == nil || transcript.MessageCount != 0 {
		t.Fatalf("unexpected empty transcript: %+v", transcript)
	}

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("Export err: %v", err)
	}
	if !strings.Contains(buf.String(), `"messages": []`) {
		t.Fatalf("expected empty array, got %s", buf.String())
	}
}
