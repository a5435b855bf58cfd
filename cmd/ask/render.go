package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"
)

type streamSummary struct {
	MessageID string
	Sources   int
	Failed    bool
}

// renderStream prints an NDJSON answer stream as it arrives: the answer text
// first, then the numbered sources.
func renderStream(r io.Reader, w io.Writer) (streamSummary, error) {
	var summary streamSummary
	var sources []gjson.Result

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 || !gjson.ValidBytes(line) {
			continue
		}
		frame := gjson.ParseBytes(line)
		if id := frame.Get("messageId").String(); id != "" {
			summary.MessageID = id
		}

		switch frame.Get("type").String() {
		case "message":
			fmt.Fprint(w, frame.Get("data").String())
		case "sources":
			sources = frame.Get("data").Array()
			summary.Sources = len(sources)
		case "error":
			summary.Failed = true
			color.New(color.FgRed).Fprintf(w, "\n%s\n", frame.Get("data").String())
		case "messageEnd":
			fmt.Fprintln(w)
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("read stream: %w", err)
	}

	if len(sources) > 0 {
		color.New(color.Bold).Fprintln(w, "\nSources")
		for i, s := range sources {
			fmt.Fprintf(w, "[%d] %s\n    %s\n", i+1, s.Get("title").String(), s.Get("url").String())
		}
	}
	return summary, nil
}
