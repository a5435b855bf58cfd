package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStream(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name        string
		input       string
		wantText    []string
		wantSources int
		wantFailed  bool
	}{
		{
			name: "answer with sources",
			input: `{"type":"sources","data":[{"title":"QUIC","url":"https://quic.dev","content":"x"}],"messageId":"a1"}
{"type":"message","data":"QUIC is ","messageId":"a1"}
{"type":"message","data":"a transport [1].","messageId":"a1"}
{"type":"messageEnd","messageId":"a1"}
`,
			wantText:    []string{"QUIC is a transport [1].", "[1] QUIC", "https://quic.dev"},
			wantSources: 1,
		},
		{
			name:       "error frame",
			input:      `{"type":"error","data":"An error occurred while generating the answer."}` + "\n",
			wantText:   []string{"An error occurred while generating the answer."},
			wantFailed: true,
		},
		{
			name:     "garbage lines are skipped",
			input:    "not json\n" + `{"type":"message","data":"ok","messageId":"a1"}` + "\n",
			wantText: []string{"ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			summary, err := renderStream(strings.NewReader(tt.input), &out)

			require.NoError(t, err)
			for _, want := range tt.wantText {
				assert.Contains(t, out.String(), want)
			}
			assert.Equal(t, tt.wantSources, summary.Sources)
			assert.Equal(t, tt.wantFailed, summary.Failed)
		})
	}
}
