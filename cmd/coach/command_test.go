package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want command
	}{
		{"are buyers in control?", command{Kind: cmdText, Arg: "are buyers in control?"}},
		{"  padded text  ", command{Kind: cmdText, Arg: "padded text"}},
		{"/new", command{Kind: cmdNew}},
		{"/new EURUSD H4", command{Kind: cmdNew, Arg: "EURUSD H4"}},
		{"/LIST", command{Kind: cmdList}},
		{"/switch 2", command{Kind: cmdSwitch, Arg: "2"}},
		{"/rename  Gold   swing", command{Kind: cmdRename, Arg: "Gold   swing"}},
		{"/mode full", command{Kind: cmdMode, Arg: "full"}},
		{"/scenario bull_flag", command{Kind: cmdScenario, Arg: "bull_flag"}},
		{"/image ./charts/btc.png", command{Kind: cmdImage, Arg: "./charts/btc.png"}},
		{"/exit", command{Kind: cmdQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok, err := parseCommand(tt.line)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandEmptyLine(t *testing.T) {
	_, ok, err := parseCommand("   ")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestParseCommandErrors(t *testing.T) {
	_, _, err := parseCommand("/fly")
	assert.EqualError(t, err, "unknown command /fly (try /help)")

	_, _, err = parseCommand("/switch")
	assert.EqualError(t, err, "usage: /switch <n|id>")

	_, _, err = parseCommand("/image   ")
	assert.EqualError(t, err, "usage: /image <path>")
}

func TestHelpTextListsEveryCommand(t *testing.T) {
	help := helpText()
	for _, verb := range helpOrder {
		assert.Contains(t, help, verb)
	}
	assert.NotContains(t, help, "/exit")
}
