package lexitally

import (
	"github.com/lexitally/lexitally/src/lexitally/db"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected Command
		ok       bool
	}{
		{"help", Command{Operation: OpHelp}, true},
		{"top", Command{Operation: OpTop}, true},
		{"feature on global ScoreWords", Command{Operation: OpFeatureOn, Target: "global", Features: db.ConfigScoreWords}, true},
		{"feature off <#12345> ReplyWithScore ReactToScore", Command{Operation: OpFeatureOff, Target: "12345", Features: db.ConfigReplyWithScore | db.ConfigReactToScore}, true},
		{"feature list global", Command{Operation: OpFeatureList, Target: "global"}, true},
		{"feature on global", Command{}, false},           // missing features
		{"feature on somewhere ScoreWords", Command{}, false}, // bad target
		{"feature on global NotAFeature", Command{}, false},
		{"bogus", Command{}, false},
		{"", Command{}, false},
	}

	for _, tt := range tests {
		command, err := parseCommand(tt.input)
		if tt.ok {
			assert.NoError(t, err, tt.input)
			assert.Equal(t, command, tt.expected, tt.input)
		} else {
			assert.Error(t, err, tt.input)
		}
	}
}

func TestEnableDisableFeatures(t *testing.T) {
	flags := db.ConfigFlag(0)
	flags = EnableFeatures(flags, db.ConfigScoreWords|db.ConfigReactToScore)
	assert.True(t, flags.ScoreWords())
	assert.True(t, flags.ReactToScore())

	flags = DisableFeatures(flags, db.ConfigReactToScore)
	assert.True(t, flags.ScoreWords())
	assert.False(t, flags.ReactToScore())
}
