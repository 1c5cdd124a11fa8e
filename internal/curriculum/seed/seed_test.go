package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.Len(t, c.Missions, 52)
	require.Len(t, c.Checksum, 64)

	ms := c.ToMissions()
	require.Len(t, ms, 52)
	weeks := map[int]bool{}
	for _, m := range ms {
		weeks[m.WeekNumber] = true
		assert.NotEmpty(t, m.Title, "week %d", m.WeekNumber)
		assert.NotNil(t, m.StretchGoals, "week %d", m.WeekNumber)
	}
	for w := 1; w <= 52; w++ {
		assert.True(t, weeks[w], "missing week %d", w)
	}
}

func TestLoadChecksumStable(t *testing.T) {
	a, err := Load()
	require.NoError(t, err)
	b, err := Load()
	require.NoError(t, err)
	require.Equal(t, a.Checksum, b.Checksum)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"too few":         "version: 1\nmissions:\n- week: 1\n  title: a\n  category: AI\n  difficulty: advanced\n  estimated_hours: 1\n",
		"unknown field":   "version: 1\nbogus: true\nmissions: []\n",
		"not yaml at all": "::::",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestValidateDuplicateWeek(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	c.Missions[1].Week = c.Missions[0].Week
	err = c.Validate()
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "duplicate week"))
}

func TestValidateDifficulty(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	c.Missions[3].Difficulty = "easy"
	require.ErrorContains(t, c.Validate(), "invalid difficulty")
}
