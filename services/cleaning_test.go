package services

import (
	"testing"

	"github.com/PhilHen99/InplayBasketSourceFinder/models"
	"github.com/PhilHen99/InplayBasketSourceFinder/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTableProjectsKnownColumns(t *testing.T) {
	table := &source.Table{
		Header: []string{"Team", "Sports", "Country", "League", "Notes", "Official Page"},
		Rows: [][]string{
			{"Lakers", "Basketball", "USA", "NBA", "ignored", "https://lakers.com"},
		},
	}

	teams, err := CleanTable(table)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, models.Team{
		Name:         "Lakers",
		Sport:        "Basketball",
		Country:      "USA",
		League:       "NBA",
		OfficialPage: "https://lakers.com",
	}, teams[0])
}

func TestCleanTableMissingColumnsAndShortRows(t *testing.T) {
	table := &source.Table{
		Header: []string{" Team ", "Country", "Twitter"},
		Rows: [][]string{
			{"Bulls", "USA"},
			{"Real Madrid"},
		},
	}

	teams, err := CleanTable(table)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "Bulls", teams[0].Name)
	assert.Equal(t, "USA", teams[0].Country)
	assert.Empty(t, teams[0].Twitter)
	assert.Empty(t, teams[1].Country)
	assert.Empty(t, teams[1].League)
}

func TestCleanTableBlankAndDuplicateHeaders(t *testing.T) {
	table := &source.Table{
		Header: []string{"Team", "", "Team", "Country"},
		Rows:   [][]string{{"Lakers", "x", "shadow", "USA", "overflow"}},
	}

	teams, err := CleanTable(table)
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, "Lakers", teams[0].Name)
	assert.Equal(t, "USA", teams[0].Country)
}

func TestCleanTableEmpty(t *testing.T) {
	teams, err := CleanTable(&source.Table{Header: models.TeamColumns})
	require.NoError(t, err)
	assert.Empty(t, teams)

	_, err = CleanTable(&source.Table{})
	assert.Error(t, err)
	_, err = CleanTable(nil)
	assert.Error(t, err)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"Team", "_unnamed_1", "_unnamed_2", "League"},
		normalizeHeader([]string{"Team", " ", "Team", "League "}))
}
