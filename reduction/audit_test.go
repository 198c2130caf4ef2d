package reduction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VojtechRehak/prism-gsmp/models/mdq1"
)

func TestAuditReportsOneRowPerAlarmEvent(t *testing.T) {
	actmc, rewards, err := mdq1.Default().Build()
	require.NoError(t, err)

	red, err := New(actmc, rewards, nil, Reachability, Settings{ComputeKappa: false, ConstantKappaDecimalDigits: 10})
	require.NoError(t, err)

	_, _, err = red.GetDTMC()
	require.NoError(t, err)

	rows, err := red.Audit()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "service", rows[0].EventID)
	assert.Greater(t, rows[0].NumEntrances, 0)
	assert.LessOrEqual(t, rows[0].NumEntrances, mdq1.Capacity)
	assert.Greater(t, rows[0].ThetaMax, 0.0)

	table := GenerateAuditTable(rows)
	assert.True(t, strings.Contains(table, "service"))
	assert.True(t, strings.HasPrefix(table, "| Event |"))
}

func TestAuditFailsBeforeGetDTMCPopulatesCaches(t *testing.T) {
	actmc, rewards, err := mdq1.Default().Build()
	require.NoError(t, err)

	red, err := New(actmc, rewards, nil, Reachability, Settings{ComputeKappa: false, ConstantKappaDecimalDigits: 10})
	require.NoError(t, err)

	_, err = red.Audit()
	assert.Error(t, err)
}
