package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTasks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTasksYAML(t *testing.T) {
	path := writeTasks(t, `
tasks:
  - task_name: "Launch"
    operation: "create"
    token_name: "Token"
    symbol: "T"
    uri: "www.example.com"
  - task_name: "First buy"
    operation: "buy"
    token_name: "Token"
    amount_sol: 1010000000
  - task_name: "Take profit"
    operation: "sell"
    token_name: "Token"
    amount_tokens: 500000000
  - task_name: "Collect"
    operation: "withdraw_fees"
  - task_name: "Report"
    operation: "export_trades"
    format: "csv"
    output_dir: "reports"
`)

	tasks, err := NewManager(zap.NewNop()).LoadTasksYAML(path)
	require.NoError(t, err)
	require.Len(t, tasks, 5)

	assert.Equal(t, OperationCreate, tasks[0].Operation)
	assert.Equal(t, "Token", tasks[0].TokenName)
	assert.Equal(t, OperationBuy, tasks[1].Operation)
	assert.Equal(t, uint64(1_010_000_000), tasks[1].AmountSol)
	assert.Equal(t, OperationSell, tasks[2].Operation)
	assert.Equal(t, uint64(500_000_000), tasks[2].AmountTokens)
	assert.Equal(t, OperationWithdrawFees, tasks[3].Operation)
	assert.Equal(t, OperationExportTrades, tasks[4].Operation)
	assert.Equal(t, "csv", tasks[4].Format)
	assert.Equal(t, "reports", tasks[4].OutputDir)
}

func TestLoadTasksYAMLValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty file", "tasks: []\n"},
		{"unknown operation", "tasks:\n  - operation: \"stake\"\n"},
		{"create without name", "tasks:\n  - operation: \"create\"\n    symbol: \"T\"\n"},
		{"buy without amount", "tasks:\n  - operation: \"buy\"\n    token_name: \"Token\"\n"},
		{"sell without amount", "tasks:\n  - operation: \"sell\"\n    token_name: \"Token\"\n"},
		{"export without format", "tasks:\n  - operation: \"export_trades\"\n    output_dir: \"reports\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTasks(t, tc.content)
			_, err := NewManager(zap.NewNop()).LoadTasksYAML(path)
			assert.Error(t, err)
		})
	}
}
