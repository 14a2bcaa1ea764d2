package task

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager loads and parses Task definitions.
type Manager struct {
	logger *zap.Logger
}

// TaskConfig represents the structure of the tasks YAML file.
type TaskConfig struct {
	Tasks []struct {
		TaskName     string `yaml:"task_name"`
		Operation    string `yaml:"operation"`
		Caller       string `yaml:"caller"`
		TokenName    string `yaml:"token_name"`
		Symbol       string `yaml:"symbol"`
		URI          string `yaml:"uri"`
		AmountSol    uint64 `yaml:"amount_sol"`
		AmountTokens uint64 `yaml:"amount_tokens"`
		Format       string `yaml:"format"`
		OutputDir    string `yaml:"output_dir"`
	} `yaml:"tasks"`
}

// NewManager constructs a Manager with the given logger.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

func parseOperation(s string) (OperationType, error) {
	op := OperationType(s)
	switch op {
	case OperationCreate, OperationBuy, OperationSell, OperationWithdrawFees, OperationExportTrades:
		return op, nil
	default:
		return "", fmt.Errorf("unsupported operation: %q", s)
	}
}

// LoadTasksYAML reads tasks from a YAML file.
func (m *Manager) LoadTasksYAML(path string) ([]*Task, error) {
	if filepath.IsAbs(path) {
		m.logger.Warn("Using absolute path for tasks file", zap.String("path", path))
	}

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config TaskConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(config.Tasks) == 0 {
		return nil, fmt.Errorf("no tasks found in configuration")
	}

	tasks := make([]*Task, 0, len(config.Tasks))
	for i, taskData := range config.Tasks {
		op, err := parseOperation(taskData.Operation)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}

		t := &Task{
			TaskName:     taskData.TaskName,
			Operation:    op,
			Caller:       taskData.Caller,
			TokenName:    taskData.TokenName,
			Symbol:       taskData.Symbol,
			URI:          taskData.URI,
			AmountSol:    taskData.AmountSol,
			AmountTokens: taskData.AmountTokens,
			Format:       taskData.Format,
			OutputDir:    taskData.OutputDir,
		}
		if err := t.validate(); err != nil {
			return nil, fmt.Errorf("task %d (%s): %w", i, t.TaskName, err)
		}
		tasks = append(tasks, t)

		m.logger.Debug("Loaded task",
			zap.String("task_name", t.TaskName),
			zap.String("operation", string(t.Operation)),
			zap.String("token_name", t.TokenName))
	}

	return tasks, nil
}

func (t *Task) validate() error {
	switch t.Operation {
	case OperationCreate:
		if t.TokenName == "" {
			return fmt.Errorf("create requires token_name")
		}
		if t.Symbol == "" {
			return fmt.Errorf("create requires symbol")
		}
	case OperationBuy:
		if t.TokenName == "" {
			return fmt.Errorf("buy requires token_name")
		}
		if t.AmountSol == 0 {
			return fmt.Errorf("buy requires a positive amount_sol")
		}
	case OperationSell:
		if t.TokenName == "" {
			return fmt.Errorf("sell requires token_name")
		}
		if t.AmountTokens == 0 {
			return fmt.Errorf("sell requires a positive amount_tokens")
		}
	case OperationWithdrawFees:
		// No extra fields.
	case OperationExportTrades:
		if t.Format != "csv" && t.Format != "json" {
			return fmt.Errorf("export_trades requires format csv or json")
		}
		if t.OutputDir == "" {
			return fmt.Errorf("export_trades requires output_dir")
		}
	}
	return nil
}
