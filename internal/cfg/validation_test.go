package cfg

import (
	"strings"
	"testing"
	"time"
)

// createValidSettings creates a valid Settings struct for testing
func createValidSettings() *Settings {
	return &Settings{
		SourceKind:        "csv",
		SourcePath:        "data/training.csv",
		SourceTable:       "vw_Pizza_Model_Data",
		SinkKind:          "none",
		SinkTable:         "Model_Predictions",
		ModelID:           "Supervised_ML_Model_1",
		PersistRetries:    3,
		PersistRetryDelay: 200 * time.Millisecond,
		HTTPTimeout:       10 * time.Second,
		LogLevel:          "info",
	}
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	if err := validateSettings(createValidSettings()); err != nil {
		t.Errorf("Expected valid config to pass, got error: %v", err)
	}
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"csv without path", func(s *Settings) { s.SourcePath = "" }, "csv source requires a path"},
		{"sqlite without dsn", func(s *Settings) { s.SourceKind = "sqlite" }, "sqlite source requires a DSN"},
		{"mysql without table", func(s *Settings) {
			s.SourceKind = "mysql"
			s.SourceDSN = "dsn"
			s.SourceTable = ""
		}, "mysql source requires a table"},
		{"http with bad url", func(s *Settings) {
			s.SourceKind = "http"
			s.SourceURL = "ftp://warehouse"
		}, "http source requires an http(s) URL"},
		{"unknown source", func(s *Settings) { s.SourceKind = "excel" }, "unknown source kind"},
		{"unknown sink", func(s *Settings) { s.SinkKind = "kafka" }, "unknown sink kind"},
		{"sqlite sink without dsn", func(s *Settings) { s.SinkKind = "sqlite" }, "sqlite sink requires a DSN"},
		{"empty model id", func(s *Settings) { s.ModelID = "" }, "model id cannot be empty"},
		{"negative retries", func(s *Settings) { s.PersistRetries = -1 }, "persist retries must be between"},
		{"too many retries", func(s *Settings) { s.PersistRetries = 11 }, "persist retries must be between"},
		{"long retry delay", func(s *Settings) { s.PersistRetryDelay = time.Minute }, "persist retry delay"},
		{"short http timeout", func(s *Settings) { s.HTTPTimeout = 10 * time.Millisecond }, "HTTP timeout"},
		{"privileged server port", func(s *Settings) { s.ServerPort = 80 }, "server port"},
		{"metrics port too high", func(s *Settings) { s.MetricsPort = 70000 }, "metrics port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := createValidSettings()
			tt.mutate(settings)

			err := validateSettings(settings)
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateSettings_ValidVariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"http source", func(s *Settings) {
			s.SourceKind = "http"
			s.SourceURL = "https://warehouse.example/api/training"
		}},
		{"bolt sink", func(s *Settings) {
			s.SinkKind = "bolt"
			s.DataPath = "/tmp"
		}},
		{"mysql sink", func(s *Settings) {
			s.SinkKind = "mysql"
			s.SinkDSN = "user:pass@tcp(db:3306)/econ"
		}},
		{"no retries", func(s *Settings) { s.PersistRetries = 0 }},
		{"servers enabled", func(s *Settings) {
			s.ServerPort = 8080
			s.MetricsPort = 9090
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := createValidSettings()
			tt.mutate(settings)
			if err := validateSettings(settings); err != nil {
				t.Errorf("Expected valid config, got: %v", err)
			}
		})
	}
}
